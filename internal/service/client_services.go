package service

import (
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/adapter"
	"github.com/MKhiriev/go-trip-keeper/internal/connectivity"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
)

// ClientServices groups the client's sync engine and data service.
type ClientServices struct {
	Engine SyncEngine
	Data   *DataService
}

func NewClientServices(local RecordStore, q MutationQueue, remote adapter.RemoteStore, monitor connectivity.Monitor, debounce time.Duration, log *logger.Logger) *ClientServices {
	engine := NewEngine(local, q, remote, monitor, debounce, log)

	return &ClientServices{
		Engine: engine,
		Data:   NewDataService(local, q, engine, monitor, log),
	}
}
