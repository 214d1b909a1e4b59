package service

import (
	"github.com/MKhiriev/go-trip-keeper/internal/config"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/store"
)

// Services groups the remote store's business services.
type Services struct {
	AuthService     AuthService
	SnapshotService SnapshotService
	AppInfoService  AppInfoService
}

func NewServices(storages *store.ServerStorages, cfg *config.ServerConfig, version string, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(version, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		AuthService:     NewAuthService(cfg.TokenSignKey, cfg.TokenIssuer, logger),
		SnapshotService: NewSnapshotService(storages.SnapshotRepository, logger),
		AppInfoService:  appInfo,
	}, nil
}
