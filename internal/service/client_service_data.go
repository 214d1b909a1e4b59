package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-trip-keeper/internal/connectivity"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/models"
)

// DataService is what host UIs call to read and edit itinerary data. Every
// write lands in the local store first and never waits for the network
// unless it is an online delete.
type DataService struct {
	local   RecordStore
	queue   MutationQueue
	engine  SyncEngine
	monitor connectivity.Monitor

	logger *logger.Logger
}

// NewDataService builds a data service over the device store. A nil logger
// is replaced with [logger.Nop].
func NewDataService(local RecordStore, q MutationQueue, engine SyncEngine, monitor connectivity.Monitor, log *logger.Logger) *DataService {
	if log == nil {
		log = logger.Nop()
	}
	return &DataService{
		local:   local,
		queue:   q,
		engine:  engine,
		monitor: monitor,
		logger:  log,
	}
}

// List returns the records of a list collection.
func (s *DataService) List(ctx context.Context, c models.Collection) ([]models.Record, error) {
	return s.local.GetAll(ctx, c)
}

// Get returns one record; found is false when it does not exist.
func (s *DataService) Get(ctx context.Context, entity models.EntityType, id string) (models.Record, bool, error) {
	return s.local.Get(ctx, entity, id)
}

// Create stores a new record and propagates it.
func (s *DataService) Create(ctx context.Context, entity models.EntityType, record models.Record) (models.Record, error) {
	return s.write(ctx, models.MutationCreate, entity, record)
}

// Update stores a changed record and propagates it.
func (s *DataService) Update(ctx context.Context, entity models.EntityType, record models.Record) (models.Record, error) {
	return s.write(ctx, models.MutationUpdate, entity, record)
}

func (s *DataService) write(ctx context.Context, typ models.MutationType, entity models.EntityType, record models.Record) (models.Record, error) {
	stored, err := s.local.Upsert(ctx, entity, record)
	if err != nil {
		return nil, fmt.Errorf("error saving %s locally: %w", entity, err)
	}

	if s.monitor.Online() {
		s.engine.ScheduleSync()
		return stored, nil
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return stored, fmt.Errorf("error encoding %s: %w", entity, err)
	}
	if err = s.queue.Enqueue(ctx, typ, entity, stored.ID(), data); err != nil {
		return stored, fmt.Errorf("error queueing %s %s: %w", typ, entity, err)
	}

	return stored, nil
}

// Delete removes a record locally. Online, the delete is sent right away;
// if that fails the id stays in the deleted items ledger and the next full
// sync retries it. Offline, the delete is queued.
func (s *DataService) Delete(ctx context.Context, entity models.EntityType, id string) error {
	if err := s.local.Delete(ctx, entity, id); err != nil {
		return fmt.Errorf("error deleting %s locally: %w", entity, err)
	}

	if !s.monitor.Online() {
		if err := s.queue.Enqueue(ctx, models.MutationDelete, entity, id, nil); err != nil {
			return fmt.Errorf("error queueing delete %s: %w", entity, err)
		}
		return nil
	}

	result, err := s.engine.ImmediateDelete(ctx, map[models.EntityType][]string{entity: {id}})
	if err != nil {
		return err
	}
	if !result.Success {
		logger.FromContext(ctx).Warn().
			Str("func", "DataService.Delete").
			Str("entity", string(entity)).
			Str("id", id).
			Str("message", result.Message).
			Msg("remote delete failed, kept in ledger")
	}
	return nil
}

// Settings returns the settings object.
func (s *DataService) Settings(ctx context.Context) (models.Record, error) {
	return s.local.Settings(ctx)
}

// SaveSettings stores the settings object. Settings is not an entity and
// is never queued: the store marks it unpushed, and a full sync keeps the
// local copy until a push carries it.
func (s *DataService) SaveSettings(ctx context.Context, settings models.Record) (models.Record, error) {
	stored, err := s.local.SaveSettings(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("error saving settings locally: %w", err)
	}

	if s.monitor.Online() {
		s.engine.ScheduleSync()
	}
	return stored, nil
}
