package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/queue"
	"github.com/MKhiriev/go-trip-keeper/models"
)

// LocalStore is the part of the device store the sync engine needs.
// [store.LocalStore] implements it.
type LocalStore interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
	BulkReplace(ctx context.Context, c models.Collection, blob json.RawMessage) error
	ReplaceClean(ctx context.Context, c models.Collection, blob json.RawMessage) (bool, error)
	Unpushed(ctx context.Context) (models.UnpushedMarks, error)
	ClearUnpushed(ctx context.Context, marks models.UnpushedMarks) error
	Ledger(ctx context.Context) (models.DeletedItemsLedger, error)
	ClearLedger(ctx context.Context, entity models.EntityType, ids ...string) error
	LastSync(ctx context.Context) (time.Time, error)
	SetLastSync(ctx context.Context, t time.Time) error
}

// RecordStore adds the record level operations the data service needs.
type RecordStore interface {
	LocalStore
	GetAll(ctx context.Context, c models.Collection) ([]models.Record, error)
	Get(ctx context.Context, entity models.EntityType, id string) (models.Record, bool, error)
	Upsert(ctx context.Context, entity models.EntityType, record models.Record) (models.Record, error)
	Delete(ctx context.Context, entity models.EntityType, id string) error
	Settings(ctx context.Context) (models.Record, error)
	SaveSettings(ctx context.Context, settings models.Record) (models.Record, error)
}

// MutationQueue is the offline queue as seen by the engine and the data
// service. [queue.Queue] implements it.
type MutationQueue interface {
	Enqueue(ctx context.Context, typ models.MutationType, entity models.EntityType, entityID string, data json.RawMessage) error
	Drain(ctx context.Context, deliver queue.DeliverFunc) (models.DrainResult, error)
	OnDrop(fn func(models.DroppedMutation))
	Len() int
	DroppedTotal() int
}

// SyncEngine reconciles the local store with the remote store.
type SyncEngine interface {
	Push(ctx context.Context) (models.SyncResult, error)
	Pull(ctx context.Context) (models.SyncResult, error)
	ImmediateDelete(ctx context.Context, ids map[models.EntityType][]string) (models.SyncResult, error)
	ScheduleSync()
	CancelPendingSync()
	FullSync(ctx context.Context) (models.SyncResult, error)
	DrainQueue(ctx context.Context) (models.DrainResult, error)
	Start(ctx context.Context) error
	Stop()
	Status(ctx context.Context) models.SyncStatus
}
