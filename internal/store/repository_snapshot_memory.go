package store

import (
	"context"
	"slices"
	"sync"

	"github.com/MKhiriev/go-trip-keeper/models"
)

// memorySnapshotRepository keeps snapshots in process memory. The server
// uses it when no DSN is configured.
type memorySnapshotRepository struct {
	mu    sync.RWMutex
	users map[int64]map[models.Collection][]entityRow
}

// NewMemorySnapshotRepository returns an empty in-memory [SnapshotRepository].
func NewMemorySnapshotRepository() SnapshotRepository {
	return &memorySnapshotRepository{users: make(map[int64]map[models.Collection][]entityRow)}
}

func (m *memorySnapshotRepository) ReplaceCollections(_ context.Context, userID int64, snapshot models.Snapshot) error {
	present := snapshot.Present()
	split := make(map[models.Collection][]entityRow, len(present))
	for _, c := range present {
		rows, err := splitCollection(c, snapshot[c])
		if err != nil {
			return err
		}
		split[c] = rows
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	collections, ok := m.users[userID]
	if !ok {
		collections = make(map[models.Collection][]entityRow)
		m.users[userID] = collections
	}
	for c, rows := range split {
		collections[c] = rows
	}

	return nil
}

func (m *memorySnapshotRepository) LoadSnapshot(_ context.Context, userID int64) (models.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make(models.Snapshot, len(m.users[userID]))
	for c, rows := range m.users[userID] {
		snapshot[c] = joinCollection(c, rows)
	}
	return snapshot, nil
}

func (m *memorySnapshotRepository) DeleteEntities(_ context.Context, userID int64, ids map[models.EntityType][]string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	collections := m.users[userID]
	var deleted int64
	for entity, entityIDs := range ids {
		c := entity.Collection()
		rows, ok := collections[c]
		if !ok || !c.IsList() {
			continue
		}
		kept := slices.DeleteFunc(slices.Clone(rows), func(row entityRow) bool {
			return slices.Contains(entityIDs, row.EntityID)
		})
		deleted += int64(len(rows) - len(kept))
		collections[c] = kept
	}

	return deleted, nil
}
