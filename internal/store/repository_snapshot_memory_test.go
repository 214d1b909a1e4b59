package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-trip-keeper/models"
)

func TestMemorySnapshotRepository_RoundTripIsByteEqual(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySnapshotRepository()

	pushed := models.Snapshot{
		models.Trips:    json.RawMessage(`[{"id":"a","name":"Rome","updatedAt":"2026-05-01T12:00:00Z"},{"id":"b"}]`),
		models.Blocks:   json.RawMessage(`[]`),
		models.Settings: json.RawMessage(`{"currency":"EUR"}`),
	}
	require.NoError(t, repo.ReplaceCollections(ctx, 1, pushed))

	pulled, err := repo.LoadSnapshot(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pulled, 3)
	for c, blob := range pushed {
		assert.Equal(t, string(blob), string(pulled[c]), c)
	}
}

func TestMemorySnapshotRepository_ReplaceKeepsAbsentCollections(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySnapshotRepository()

	require.NoError(t, repo.ReplaceCollections(ctx, 1, models.Snapshot{
		models.Trips:    json.RawMessage(`[{"id":"a"}]`),
		models.Expenses: json.RawMessage(`[{"id":"e"}]`),
	}))
	require.NoError(t, repo.ReplaceCollections(ctx, 1, models.Snapshot{
		models.Trips:    json.RawMessage(`[{"id":"b"}]`),
		models.Expenses: json.RawMessage(`null`),
	}))

	pulled, err := repo.LoadSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"b"}]`, string(pulled[models.Trips]))
	assert.Equal(t, `[{"id":"e"}]`, string(pulled[models.Expenses]))
}

func TestMemorySnapshotRepository_UsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySnapshotRepository()

	require.NoError(t, repo.ReplaceCollections(ctx, 1, models.Snapshot{models.Trips: json.RawMessage(`[{"id":"a"}]`)}))

	pulled, err := repo.LoadSnapshot(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, pulled)

	n, err := repo.DeleteEntities(ctx, 2, map[models.EntityType][]string{models.Trip: {"a"}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemorySnapshotRepository_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySnapshotRepository()

	require.NoError(t, repo.ReplaceCollections(ctx, 1, models.Snapshot{
		models.Trips: json.RawMessage(`[{"id":"a"},{"id":"b"},{"id":"c"}]`),
	}))

	ids := map[models.EntityType][]string{models.Trip: {"b", "missing"}}
	n, err := repo.DeleteEntities(ctx, 1, ids)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteEntities(ctx, 1, ids)
	require.NoError(t, err)
	assert.Zero(t, n)

	pulled, err := repo.LoadSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"},{"id":"c"}]`, string(pulled[models.Trips]))
}

func TestSplitCollection_Rejections(t *testing.T) {
	tests := []struct {
		name string
		c    models.Collection
		blob string
	}{
		{name: "list given object", c: models.Trips, blob: `{"id":"a"}`},
		{name: "settings given array", c: models.Settings, blob: `[]`},
		{name: "element without id", c: models.Todos, blob: `[{"title":"x"}]`},
		{name: "scalar element", c: models.Todos, blob: `[1]`},
		{name: "invalid json", c: models.Trips, blob: `[{"id":`},
		{name: "unknown collection", c: "flights", blob: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := splitCollection(tt.c, json.RawMessage(tt.blob))
			assert.ErrorIs(t, err, models.ErrMalformedCollection)
		})
	}
}
