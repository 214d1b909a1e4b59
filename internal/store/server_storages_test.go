package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/models"
)

func TestNewServerStorages_EmptyDSNUsesMemory(t *testing.T) {
	ctx := context.Background()
	storages, err := NewServerStorages(ctx, "", logger.Nop())
	require.NoError(t, err)
	assert.Nil(t, storages.DB)
	require.NoError(t, storages.Close())

	repo := storages.SnapshotRepository
	require.NoError(t, repo.ReplaceCollections(ctx, 1, models.Snapshot{models.Todos: json.RawMessage(`[{"id":"a"}]`)}))

	snapshot, err := repo.LoadSnapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(snapshot[models.Todos]))
}

func TestNewServerStorages_BadDSN(t *testing.T) {
	_, err := NewServerStorages(context.Background(), "postgres://nobody@127.0.0.1:1/none?connect_timeout=1", logger.Nop())
	assert.Error(t, err)
}
