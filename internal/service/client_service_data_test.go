package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-trip-keeper/internal/adapter"
	"github.com/MKhiriev/go-trip-keeper/internal/store"
	"github.com/MKhiriev/go-trip-keeper/models"
)

func TestDataService_CreateOffline_Queues(t *testing.T) {
	remote := newRepoRemote()
	d := newDevice(t, remote, false, time.Hour)
	ctx := context.Background()

	stored, err := d.data.Create(ctx, models.Trip, trip("a", "Lisbon"))
	require.NoError(t, err)
	assert.NotEmpty(t, stored[models.RecordUpdatedAtField])

	pending := d.queue.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, models.MutationCreate, pending[0].Type)
	assert.Equal(t, models.Trip, pending[0].Entity)
	assert.Equal(t, "a", pending[0].EntityID)

	var queued models.Record
	require.NoError(t, json.Unmarshal(pending[0].Data, &queued))
	assert.Equal(t, "Lisbon", queued["name"])

	assert.False(t, d.engine.Status(ctx).PendingSync)
	pushes, _, _ := remote.counts()
	assert.Zero(t, pushes)
}

func TestDataService_UpdateOnline_SchedulesSync(t *testing.T) {
	remote := newRepoRemote()
	d := newDevice(t, remote, true, time.Hour)
	ctx := context.Background()

	_, err := d.data.Create(ctx, models.Trip, trip("a", "Lisbon"))
	require.NoError(t, err)
	_, err = d.data.Update(ctx, models.Trip, trip("a", "Porto"))
	require.NoError(t, err)

	assert.Zero(t, d.queue.Len())
	assert.True(t, d.engine.Status(ctx).PendingSync)

	got, found, err := d.data.Get(ctx, models.Trip, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Porto", got["name"])

	list, err := d.data.List(ctx, models.Trips)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDataService_OfflineCreateThenDelete_LeavesNothingQueued(t *testing.T) {
	d := newDevice(t, newRepoRemote(), false, time.Hour)
	ctx := context.Background()

	_, err := d.data.Create(ctx, models.Todo, models.Record{"id": "todo-1", "title": "passport"})
	require.NoError(t, err)
	require.NoError(t, d.data.Delete(ctx, models.Todo, "todo-1"))

	assert.Zero(t, d.queue.Len())

	list, err := d.data.List(ctx, models.Todos)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDataService_DeleteOnline_SendsImmediately(t *testing.T) {
	remote := newRepoRemote()
	d := newDevice(t, remote, true, time.Hour)
	ctx := context.Background()
	upsertTrips(t, d, "a", "b")
	_, err := d.engine.Push(ctx)
	require.NoError(t, err)

	require.NoError(t, d.data.Delete(ctx, models.Trip, "a"))

	_, _, deletes := remote.counts()
	assert.Equal(t, 1, deletes)
	assert.Zero(t, d.queue.Len())

	ledger, err := d.local.Ledger(ctx)
	require.NoError(t, err)
	assert.Zero(t, ledger.Len())
	assert.NotContains(t, string(remote.remoteBlob(t, models.Trips)), `"id":"a"`)
}

func TestDataService_DeleteOnline_FailureKeepsLedger(t *testing.T) {
	remote := newRepoRemote()
	remote.setErr(fmt.Errorf("%w: reset by peer", adapter.ErrNetwork))
	d := newDevice(t, remote, true, time.Hour)
	ctx := context.Background()
	upsertTrips(t, d, "a")

	require.NoError(t, d.data.Delete(ctx, models.Trip, "a"))

	ledger, err := d.local.Ledger(ctx)
	require.NoError(t, err)
	assert.True(t, ledger.Contains(models.Trip, "a"))
	assert.Zero(t, d.queue.Len())
}

func TestDataService_DeleteOffline_Queues(t *testing.T) {
	d := newDevice(t, newRepoRemote(), false, time.Hour)
	ctx := context.Background()
	upsertTrips(t, d, "a")

	require.NoError(t, d.data.Delete(ctx, models.Trip, "a"))

	pending := d.queue.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, models.MutationDelete, pending[0].Type)
	assert.Empty(t, tripIDs(t, d))
}

func TestDataService_Settings(t *testing.T) {
	ctx := context.Background()

	t.Run("online schedules sync", func(t *testing.T) {
		d := newDevice(t, newRepoRemote(), true, time.Hour)
		stored, err := d.data.SaveSettings(ctx, models.Record{"currency": "EUR"})
		require.NoError(t, err)
		assert.Equal(t, "EUR", stored["currency"])
		assert.True(t, d.engine.Status(ctx).PendingSync)
	})

	t.Run("offline is marked unpushed, not queued", func(t *testing.T) {
		d := newDevice(t, newRepoRemote(), false, time.Hour)
		_, err := d.data.SaveSettings(ctx, models.Record{"currency": "EUR"})
		require.NoError(t, err)
		assert.Zero(t, d.queue.Len())
		assert.Equal(t, []models.Collection{models.Settings}, d.engine.Status(ctx).Unpushed)

		settings, err := d.data.Settings(ctx)
		require.NoError(t, err)
		assert.Equal(t, "EUR", settings["currency"])
	})
}

func TestDataService_Validation(t *testing.T) {
	d := newDevice(t, newRepoRemote(), false, time.Hour)
	ctx := context.Background()

	_, err := d.data.Create(ctx, models.EntityType("hotel"), trip("a", "a"))
	assert.ErrorIs(t, err, store.ErrUnknownEntity)

	_, err = d.data.Create(ctx, models.Trip, models.Record{"name": "no id"})
	assert.ErrorIs(t, err, store.ErrMissingID)

	_, err = d.data.List(ctx, models.Settings)
	assert.ErrorIs(t, err, store.ErrNotListCollection)

	assert.Zero(t, d.queue.Len())
}
