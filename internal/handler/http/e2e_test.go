package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-trip-keeper/internal/adapter"
	"github.com/MKhiriev/go-trip-keeper/internal/app"
	"github.com/MKhiriev/go-trip-keeper/internal/config"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/service"
	"github.com/MKhiriev/go-trip-keeper/internal/store"
	"github.com/MKhiriev/go-trip-keeper/internal/utils"
	"github.com/MKhiriev/go-trip-keeper/models"
)

// The real adapter against the real router and in-memory repository.
func newRemoteStore(t *testing.T, hashKey string) (adapter.RemoteStore, *httptest.Server) {
	t.Helper()

	appInfo, err := service.NewAppInfoService("1.0.0", logger.Nop())
	require.NoError(t, err)
	services := &service.Services{
		AuthService:     service.NewAuthService(testSignKey, testIssuer, logger.Nop()),
		SnapshotService: service.NewSnapshotService(store.NewMemorySnapshotRepository(), logger.Nop()),
		AppInfoService:  appInfo,
	}
	cfg := &config.ServerConfig{HashKey: hashKey, RateLimit: -1}
	srv := httptest.NewServer(NewHandler(services, cfg, logger.Nop()).Init())
	t.Cleanup(srv.Close)

	token, err := utils.GenerateJWTToken(testIssuer, 11, time.Hour, testSignKey)
	require.NoError(t, err)

	remote, err := adapter.NewHTTPRemoteStore(
		config.ClientAdapter{HTTPAddress: srv.URL, RequestTimeout: 5 * time.Second},
		config.ClientApp{Token: token.SignedString, HashKey: hashKey},
		logger.Nop(),
	)
	require.NoError(t, err)
	return remote, srv
}

func TestEndToEnd_PushPullDelete(t *testing.T) {
	remote, _ := newRemoteStore(t, "shared-secret")
	ctx := context.Background()

	require.NoError(t, remote.Ping(ctx))

	pushed := models.Snapshot{
		models.Trips:    json.RawMessage(`[{"id":"t1","name":"Rome"},{"id":"t2","name":"Oslo"}]`),
		models.Settings: json.RawMessage(`{"currency":"EUR"}`),
	}
	require.NoError(t, remote.Push(ctx, pushed))

	pulled, err := remote.Pull(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, string(pushed[models.Trips]), string(pulled[models.Trips]))
	assert.JSONEq(t, string(pushed[models.Settings]), string(pulled[models.Settings]))

	require.NoError(t, remote.Delete(ctx, models.DeleteRequest{
		IDs: map[models.EntityType][]string{models.Trip: {"t1", "never-existed"}},
	}))

	pulled, err = remote.Pull(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"t2","name":"Oslo"}]`, string(pulled[models.Trips]))
}

func TestEndToEnd_HashKeyMismatch(t *testing.T) {
	remote, srv := newRemoteStore(t, "server-secret")

	token, err := utils.GenerateJWTToken(testIssuer, 11, time.Hour, testSignKey)
	require.NoError(t, err)
	other, err := adapter.NewHTTPRemoteStore(
		config.ClientAdapter{HTTPAddress: srv.URL, RequestTimeout: 5 * time.Second},
		config.ClientApp{Token: token.SignedString, HashKey: "client-secret"},
		logger.Nop(),
	)
	require.NoError(t, err)

	err = other.Push(context.Background(), models.Snapshot{models.Trips: json.RawMessage(`[]`)})
	assert.ErrorIs(t, err, adapter.ErrBadRequest)

	require.NoError(t, remote.Push(context.Background(), models.Snapshot{models.Trips: json.RawMessage(`[]`)}))
}

func TestEndToEnd_Unauthorized(t *testing.T) {
	remote, _ := newRemoteStore(t, "")
	remote.SetToken("not-a-jwt")

	_, err := remote.Pull(context.Background())
	assert.ErrorIs(t, err, adapter.ErrUnauthorized)
	assert.Contains(t, err.Error(), app.MsgTokenIsExpiredOrInvalid)
}
