package service

import (
	"context"

	"github.com/MKhiriev/go-trip-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// SnapshotService is the remote store's business layer: it validates sync
// requests and applies them to the user's rows.
type SnapshotService interface {
	// Push destructively replaces every collection present in req.
	Push(ctx context.Context, userID int64, req models.PushRequest) ([]models.Collection, error)

	// Pull returns the user's collections; collections never pushed are
	// absent.
	Pull(ctx context.Context, userID int64) (models.Snapshot, error)

	// Delete removes the listed ids. It is idempotent.
	Delete(ctx context.Context, userID int64, req models.DeleteRequest) (int64, error)
}

// AuthService validates bearer tokens issued outside of the remote store.
type AuthService interface {
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// AppInfoService exposes build information.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
