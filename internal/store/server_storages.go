package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
)

// ServerStorages groups the remote store's persistence. DB is nil when the
// in-memory repository is used.
type ServerStorages struct {
	DB                 *DB
	SnapshotRepository SnapshotRepository
}

// NewServerStorages connects to PostgreSQL and applies the server schema.
// An empty dsn selects the in-memory repository, which loses everything on
// restart.
func NewServerStorages(ctx context.Context, dsn string, log *logger.Logger) (*ServerStorages, error) {
	if dsn == "" {
		log.Warn().Str("func", "NewServerStorages").Msg("no DSN configured, using in-memory snapshot repository")
		return &ServerStorages{SnapshotRepository: NewMemorySnapshotRepository()}, nil
	}

	db, err := NewConnectPostgres(ctx, dsn, log)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ServerStorages{
		DB:                 db,
		SnapshotRepository: NewSnapshotRepository(db, log),
	}, nil
}

// Close releases the database connection, if any.
func (s *ServerStorages) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
