// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/models"
)

//go:generate mockgen -source=repository_snapshot.go -destination=../mock/snapshot_repository_mock.go -package=mock

// SnapshotRepository is the remote store's per-user persistence.
type SnapshotRepository interface {
	// ReplaceCollections destructively replaces every collection present in
	// snapshot. Collections absent from snapshot are left as they are.
	ReplaceCollections(ctx context.Context, userID int64, snapshot models.Snapshot) error
	// LoadSnapshot returns every collection the user has pushed, each blob
	// byte-equal to the compact form of what was pushed.
	LoadSnapshot(ctx context.Context, userID int64) (models.Snapshot, error)
	// DeleteEntities removes the user's rows with the given ids and returns
	// the number removed. Unknown ids are ignored.
	DeleteEntities(ctx context.Context, userID int64, ids map[models.EntityType][]string) (int64, error)
}

// snapshotRepository is the PostgreSQL-backed [SnapshotRepository]. A
// collection is a row in "collections" plus one "entities" row per element,
// ordered by position.
type snapshotRepository struct {
	*DB
	logger *logger.Logger
}

// NewSnapshotRepository constructs a [SnapshotRepository] backed by db.
func NewSnapshotRepository(db *DB, logger *logger.Logger) SnapshotRepository {
	return &snapshotRepository{
		DB:     db,
		logger: logger,
	}
}

// ReplaceCollections runs the whole replace in one transaction: for each
// present collection the collection row is upserted, its entity rows are
// deleted and the new elements inserted in order, [maxInsertRows] per
// statement.
func (r *snapshotRepository) ReplaceCollections(ctx context.Context, userID int64, snapshot models.Snapshot) error {
	log := logger.FromContext(ctx)

	present := snapshot.Present()
	if len(present) == 0 {
		return nil
	}

	split := make(map[models.Collection][]entityRow, len(present))
	for _, c := range present {
		rows, err := splitCollection(c, snapshot[c])
		if err != nil {
			return err
		}
		split[c] = rows
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "snapshotRepository.ReplaceCollections").
			Int64("user_id", userID).
			Msg("failed to begin transaction")
		return r.wrap(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	for _, c := range present {
		statements := make([]func() (string, []any, error), 0, 3)
		statements = append(statements,
			func() (string, []any, error) { return buildUpsertCollectionQuery(userID, c) },
			func() (string, []any, error) { return buildDeleteCollectionEntitiesQuery(userID, c) },
		)
		for chunk := range slices.Chunk(split[c], maxInsertRows) {
			statements = append(statements, func() (string, []any, error) {
				return buildInsertEntitiesQuery(userID, c, chunk)
			})
		}

		for _, build := range statements {
			query, args, err := build()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				log.Err(err).
					Str("func", "snapshotRepository.ReplaceCollections").
					Int64("user_id", userID).
					Str("collection", string(c)).
					Msg("failed to replace collection")
				return r.wrap(ErrExecutingStatement, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).
			Str("func", "snapshotRepository.ReplaceCollections").
			Int64("user_id", userID).
			Msg("failed to commit transaction")
		return r.wrap(ErrCommitingTransaction, err)
	}

	log.Debug().
		Str("func", "snapshotRepository.ReplaceCollections").
		Int64("user_id", userID).
		Int("collections", len(present)).
		Msg("collections replaced")

	return nil
}

// LoadSnapshot reads the user's collection rows and entity rows and
// reassembles the blobs.
func (r *snapshotRepository) LoadSnapshot(ctx context.Context, userID int64) (models.Snapshot, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectCollectionsQuery(userID)
	if err != nil {
		return nil, err
	}

	collectionRows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "snapshotRepository.LoadSnapshot").
			Int64("user_id", userID).
			Msg("failed to query collections")
		return nil, r.wrap(ErrExecutingQuery, err)
	}
	defer collectionRows.Close()

	grouped := make(map[models.Collection][]entityRow)
	for collectionRows.Next() {
		var name string
		if err := collectionRows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		grouped[models.Collection(name)] = []entityRow{}
	}
	if err := collectionRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	query, args, err = buildSelectEntitiesQuery(userID)
	if err != nil {
		return nil, err
	}

	entityRows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "snapshotRepository.LoadSnapshot").
			Int64("user_id", userID).
			Msg("failed to query entities")
		return nil, r.wrap(ErrExecutingQuery, err)
	}
	defer entityRows.Close()

	for entityRows.Next() {
		var name string
		var row entityRow
		if err := entityRows.Scan(&name, &row.EntityID, &row.Position, &row.Data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		c := models.Collection(name)
		grouped[c] = append(grouped[c], row)
	}
	if err := entityRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	snapshot := make(models.Snapshot, len(grouped))
	for c, rows := range grouped {
		if !c.Valid() {
			continue
		}
		snapshot[c] = joinCollection(c, rows)
	}

	return snapshot, nil
}

// DeleteEntities removes matching rows in one transaction. Settings has no
// entity ids and is never touched.
func (r *snapshotRepository) DeleteEntities(ctx context.Context, userID int64, ids map[models.EntityType][]string) (int64, error) {
	log := logger.FromContext(ctx)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, r.wrap(ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	var deleted int64
	for _, entity := range models.EntityTypes {
		entityIDs := ids[entity]
		if len(entityIDs) == 0 {
			continue
		}

		query, args, err := buildDeleteEntitiesQuery(userID, entity.Collection(), entityIDs)
		if err != nil {
			return 0, err
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			log.Err(err).
				Str("func", "snapshotRepository.DeleteEntities").
				Int64("user_id", userID).
				Str("entity", string(entity)).
				Msg("failed to delete entities")
			return 0, r.wrap(ErrExecutingStatement, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			deleted += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, r.wrap(ErrCommitingTransaction, err)
	}

	return deleted, nil
}

// wrap attaches kind to err and marks transient driver errors with
// [ErrTemporarilyUnavailable].
func (r *snapshotRepository) wrap(kind, err error) error {
	if r.Retryable(err) {
		return fmt.Errorf("%w: %w: %w", ErrTemporarilyUnavailable, kind, err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}
