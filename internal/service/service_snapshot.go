// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/store"
	"github.com/MKhiriev/go-trip-keeper/models"
)

type snapshotService struct {
	repo store.SnapshotRepository

	logger *logger.Logger
}

// NewSnapshotService returns the remote store's SnapshotService on top of
// repo.
func NewSnapshotService(repo store.SnapshotRepository, logger *logger.Logger) SnapshotService {
	return &snapshotService{
		repo:   repo,
		logger: logger,
	}
}

// Push validates every collection of req before replacing any of them, so
// a request with one malformed collection changes nothing. Null blobs mean
// "no data" and are skipped. It returns the replaced collections.
func (s *snapshotService) Push(ctx context.Context, userID int64, req models.PushRequest) ([]models.Collection, error) {
	log := logger.FromContext(ctx)

	if userID == 0 {
		return nil, ErrValidationNoUserID
	}

	for c := range req.Collections {
		if !c.Valid() {
			log.Error().Str("func", "snapshotService.Push").Str("collection", string(c)).Msg("unknown collection pushed")
			return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
		}
	}

	present := req.Collections.Present()
	snapshot := make(models.Snapshot, len(present))
	for _, c := range present {
		if err := models.ValidateBlob(c, req.Collections[c]); err != nil {
			log.Err(err).Str("func", "snapshotService.Push").Int64("user_id", userID).Msg("malformed collection pushed")
			return nil, err
		}
		snapshot[c] = req.Collections[c]
	}

	if err := s.repo.ReplaceCollections(ctx, userID, snapshot); err != nil {
		log.Err(err).Str("func", "snapshotService.Push").Int64("user_id", userID).Msg("error replacing collections")
		return nil, fmt.Errorf("error replacing collections: %w", err)
	}

	return present, nil
}

func (s *snapshotService) Pull(ctx context.Context, userID int64) (models.Snapshot, error) {
	if userID == 0 {
		return nil, ErrValidationNoUserID
	}

	snapshot, err := s.repo.LoadSnapshot(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "snapshotService.Pull").Int64("user_id", userID).Msg("error loading snapshot")
		return nil, fmt.Errorf("error loading snapshot: %w", err)
	}

	return snapshot, nil
}

// Delete removes the listed ids. Unknown entity types and empty requests
// are rejected; unknown ids are not.
func (s *snapshotService) Delete(ctx context.Context, userID int64, req models.DeleteRequest) (int64, error) {
	if userID == 0 {
		return 0, ErrValidationNoUserID
	}
	if req.Len() == 0 {
		return 0, ErrValidationNoIDsProvided
	}

	for entity, ids := range req.IDs {
		if !entity.Valid() {
			return 0, fmt.Errorf("%w: unknown entity type %q", ErrInvalidDataProvided, entity)
		}
		for _, id := range ids {
			if id == "" {
				return 0, fmt.Errorf("%w: empty id for %s", ErrInvalidDataProvided, entity)
			}
		}
	}

	deleted, err := s.repo.DeleteEntities(ctx, userID, req.IDs)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "snapshotService.Delete").Int64("user_id", userID).Msg("error deleting entities")
		return 0, fmt.Errorf("error deleting entities: %w", err)
	}

	return deleted, nil
}
