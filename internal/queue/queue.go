// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package queue implements the coalescing mutation queue that records what
// changed while the remote store was unreachable.
package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/utils"
	"github.com/MKhiriev/go-trip-keeper/models"
)

// MaxRetries is the number of failed deliveries after which a mutation is
// dropped.
const MaxRetries = 3

//go:generate mockgen -source=queue.go -destination=../mock/queue_mock.go -package=mock

// Persister stores the queue between runs. The local store implements it.
type Persister interface {
	LoadQueue(ctx context.Context) ([]models.QueuedMutation, error)
	SaveQueue(ctx context.Context, queue []models.QueuedMutation) error
}

// Connectivity reports whether the remote store is currently reachable.
type Connectivity interface {
	Online() bool
}

// DeliverFunc delivers one mutation to the remote store.
type DeliverFunc func(ctx context.Context, m models.QueuedMutation) error

// Queue holds at most one pending mutation per (entity, entity id). It is
// safe for concurrent use; every change is persisted before it returns.
type Queue struct {
	mu        sync.Mutex
	drainMu   sync.Mutex
	entries   []models.QueuedMutation
	store     Persister
	conn      Connectivity
	ids       *utils.UUIDGenerator
	now       func() time.Time
	listeners []func(models.DroppedMutation)
	dropped   int
	logger    *logger.Logger
}

// New restores the persisted queue from store.
func New(ctx context.Context, store Persister, conn Connectivity, log *logger.Logger) (*Queue, error) {
	entries, err := store.LoadQueue(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading mutation queue: %w", err)
	}

	if log == nil {
		log = logger.Nop()
	}

	return &Queue{
		entries: entries,
		store:   store,
		conn:    conn,
		ids:     utils.NewUUIDGenerator(),
		now:     time.Now,
		logger:  log,
	}, nil
}

// Enqueue records a mutation, coalescing it with a pending mutation of the
// same entity:
//
//	pending \ incoming  create            update                 delete
//	create              replace payload   replace payload        remove entry
//	update              replace payload   replace payload, time  becomes delete
//	delete              becomes update    becomes update         no-op
func (q *Queue) Enqueue(ctx context.Context, typ models.MutationType, entity models.EntityType, entityID string, data json.RawMessage) error {
	if !typ.Valid() || !entity.Valid() || entityID == "" {
		return fmt.Errorf("%w: %s %s %q", ErrInvalidMutation, typ, entity, entityID)
	}
	if typ == models.MutationDelete {
		data = nil
	} else if data != nil {
		data = slices.Clone(data)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	before := slices.Clone(q.entries)
	key := models.MutationKey{Entity: entity, EntityID: entityID}
	idx := slices.IndexFunc(q.entries, func(m models.QueuedMutation) bool { return m.Key() == key })

	if idx < 0 {
		q.entries = append(q.entries, models.QueuedMutation{
			ID:        q.ids.Generate(),
			Type:      typ,
			Entity:    entity,
			EntityID:  entityID,
			Data:      data,
			Timestamp: q.now().UTC(),
		})
	} else {
		q.coalesce(idx, typ, data)
	}

	if err := q.store.SaveQueue(ctx, q.entries); err != nil {
		q.entries = before
		return fmt.Errorf("error persisting mutation queue: %w", err)
	}

	return nil
}

// coalesce merges an incoming mutation into q.entries[idx].
func (q *Queue) coalesce(idx int, incoming models.MutationType, data json.RawMessage) {
	existing := &q.entries[idx]

	switch incoming {
	case models.MutationDelete:
		switch existing.Type {
		case models.MutationCreate:
			// never reached the remote store
			q.entries = slices.Delete(q.entries, idx, idx+1)
		case models.MutationUpdate:
			existing.Type = models.MutationDelete
			existing.Data = nil
		}

	case models.MutationCreate, models.MutationUpdate:
		switch existing.Type {
		case models.MutationDelete:
			// the id is known remotely, so a re-create is an update
			existing.Type = models.MutationUpdate
			existing.Data = data
		case models.MutationCreate:
			existing.Data = data
		case models.MutationUpdate:
			existing.Data = data
			if incoming == models.MutationUpdate {
				existing.Timestamp = q.now().UTC()
			}
		}
	}
}

// Remove deletes the entry with id. Removing an unknown id is a no-op.
func (q *Queue) Remove(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.removeLocked(ctx, id)
}

func (q *Queue) removeLocked(ctx context.Context, id string) error {
	idx := slices.IndexFunc(q.entries, func(m models.QueuedMutation) bool { return m.ID == id })
	if idx < 0 {
		return nil
	}

	q.entries = slices.Delete(q.entries, idx, idx+1)
	if err := q.store.SaveQueue(ctx, q.entries); err != nil {
		return fmt.Errorf("error persisting mutation queue: %w", err)
	}
	return nil
}

// MarkFailed counts a failed delivery of id. When the count reaches
// [MaxRetries] the entry is removed, drop listeners are notified and the
// drop is returned.
func (q *Queue) MarkFailed(ctx context.Context, id string, cause error) (*models.DroppedMutation, error) {
	q.mu.Lock()

	idx := slices.IndexFunc(q.entries, func(m models.QueuedMutation) bool { return m.ID == id })
	if idx < 0 {
		q.mu.Unlock()
		return nil, nil
	}

	q.entries[idx].Retries++
	entry := q.entries[idx]

	var drop *models.DroppedMutation
	if entry.Retries >= MaxRetries {
		q.entries = slices.Delete(q.entries, idx, idx+1)
		q.dropped++
		drop = &models.DroppedMutation{
			Mutation: entry,
			Err:      fmt.Errorf("%w: %w", ErrRetriesExhausted, cause),
		}
	}

	err := q.store.SaveQueue(ctx, q.entries)
	listeners := slices.Clone(q.listeners)
	q.mu.Unlock()

	if err != nil {
		err = fmt.Errorf("error persisting mutation queue: %w", err)
	}

	if drop != nil {
		q.logger.Warn().
			Err(cause).
			Str("func", "Queue.MarkFailed").
			Str("entity", string(entry.Entity)).
			Str("entity_id", entry.EntityID).
			Str("type", string(entry.Type)).
			Int("retries", entry.Retries).
			Msg("mutation dropped after exhausting retries; change could not sync")
		for _, fn := range listeners {
			fn(*drop)
		}
	}

	return drop, err
}

// OnDrop registers fn to be called for every mutation dropped after
// exhausting its retries.
func (q *Queue) OnDrop(fn func(models.DroppedMutation)) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.listeners = append(q.listeners, fn)
}

// Drain delivers pending mutations oldest first. It is a no-op while
// offline. A successful delivery removes the entry, a failed one counts
// against it via MarkFailed. A delivery error wrapping [ErrDrainAborted]
// stops the drain without counting the attempt; it is returned. Concurrent
// drains run one after another.
func (q *Queue) Drain(ctx context.Context, deliver DeliverFunc) (models.DrainResult, error) {
	var result models.DrainResult

	if !q.conn.Online() {
		return result, nil
	}

	q.drainMu.Lock()
	defer q.drainMu.Unlock()

	for _, m := range q.Pending() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !q.conn.Online() {
			break
		}
		if !q.has(m.ID) {
			continue
		}

		err := deliver(ctx, m)
		if errors.Is(err, ErrDrainAborted) {
			return result, err
		}

		result.Processed++
		if err == nil {
			result.Delivered++
			if removeErr := q.removeDelivered(ctx, m); removeErr != nil {
				return result, removeErr
			}
			continue
		}

		result.Failed++
		drop, markErr := q.MarkFailed(ctx, m.ID, err)
		if drop != nil {
			result.Dropped = append(result.Dropped, *drop)
		}
		if markErr != nil {
			return result, markErr
		}
	}

	return result, nil
}

// removeDelivered removes m unless it was coalesced with a newer mutation
// while it was being delivered.
func (q *Queue) removeDelivered(ctx context.Context, m models.QueuedMutation) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := slices.IndexFunc(q.entries, func(e models.QueuedMutation) bool { return e.ID == m.ID })
	if idx < 0 {
		return nil
	}
	current := q.entries[idx]
	if current.Type != m.Type || !bytes.Equal(current.Data, m.Data) || !current.Timestamp.Equal(m.Timestamp) {
		return nil
	}

	return q.removeLocked(ctx, m.ID)
}

func (q *Queue) has(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return slices.ContainsFunc(q.entries, func(m models.QueuedMutation) bool { return m.ID == id })
}

// Pending returns a copy of the pending mutations, oldest first.
func (q *Queue) Pending() []models.QueuedMutation {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := slices.Clone(q.entries)
	slices.SortStableFunc(pending, func(a, b models.QueuedMutation) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return pending
}

// Len returns the number of pending mutations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries)
}

// DroppedTotal returns how many mutations were dropped since start.
func (q *Queue) DroppedTotal() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.dropped
}
