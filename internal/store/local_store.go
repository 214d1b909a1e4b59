// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/models"
)

// Persisted keys. Every collection lives under its own key.
const (
	collectionKeyPrefix = "collection:"
	mutationQueueKey    = "mutation_queue"
	deletedItemsKey     = "deleted_items"
	lastSyncKey         = "last_sync"
	unpushedKey         = "unpushed"
)

// unpushedState is the persisted form of the unpushed markers. Seq only
// grows, so a revision is never reused after a mark is cleared.
type unpushedState struct {
	Seq   uint64               `json:"seq"`
	Marks models.UnpushedMarks `json:"marks"`
}

// LocalStore is the device-scoped store of entity collections, the deleted
// items ledger, the persisted mutation queue and the last sync timestamp.
// Local writes also mark their collection as unpushed until a push
// carrying the change succeeds.
//
// All access is serialized by a single mutex. Values are cached after the
// first read and written through to the [KVStore], so a write is visible to
// every subsequent in-process read. Reading an absent key is never an
// error: collections read as empty, the ledger as empty, last sync as zero.
type LocalStore struct {
	mu    sync.Mutex
	kv    KVStore
	cache map[string][]byte
	now   func() time.Time
}

// NewLocalStore creates a LocalStore on top of kv.
func NewLocalStore(kv KVStore) *LocalStore {
	return &LocalStore{
		kv:    kv,
		cache: make(map[string][]byte),
		now:   time.Now,
	}
}

func collectionKey(c models.Collection) string {
	return collectionKeyPrefix + string(c)
}

// GetAll returns the records of a list collection. A missing collection
// yields an empty slice.
func (s *LocalStore) GetAll(ctx context.Context, c models.Collection) ([]models.Record, error) {
	if !c.Valid() {
		return nil, ErrUnknownEntity
	}
	if !c.IsList() {
		return nil, ErrNotListCollection
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readRecords(ctx, c)
}

// Upsert inserts record into the entity's collection, or replaces the record
// with the same id, after stamping its updatedAt field. The stored copy is
// returned.
func (s *LocalStore) Upsert(ctx context.Context, entity models.EntityType, record models.Record) (models.Record, error) {
	if !entity.Valid() {
		return nil, ErrUnknownEntity
	}
	id := record.ID()
	if id == "" {
		return nil, ErrMissingID
	}

	stored := record.Clone()
	stored.Touch(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	c := entity.Collection()
	records, err := s.readRecords(ctx, c)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(records, func(r models.Record) bool { return r.ID() == id })
	if idx >= 0 {
		records[idx] = stored
	} else {
		records = append(records, stored)
	}

	if err := s.writeJSON(ctx, collectionKey(c), records); err != nil {
		return nil, err
	}
	if err := s.markUnpushed(ctx, c); err != nil {
		return nil, err
	}

	return stored, nil
}

// Get returns a single record, or found=false when it does not exist.
func (s *LocalStore) Get(ctx context.Context, entity models.EntityType, id string) (models.Record, bool, error) {
	if !entity.Valid() {
		return nil, false, ErrUnknownEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readRecords(ctx, entity.Collection())
	if err != nil {
		return nil, false, err
	}
	for _, r := range records {
		if r.ID() == id {
			return r, true, nil
		}
	}
	return nil, false, nil
}

// Delete removes the record from its collection and records id in the
// deleted items ledger. Deleting a missing record still records the id.
func (s *LocalStore) Delete(ctx context.Context, entity models.EntityType, id string) error {
	if !entity.Valid() {
		return ErrUnknownEntity
	}
	if id == "" {
		return ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := entity.Collection()
	records, err := s.readRecords(ctx, c)
	if err != nil {
		return err
	}

	before := len(records)
	kept := slices.DeleteFunc(records, func(r models.Record) bool { return r.ID() == id })
	if len(kept) != before {
		if err := s.writeJSON(ctx, collectionKey(c), kept); err != nil {
			return err
		}
		if err := s.markUnpushed(ctx, c); err != nil {
			return err
		}
	}

	ledger, err := s.readLedger(ctx)
	if err != nil {
		return err
	}
	if !ledger.Contains(entity, id) {
		ledger[entity] = append(ledger[entity], id)
	}

	return s.writeJSON(ctx, deletedItemsKey, ledger)
}

// BulkReplace overwrites a collection with blob verbatim and drops its
// unpushed mark. Used when pulling.
func (s *LocalStore) BulkReplace(ctx context.Context, c models.Collection, blob json.RawMessage) error {
	if !c.Valid() {
		return ErrUnknownEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replace(ctx, c, blob)
}

// ReplaceClean is BulkReplace for a collection without unpushed changes.
// A marked collection is left as it is and replaced is false.
func (s *LocalStore) ReplaceClean(ctx context.Context, c models.Collection, blob json.RawMessage) (replaced bool, err error) {
	if !c.Valid() {
		return false, ErrUnknownEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.readUnpushed(ctx)
	if err != nil {
		return false, err
	}
	if state.Marks.Has(c) {
		return false, nil
	}

	return true, s.replace(ctx, c, blob)
}

// Unpushed returns a copy of the unpushed marks.
func (s *LocalStore) Unpushed(ctx context.Context) (models.UnpushedMarks, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.readUnpushed(ctx)
	if err != nil {
		return nil, err
	}
	return state.Marks, nil
}

// ClearUnpushed drops the marks a successful push carried. A collection
// changed again since marks was read keeps its newer mark.
func (s *LocalStore) ClearUnpushed(ctx context.Context, marks models.UnpushedMarks) error {
	if len(marks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.readUnpushed(ctx)
	if err != nil {
		return err
	}

	changed := false
	for c, rev := range marks {
		if current, ok := state.Marks[c]; ok && current == rev {
			delete(state.Marks, c)
			changed = true
		}
	}
	if !changed {
		return nil
	}

	return s.writeJSON(ctx, unpushedKey, state)
}

// Blob returns the stored blob of c, or nil when the collection was never
// written.
func (s *LocalStore) Blob(ctx context.Context, c models.Collection) (json.RawMessage, error) {
	if !c.Valid() {
		return nil, ErrUnknownEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	value, _, err := s.read(ctx, collectionKey(c))
	return value, err
}

// Snapshot returns the blobs of every collection that has been written.
func (s *LocalStore) Snapshot(ctx context.Context) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(models.Snapshot, len(models.Collections))
	for _, c := range models.Collections {
		value, found, err := s.read(ctx, collectionKey(c))
		if err != nil {
			return nil, err
		}
		if found {
			snapshot[c] = value
		}
	}

	return snapshot, nil
}

// Settings returns the settings object, empty when never saved.
func (s *LocalStore) Settings(ctx context.Context) (models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := models.Record{}
	if err := s.readJSON(ctx, collectionKey(models.Settings), &settings); err != nil {
		return nil, err
	}
	if settings == nil {
		settings = models.Record{}
	}
	return settings, nil
}

// SaveSettings stamps and stores the settings object.
func (s *LocalStore) SaveSettings(ctx context.Context, settings models.Record) (models.Record, error) {
	stored := settings.Clone()
	stored.Touch(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeJSON(ctx, collectionKey(models.Settings), stored); err != nil {
		return nil, err
	}
	if err := s.markUnpushed(ctx, models.Settings); err != nil {
		return nil, err
	}
	return stored, nil
}

// Ledger returns a copy of the deleted items ledger.
func (s *LocalStore) Ledger(ctx context.Context) (models.DeletedItemsLedger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readLedger(ctx)
}

// ClearLedger removes ids of entity from the ledger. Unknown ids are ignored.
func (s *LocalStore) ClearLedger(ctx context.Context, entity models.EntityType, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.readLedger(ctx)
	if err != nil {
		return err
	}

	existing, ok := ledger[entity]
	if !ok {
		return nil
	}
	kept := slices.DeleteFunc(existing, func(id string) bool { return slices.Contains(ids, id) })
	if len(kept) == 0 {
		delete(ledger, entity)
	} else {
		ledger[entity] = kept
	}

	return s.writeJSON(ctx, deletedItemsKey, ledger)
}

// LastSync returns the time of the last successful full sync, zero if none.
func (s *LocalStore) LastSync(ctx context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var t time.Time
	if err := s.readJSON(ctx, lastSyncKey, &t); err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// SetLastSync records the time of a successful full sync.
func (s *LocalStore) SetLastSync(ctx context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeJSON(ctx, lastSyncKey, t.UTC())
}

// LoadQueue returns the persisted mutation queue.
func (s *LocalStore) LoadQueue(ctx context.Context) ([]models.QueuedMutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var queue []models.QueuedMutation
	if err := s.readJSON(ctx, mutationQueueKey, &queue); err != nil {
		return nil, err
	}
	return queue, nil
}

// SaveQueue persists the mutation queue.
func (s *LocalStore) SaveQueue(ctx context.Context, queue []models.QueuedMutation) error {
	if queue == nil {
		queue = []models.QueuedMutation{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeJSON(ctx, mutationQueueKey, queue)
}

// ── internals, callers hold s.mu ──────────────────────────────────────────────

func (s *LocalStore) read(ctx context.Context, key string) ([]byte, bool, error) {
	if value, ok := s.cache[key]; ok {
		return append([]byte(nil), value...), true, nil
	}

	value, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("error reading %s: %w", key, err)
	}
	if found {
		s.cache[key] = append([]byte(nil), value...)
	}
	return value, found, nil
}

func (s *LocalStore) write(ctx context.Context, key string, value []byte) error {
	if err := s.kv.Set(ctx, key, value); err != nil {
		return fmt.Errorf("error writing %s: %w", key, err)
	}
	s.cache[key] = append([]byte(nil), value...)
	return nil
}

func (s *LocalStore) readJSON(ctx context.Context, key string, v any) error {
	value, found, err := s.read(ctx, key)
	if err != nil || !found {
		return err
	}
	if err := json.Unmarshal(value, v); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "LocalStore.readJSON").
			Str("key", key).
			Msg("persisted value cannot be decoded")
		return fmt.Errorf("%w: %s: %w", ErrCorruptState, key, err)
	}
	return nil
}

func (s *LocalStore) writeJSON(ctx context.Context, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", key, err)
	}
	return s.write(ctx, key, value)
}

func (s *LocalStore) readRecords(ctx context.Context, c models.Collection) ([]models.Record, error) {
	var records []models.Record
	if err := s.readJSON(ctx, collectionKey(c), &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}

func (s *LocalStore) replace(ctx context.Context, c models.Collection, blob json.RawMessage) error {
	if err := s.write(ctx, collectionKey(c), blob); err != nil {
		return err
	}

	state, err := s.readUnpushed(ctx)
	if err != nil {
		return err
	}
	if !state.Marks.Has(c) {
		return nil
	}
	delete(state.Marks, c)
	return s.writeJSON(ctx, unpushedKey, state)
}

func (s *LocalStore) markUnpushed(ctx context.Context, c models.Collection) error {
	state, err := s.readUnpushed(ctx)
	if err != nil {
		return err
	}
	state.Seq++
	state.Marks[c] = state.Seq
	return s.writeJSON(ctx, unpushedKey, state)
}

func (s *LocalStore) readUnpushed(ctx context.Context) (unpushedState, error) {
	var state unpushedState
	if err := s.readJSON(ctx, unpushedKey, &state); err != nil {
		return unpushedState{}, err
	}
	if state.Marks == nil {
		state.Marks = models.UnpushedMarks{}
	}
	return state, nil
}

func (s *LocalStore) readLedger(ctx context.Context) (models.DeletedItemsLedger, error) {
	ledger := models.DeletedItemsLedger{}
	if err := s.readJSON(ctx, deletedItemsKey, &ledger); err != nil {
		return nil, err
	}
	if ledger == nil {
		ledger = models.DeletedItemsLedger{}
	}
	return ledger, nil
}
