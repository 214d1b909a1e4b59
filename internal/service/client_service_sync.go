// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/adapter"
	"github.com/MKhiriev/go-trip-keeper/internal/app"
	"github.com/MKhiriev/go-trip-keeper/internal/connectivity"
	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/queue"
	"github.com/MKhiriev/go-trip-keeper/models"
)

// DefaultSyncDebounce is the quiet period before a scheduled push fires.
const DefaultSyncDebounce = 2 * time.Second

// Engine is the sync engine: it pushes and pulls full snapshots, forwards
// deletes, drains the offline queue and owns the debounce timer of
// scheduled pushes. Engines share no state, so several may run side by
// side against different stores.
type Engine struct {
	local   LocalStore
	queue   MutationQueue
	remote  adapter.RemoteStore
	monitor connectivity.Monitor

	debounce time.Duration
	now      func() time.Time

	timerMu    sync.Mutex
	timer      *time.Timer
	generation uint64
	stopped    bool
	inflight   sync.WaitGroup

	syncing atomic.Bool

	statusMu  sync.Mutex
	lastError string

	unsubscribe func()
	baseCtx     context.Context
	cancel      context.CancelFunc

	logger *logger.Logger
}

var _ SyncEngine = (*Engine)(nil)

// NewEngine wires an engine. A non-positive debounce falls back to
// [DefaultSyncDebounce].
func NewEngine(local LocalStore, q MutationQueue, remote adapter.RemoteStore, monitor connectivity.Monitor, debounce time.Duration, log *logger.Logger) *Engine {
	if debounce <= 0 {
		debounce = DefaultSyncDebounce
	}
	if log == nil {
		log = logger.Nop()
	}

	baseCtx, cancel := context.WithCancel(log.WithContext(context.Background()))

	e := &Engine{
		local:    local,
		queue:    q,
		remote:   remote,
		monitor:  monitor,
		debounce: debounce,
		now:      time.Now,
		baseCtx:  baseCtx,
		cancel:   cancel,
		logger:   log,
	}

	q.OnDrop(e.onDrop)

	return e
}

// Push sends every collection present locally in one request. The remote
// store replaces each included collection wholesale, so ledger ids and
// unpushed marks of the pushed collections are confirmed and cleared.
func (e *Engine) Push(ctx context.Context) (models.SyncResult, error) {
	log := logger.FromContext(ctx)

	pushed, err := e.push(ctx)
	if err != nil {
		return e.absorb(ctx, "Engine.Push", err)
	}
	if len(pushed) == 0 {
		return models.SyncResult{Success: true, Message: app.MsgNothingToPush}, nil
	}

	log.Debug().Str("func", "Engine.Push").Any("collections", pushed).Msg("snapshot pushed")
	e.setLastError("")
	return models.SyncResult{Success: true, Pushed: pushed}, nil
}

// push is Push without the result conversion. The ledger and the unpushed
// marks are read before the snapshot: a change made after that point may
// be missing from the pushed blob and must stay recorded.
func (e *Engine) push(ctx context.Context) ([]models.Collection, error) {
	ledger, err := e.local.Ledger(ctx)
	if err != nil {
		return nil, fmt.Errorf("error reading deleted items ledger: %w", err)
	}

	marks, err := e.local.Unpushed(ctx)
	if err != nil {
		return nil, fmt.Errorf("error reading unpushed marks: %w", err)
	}

	snapshot, err := e.local.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("error reading local snapshot: %w", err)
	}

	present := snapshot.Present()
	if len(present) == 0 {
		return nil, nil
	}

	if err = e.remote.Push(ctx, snapshot); err != nil {
		return nil, mapAdapterError(err)
	}

	for entity, ids := range ledger {
		if !slices.Contains(present, entity.Collection()) {
			continue
		}
		if err = e.local.ClearLedger(ctx, entity, ids...); err != nil {
			return present, fmt.Errorf("error clearing deleted items ledger: %w", err)
		}
	}

	carried := make(models.UnpushedMarks, len(marks))
	for c, rev := range marks {
		if slices.Contains(present, c) {
			carried[c] = rev
		}
	}
	if err = e.local.ClearUnpushed(ctx, carried); err != nil {
		return present, fmt.Errorf("error clearing unpushed marks: %w", err)
	}

	return present, nil
}

// Pull fetches the remote snapshot and overwrites every local collection
// it carries. Absent and null collections are left alone, a collection of
// the wrong shape is skipped, and ids still in the deleted items ledger
// are filtered out so that an unconfirmed local delete is not undone.
// A pending scheduled push is cancelled once the pull is applied.
func (e *Engine) Pull(ctx context.Context) (models.SyncResult, error) {
	return e.pull(ctx, false)
}

// pull applies the remote snapshot. With keepUnpushed set, collections
// holding local changes not pushed yet are not overwritten; the push that
// follows in a full sync sends them instead.
func (e *Engine) pull(ctx context.Context, keepUnpushed bool) (models.SyncResult, error) {
	log := logger.FromContext(ctx)

	snapshot, err := e.remote.Pull(ctx)
	if err != nil {
		return e.absorb(ctx, "Engine.Pull", mapAdapterError(err))
	}

	ledger, err := e.local.Ledger(ctx)
	if err != nil {
		return e.absorb(ctx, "Engine.Pull", fmt.Errorf("error reading deleted items ledger: %w", err))
	}

	// validate everything before writing anything
	blobs := make(map[models.Collection]json.RawMessage, len(snapshot))
	var result models.SyncResult
	for _, c := range snapshot.Present() {
		blob := snapshot[c]
		if err = models.ValidateBlob(c, blob); err != nil {
			log.Warn().Err(err).Str("func", "Engine.Pull").Str("collection", string(c)).Msg("skipping malformed collection")
			result.Skipped = append(result.Skipped, c)
			continue
		}

		if entity, ok := c.EntityType(); ok && len(ledger[entity]) > 0 {
			if blob, err = withoutIDs(blob, ledger[entity]); err != nil {
				result.Skipped = append(result.Skipped, c)
				continue
			}
		}
		blobs[c] = blob
	}

	for _, c := range models.Collections {
		blob, ok := blobs[c]
		if !ok {
			continue
		}
		if !keepUnpushed {
			if err = e.local.BulkReplace(ctx, c, blob); err != nil {
				return result, fmt.Errorf("error replacing local %s: %w", c, err)
			}
			result.Pulled = append(result.Pulled, c)
			continue
		}

		var replaced bool
		if replaced, err = e.local.ReplaceClean(ctx, c, blob); err != nil {
			return result, fmt.Errorf("error replacing local %s: %w", c, err)
		}
		if !replaced {
			result.KeptLocal = append(result.KeptLocal, c)
			continue
		}
		result.Pulled = append(result.Pulled, c)
	}

	e.CancelPendingSync()

	result.Success = true
	e.setLastError("")
	log.Debug().Str("func", "Engine.Pull").
		Any("collections", result.Pulled).
		Any("kept_local", result.KeptLocal).
		Msg("snapshot pulled")
	return result, nil
}

// withoutIDs drops the elements of a list blob whose id is in ids. The
// blob is returned unchanged when nothing matches.
func withoutIDs(blob json.RawMessage, ids []string) (json.RawMessage, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(blob, &elements); err != nil {
		return nil, err
	}

	kept := elements[:0]
	for _, el := range elements {
		var rec struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(el, &rec); err != nil {
			return nil, err
		}
		if !slices.Contains(ids, rec.ID) {
			kept = append(kept, el)
		}
	}

	if len(kept) == len(elements) {
		return blob, nil
	}
	return json.Marshal(kept)
}

// ImmediateDelete forwards deletes to the remote store without waiting
// for the debounce. On success the ids leave the ledger; on failure they
// stay there for the next full sync.
func (e *Engine) ImmediateDelete(ctx context.Context, ids map[models.EntityType][]string) (models.SyncResult, error) {
	req := models.DeleteRequest{IDs: make(map[models.EntityType][]string, len(ids))}
	for entity, list := range ids {
		if len(list) > 0 {
			req.IDs[entity] = list
		}
	}
	if req.Len() == 0 {
		return models.SyncResult{Success: true}, nil
	}

	if err := e.remote.Delete(ctx, req); err != nil {
		return e.absorb(ctx, "Engine.ImmediateDelete", mapAdapterError(err))
	}

	for entity, list := range req.IDs {
		if err := e.local.ClearLedger(ctx, entity, list...); err != nil {
			return models.SyncResult{}, fmt.Errorf("error clearing deleted items ledger: %w", err)
		}
	}

	return models.SyncResult{Success: true}, nil
}

// ScheduleSync schedules a push after the debounce period. Calling it again
// before the push fires restarts the period.
func (e *Engine) ScheduleSync() {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()

	if e.stopped {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}

	e.generation++
	gen := e.generation
	e.timer = time.AfterFunc(e.debounce, func() { e.fireScheduled(gen) })
}

// CancelPendingSync drops a scheduled push. A push that already fired is
// not affected.
func (e *Engine) CancelPendingSync() {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()

	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) fireScheduled(gen uint64) {
	e.timerMu.Lock()
	if e.stopped || gen != e.generation {
		e.timerMu.Unlock()
		return
	}
	e.timer = nil
	e.inflight.Add(1)
	e.timerMu.Unlock()

	defer e.inflight.Done()

	result, err := e.Push(e.baseCtx)
	if err != nil {
		e.logger.Err(err).Str("func", "Engine.fireScheduled").Msg("scheduled push failed")
		return
	}
	if !result.Success {
		e.logger.Warn().Str("func", "Engine.fireScheduled").
			Str("message", result.Message).
			Msg("scheduled push failed, changes stay unpushed until the next full sync")
	}
}

// FullSync pulls and then pushes, retrying deletes still in the ledger.
// The pull leaves collections with unpushed local changes alone, so those
// changes reach the remote store with the push. A call made while another
// full sync runs reports [ErrSyncInProgress] in its result. The last sync
// time is recorded on success.
func (e *Engine) FullSync(ctx context.Context) (models.SyncResult, error) {
	if !e.syncing.CompareAndSwap(false, true) {
		return models.SyncResult{Message: ErrSyncInProgress.Error()}, nil
	}
	defer e.syncing.Store(false)

	log := logger.FromContext(ctx)

	pulled, err := e.pull(ctx, true)
	if err != nil || !pulled.Success {
		return pulled, err
	}

	pushed, err := e.Push(ctx)
	if err != nil || !pushed.Success {
		pushed.Pulled, pushed.Skipped, pushed.KeptLocal = pulled.Pulled, pulled.Skipped, pulled.KeptLocal
		return pushed, err
	}

	result := models.SyncResult{
		Success:   true,
		Pulled:    pulled.Pulled,
		Pushed:    pushed.Pushed,
		Skipped:   pulled.Skipped,
		KeptLocal: pulled.KeptLocal,
	}

	ledger, err := e.local.Ledger(ctx)
	if err != nil {
		return result, fmt.Errorf("error reading deleted items ledger: %w", err)
	}
	if ledger.Len() > 0 {
		deleted, err := e.ImmediateDelete(ctx, ledger)
		if err != nil {
			return result, err
		}
		if !deleted.Success {
			result.Success = false
			result.Message = deleted.Message
			return result, nil
		}
	}

	if err = e.local.SetLastSync(ctx, e.now()); err != nil {
		return result, fmt.Errorf("error recording last sync: %w", err)
	}

	log.Info().Str("func", "Engine.FullSync").
		Any("pulled", result.Pulled).
		Any("kept_local", result.KeptLocal).
		Any("pushed", result.Pushed).
		Msg("full sync finished")

	return result, nil
}

// DrainQueue delivers queued mutations. Deletes go through the remote
// delete endpoint; creates and updates are delivered by a single snapshot
// push per drain, since the snapshot already holds their latest state.
// An authentication failure aborts the drain and is returned.
func (e *Engine) DrainQueue(ctx context.Context) (models.DrainResult, error) {
	log := logger.FromContext(ctx)

	var (
		pushed  bool
		pushErr error
	)

	deliver := func(ctx context.Context, m models.QueuedMutation) error {
		var err error
		switch m.Type {
		case models.MutationDelete:
			err = e.remote.Delete(ctx, models.DeleteRequest{IDs: map[models.EntityType][]string{m.Entity: {m.EntityID}}})
			if err == nil {
				err = e.local.ClearLedger(ctx, m.Entity, m.EntityID)
			}
			err = mapAdapterError(err)
		default:
			if !pushed {
				pushed = true
				_, pushErr = e.push(ctx)
			}
			err = pushErr
		}

		if errors.Is(err, adapter.ErrUnauthorized) {
			return fmt.Errorf("%w: %w", queue.ErrDrainAborted, err)
		}
		return err
	}

	result, err := e.queue.Drain(ctx, deliver)
	if err != nil {
		log.Err(err).Str("func", "Engine.DrainQueue").Msg("queue drain aborted")
		e.setLastError(err.Error())
		return result, err
	}

	if result.Processed > 0 {
		log.Info().Str("func", "Engine.DrainQueue").
			Int("processed", result.Processed).
			Int("delivered", result.Delivered).
			Int("failed", result.Failed).
			Int("dropped", len(result.Dropped)).
			Msg("queue drained")
	}

	return result, nil
}

// Start subscribes to connectivity changes: every online edge drains the
// queue and runs a full sync.
func (e *Engine) Start(ctx context.Context) error {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()

	if e.stopped {
		return ErrEngineStopped
	}
	if e.unsubscribe != nil {
		return nil
	}

	e.unsubscribe = e.monitor.Subscribe(e.onConnectivityChange)
	return nil
}

// Stop unsubscribes from connectivity changes, cancels the scheduled push
// and waits for work started by the engine itself.
func (e *Engine) Stop() {
	e.timerMu.Lock()
	if e.stopped {
		e.timerMu.Unlock()
		return
	}
	e.stopped = true
	e.generation++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	unsubscribe := e.unsubscribe
	e.timerMu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	e.cancel()
	e.inflight.Wait()
}

func (e *Engine) onConnectivityChange(online bool) {
	if !online {
		e.logger.Info().Str("func", "Engine.onConnectivityChange").Msg("went offline, queueing mutations")
		return
	}

	e.timerMu.Lock()
	if e.stopped {
		e.timerMu.Unlock()
		return
	}
	e.inflight.Add(1)
	e.timerMu.Unlock()
	defer e.inflight.Done()

	ctx := e.baseCtx
	if _, err := e.DrainQueue(ctx); err != nil {
		return
	}
	result, err := e.FullSync(ctx)
	if err != nil {
		e.logger.Err(err).Str("func", "Engine.onConnectivityChange").Msg("full sync after reconnect failed")
		return
	}
	if !result.Success {
		e.logger.Warn().Str("func", "Engine.onConnectivityChange").Str("message", result.Message).Msg("full sync after reconnect did not complete")
	}
}

func (e *Engine) onDrop(drop models.DroppedMutation) {
	e.setLastError(fmt.Sprintf("%s %s %s was not synced: %v", drop.Mutation.Type, drop.Mutation.Entity, drop.Mutation.EntityID, drop.Err))
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status(ctx context.Context) models.SyncStatus {
	e.timerMu.Lock()
	pending := e.timer != nil
	e.timerMu.Unlock()

	status := models.SyncStatus{
		Online:           e.monitor.Online(),
		Syncing:          e.syncing.Load(),
		PendingSync:      pending,
		PendingMutations: e.queue.Len(),
		DroppedTotal:     e.queue.DroppedTotal(),
	}

	if ledger, err := e.local.Ledger(ctx); err == nil {
		status.LedgerSize = ledger.Len()
	}
	if marks, err := e.local.Unpushed(ctx); err == nil {
		status.Unpushed = marks.Collections()
	}
	if last, err := e.local.LastSync(ctx); err == nil {
		status.LastSync = last
	}

	e.statusMu.Lock()
	status.LastError = e.lastError
	e.statusMu.Unlock()

	return status
}

// absorb turns a failed remote call into an unsuccessful result. Only
// authentication failures are returned as errors.
func (e *Engine) absorb(ctx context.Context, fn string, err error) (models.SyncResult, error) {
	e.setLastError(err.Error())

	if errors.Is(err, adapter.ErrUnauthorized) {
		logger.FromContext(ctx).Err(err).Str("func", fn).Msg("remote store rejected credentials")
		return models.SyncResult{Message: err.Error()}, err
	}

	logger.FromContext(ctx).Warn().Err(err).Str("func", fn).Bool("retryable", adapter.IsRetryable(err)).Msg("sync attempt failed")
	return models.SyncResult{Message: err.Error()}, nil
}

func (e *Engine) setLastError(msg string) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.lastError = msg
}
