// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
)

const (
	// SyncTag is the tag the agent registers its task under.
	SyncTag = "trip-keeper-sync"

	DefaultBackgroundInterval = 15 * time.Minute
)

// BackgroundAgent asks the host to run queued delivery periodically, so
// mutations made before the app went to the background still reach the
// remote store. If the host refuses, the agent does nothing and sync
// happens in the foreground only.
type BackgroundAgent struct {
	scheduler Scheduler
	syncer    Syncer
	conn      Connectivity
	interval  time.Duration

	mu         sync.Mutex
	registered bool
	ctx        context.Context
	cancel     context.CancelFunc

	logger *logger.Logger
}

var _ Worker = (*BackgroundAgent)(nil)

func NewBackgroundAgent(scheduler Scheduler, syncer Syncer, conn Connectivity, interval time.Duration, log *logger.Logger) *BackgroundAgent {
	if interval <= 0 {
		interval = DefaultBackgroundInterval
	}
	if log == nil {
		log = logger.Nop()
	}

	ctx, cancel := context.WithCancel(log.WithContext(context.Background()))

	return &BackgroundAgent{
		scheduler: scheduler,
		syncer:    syncer,
		conn:      conn,
		interval:  interval,
		ctx:       ctx,
		cancel:    cancel,
		logger:    log,
	}
}

// Run registers the periodic delivery task.
func (a *BackgroundAgent) Run() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.registered || a.ctx.Err() != nil {
		return
	}

	if err := a.scheduler.Register(a.ctx, SyncTag, a.interval, a.deliver); err != nil {
		a.logger.Warn().Err(err).
			Str("func", "BackgroundAgent.Run").
			Msg("background delivery unavailable, syncing in foreground only")
		return
	}

	a.registered = true
	a.logger.Info().Str("func", "BackgroundAgent.Run").Dur("interval", a.interval).Msg("background delivery registered")
}

// Registered reports whether the host accepted the periodic task.
func (a *BackgroundAgent) Registered() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.registered
}

// Stop cancels the periodic task.
func (a *BackgroundAgent) Stop() {
	a.mu.Lock()
	registered := a.registered
	a.registered = false
	a.mu.Unlock()

	a.cancel()
	if registered {
		a.scheduler.Cancel(SyncTag)
	}
}

// deliver drains the queue and runs a full sync. It is skipped while
// offline; an aborted drain skips the sync.
func (a *BackgroundAgent) deliver(ctx context.Context) {
	if !a.conn.Online() {
		return
	}

	log := logger.FromContext(ctx)

	if _, err := a.syncer.DrainQueue(ctx); err != nil {
		log.Err(err).Str("func", "BackgroundAgent.deliver").Msg("background drain aborted")
		return
	}

	result, err := a.syncer.FullSync(ctx)
	if err != nil {
		log.Err(err).Str("func", "BackgroundAgent.deliver").Msg("background sync failed")
		return
	}
	if !result.Success {
		log.Debug().Str("func", "BackgroundAgent.deliver").Str("message", result.Message).Msg("background sync incomplete")
	}
}
