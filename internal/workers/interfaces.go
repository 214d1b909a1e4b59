// Package workers runs the client's background delivery: periodic work
// that flushes queued mutations while nobody is looking at the app.
//
// Hosts with a native deferred-delivery facility implement [Scheduler]
// themselves; everyone else gets the in-process [TickerScheduler].
package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-trip-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/scheduler_mock.go -package=mock -exclude_interfaces=Worker,Syncer,Connectivity

// Scheduler is the host's best-effort deferred-delivery facility. Tasks
// registered under the same tag replace each other.
type Scheduler interface {
	Register(ctx context.Context, tag string, interval time.Duration, task func(ctx context.Context)) error
	Cancel(tag string)
}

// Worker is a long-lived background component.
//
// Run must not block; Stop blocks until the worker has fully exited.
type Worker interface {
	Run()
	Stop()
}

// Syncer is the part of the sync engine the background agent drives.
type Syncer interface {
	DrainQueue(ctx context.Context) (models.DrainResult, error)
	FullSync(ctx context.Context) (models.SyncResult, error)
}

// Connectivity reports whether the remote store is reachable.
type Connectivity interface {
	Online() bool
}
