// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package connectivity tracks whether the remote store is reachable and
// notifies subscribers on every offline/online edge.
package connectivity

import (
	"context"
	"slices"
	"sync"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
)

// Listener is called once per connectivity edge with the new state.
type Listener func(online bool)

//go:generate mockgen -source=monitor.go -destination=../mock/connectivity_mock.go -package=mock

// Monitor reports the current connectivity state and delivers edges to
// subscribers. Listeners run on a dispatch goroutine, never inline with the
// event that caused the edge, and always in edge order.
type Monitor interface {
	Online() bool
	Subscribe(fn Listener) (unsubscribe func())
	Start(ctx context.Context) error
	Stop()
}

type subscription struct {
	id int
	fn Listener
}

// hub is the edge detector and dispatcher shared by every Monitor adapter.
type hub struct {
	mu      sync.Mutex
	online  bool
	subs    []subscription
	nextID  int
	pending []bool

	wake    chan struct{}
	done    chan struct{}
	running bool
	stopped bool
	wg      sync.WaitGroup

	logger *logger.Logger
}

func newHub(initial bool, log *logger.Logger) *hub {
	if log == nil {
		log = logger.Nop()
	}
	return &hub{
		online: initial,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: log,
	}
}

// Online returns the last observed state.
func (h *hub) Online() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.online
}

// Subscribe registers fn for future edges.
func (h *hub) Subscribe(fn Listener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	h.subs = append(h.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.subs = slices.DeleteFunc(h.subs, func(s subscription) bool { return s.id == id })
		})
	}
}

// set records a new state and queues an edge when it differs from the
// previous one. It reports whether an edge was queued.
func (h *hub) set(online bool) bool {
	h.mu.Lock()
	if h.online == online {
		h.mu.Unlock()
		return false
	}
	h.online = online
	h.pending = append(h.pending, online)
	h.mu.Unlock()

	h.logger.Info().
		Str("func", "connectivity.set").
		Bool("online", online).
		Msg("connectivity changed")

	select {
	case h.wake <- struct{}{}:
	default:
	}
	return true
}

// start launches the dispatch goroutine. Edges queued before start are
// delivered once it runs.
func (h *hub) start() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running || h.stopped {
		return
	}
	h.running = true

	h.wg.Add(1)
	go h.dispatch()
}

// stop ends dispatching and waits for a listener in progress to return.
// Pending edges are discarded.
func (h *hub) stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	close(h.done)
	h.mu.Unlock()

	h.wg.Wait()
}

func (h *hub) dispatch() {
	defer h.wg.Done()

	for {
		select {
		case <-h.done:
			return
		case <-h.wake:
		}

		for {
			h.mu.Lock()
			if len(h.pending) == 0 || h.stopped {
				h.mu.Unlock()
				break
			}
			edge := h.pending[0]
			h.pending = h.pending[1:]
			subs := slices.Clone(h.subs)
			h.mu.Unlock()

			for _, s := range subs {
				s.fn(edge)
			}
		}
	}
}
