package connectivity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
)

// ErrInvalidInterval is returned by Start when the probe interval is not
// positive.
var ErrInvalidInterval = errors.New("probe interval must be positive")

// Pinger probes the remote store. The remote adapter implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober is a polling Monitor for hosts without reachability events: it
// pings the remote store every interval. It starts offline, so the first
// successful probe is an online edge.
type Prober struct {
	*hub

	pinger   Pinger
	interval time.Duration

	cancel context.CancelFunc
	loopWG sync.WaitGroup
}

var _ Monitor = (*Prober)(nil)

// NewProber returns a prober that starts offline and pings every interval
// once started.
func NewProber(pinger Pinger, interval time.Duration, log *logger.Logger) *Prober {
	return &Prober{
		hub:      newHub(false, log),
		pinger:   pinger,
		interval: interval,
	}
}

// Probe pings once and records the outcome.
func (p *Prober) Probe(ctx context.Context) bool {
	err := p.pinger.Ping(ctx)
	if ctx.Err() != nil {
		// shutting down, not a connectivity signal
		return p.Online()
	}
	if err != nil && p.Online() {
		p.logger.Debug().Err(err).Str("func", "Prober.Probe").Msg("remote store unreachable")
	}
	online := err == nil
	p.set(online)
	return online
}

// Start probes once synchronously and then every interval until ctx is
// done or Stop is called.
func (p *Prober) Start(ctx context.Context) error {
	if p.interval <= 0 {
		return ErrInvalidInterval
	}

	p.start()
	p.Probe(ctx)

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.loopWG.Add(1)
	go func() {
		defer p.loopWG.Done()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				p.Probe(loopCtx)
			}
		}
	}()

	return nil
}

func (p *Prober) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.loopWG.Wait()
	p.stop()
}
