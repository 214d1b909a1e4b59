package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
)

var (
	ErrInvalidInterval = errors.New("task interval must be positive")
	ErrEmptyTag        = errors.New("task tag is empty")
	ErrSchedulerClosed = errors.New("scheduler is stopped")
)

type tickerJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// TickerScheduler is an in-process [Scheduler]: every registered task runs
// on its own ticker goroutine until it is cancelled, replaced, or the
// scheduler is stopped. A task never overlaps with itself.
type TickerScheduler struct {
	mu     sync.Mutex
	jobs   map[string]*tickerJob
	closed bool
	wg     sync.WaitGroup

	logger *logger.Logger
}

var _ Scheduler = (*TickerScheduler)(nil)

func NewTickerScheduler(log *logger.Logger) *TickerScheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &TickerScheduler{
		jobs:   make(map[string]*tickerJob),
		logger: log,
	}
}

// Register starts running task every interval. The first run happens one
// interval after registration. The task's context is derived from ctx.
func (s *TickerScheduler) Register(ctx context.Context, tag string, interval time.Duration, task func(ctx context.Context)) error {
	if tag == "" {
		return ErrEmptyTag
	}
	if interval <= 0 {
		return ErrInvalidInterval
	}

	s.Cancel(tag)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSchedulerClosed
	}

	if old, ok := s.jobs[tag]; ok {
		old.cancel()
	}

	jobCtx, cancel := context.WithCancel(ctx)
	job := &tickerJob{cancel: cancel, done: make(chan struct{})}
	s.jobs[tag] = job
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer close(job.done)

		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				task(jobCtx)
			}
		}
	}()

	s.logger.Debug().Str("func", "TickerScheduler.Register").Str("tag", tag).Dur("interval", interval).Msg("task registered")
	return nil
}

// Cancel stops the task registered under tag and waits for a run in
// progress to return. Unknown tags are ignored.
func (s *TickerScheduler) Cancel(tag string) {
	s.mu.Lock()
	job, ok := s.jobs[tag]
	delete(s.jobs, tag)
	s.mu.Unlock()

	if !ok {
		return
	}
	job.cancel()
	<-job.done
}

// Stop cancels every task and rejects further registrations.
func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	s.closed = true
	jobs := s.jobs
	s.jobs = make(map[string]*tickerJob)
	s.mu.Unlock()

	for _, job := range jobs {
		job.cancel()
	}
	s.wg.Wait()
}
