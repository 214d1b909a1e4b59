package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/internal/mock"
	"github.com/MKhiriev/go-trip-keeper/models"
)

type fakeSyncer struct {
	mu       sync.Mutex
	calls    []string
	drainErr error
}

func (f *fakeSyncer) DrainQueue(context.Context) (models.DrainResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "drain")
	return models.DrainResult{}, f.drainErr
}

func (f *fakeSyncer) FullSync(context.Context) (models.SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "sync")
	return models.SyncResult{Success: true}, nil
}

func (f *fakeSyncer) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeConn struct{ online atomic.Bool }

func (c *fakeConn) Online() bool { return c.online.Load() }

func TestBackgroundAgent_DeliversWhenOnline(t *testing.T) {
	scheduler := NewTickerScheduler(logger.Nop())
	t.Cleanup(scheduler.Stop)

	syncer := &fakeSyncer{}
	conn := &fakeConn{}
	conn.online.Store(true)

	agent := NewBackgroundAgent(scheduler, syncer, conn, 5*time.Millisecond, logger.Nop())
	agent.Run()
	t.Cleanup(agent.Stop)

	require.True(t, agent.Registered())
	require.Eventually(t, func() bool { return len(syncer.snapshot()) >= 2 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, []string{"drain", "sync"}, syncer.snapshot()[:2])
}

func TestBackgroundAgent_SkipsWhileOffline(t *testing.T) {
	scheduler := NewTickerScheduler(logger.Nop())
	t.Cleanup(scheduler.Stop)

	syncer := &fakeSyncer{}
	agent := NewBackgroundAgent(scheduler, syncer, &fakeConn{}, 5*time.Millisecond, logger.Nop())
	agent.Run()
	t.Cleanup(agent.Stop)

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, syncer.snapshot())
}

func TestBackgroundAgent_AbortedDrainSkipsSync(t *testing.T) {
	syncer := &fakeSyncer{drainErr: errors.New("unauthorized")}
	conn := &fakeConn{}
	conn.online.Store(true)

	agent := NewBackgroundAgent(NewTickerScheduler(logger.Nop()), syncer, conn, time.Hour, logger.Nop())
	agent.deliver(context.Background())

	assert.Equal(t, []string{"drain"}, syncer.snapshot())
}

func TestBackgroundAgent_RegistrationFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	scheduler := mock.NewMockScheduler(ctrl)
	scheduler.EXPECT().
		Register(gomock.Any(), SyncTag, time.Minute, gomock.Any()).
		Return(errors.New("background sync not supported"))

	agent := NewBackgroundAgent(scheduler, &fakeSyncer{}, &fakeConn{}, time.Minute, logger.Nop())
	agent.Run()

	assert.False(t, agent.Registered())
	// nothing registered, so nothing to cancel
	agent.Stop()
}

func TestBackgroundAgent_StopCancelsTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	scheduler := mock.NewMockScheduler(ctrl)
	gomock.InOrder(
		scheduler.EXPECT().Register(gomock.Any(), SyncTag, DefaultBackgroundInterval, gomock.Any()).Return(nil),
		scheduler.EXPECT().Cancel(SyncTag),
	)

	agent := NewBackgroundAgent(scheduler, &fakeSyncer{}, &fakeConn{}, 0, logger.Nop())
	agent.Run()
	agent.Run()
	require.True(t, agent.Registered())

	agent.Stop()
	agent.Stop()
	assert.False(t, agent.Registered())

	// a stopped agent does not register again
	agent.Run()
	assert.False(t, agent.Registered())
}
