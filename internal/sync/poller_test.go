package sync

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hariomahlawat/ProjectManagement-sub006/tests/testutil"
)

func TestPoller_StartStopIdempotent(t *testing.T) {
	t.Parallel()

	p := New(func(context.Context) {}, time.Hour, testutil.NewTestLogger())

	assert.False(t, p.Running())
	assert.True(t, p.Start())
	assert.False(t, p.Start())
	assert.True(t, p.Running())

	assert.True(t, p.Stop())
	assert.False(t, p.Stop())
	assert.False(t, p.Running())

	assert.True(t, p.Start())
	assert.True(t, p.Stop())
}

func TestPoller_DefaultInterval(t *testing.T) {
	t.Parallel()

	p := New(func(context.Context) {}, 0, nil)
	assert.Equal(t, DefaultInterval, p.Interval())
}

func TestPoller_Ticks(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	p := New(func(ctx context.Context) {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		calls.Add(1)
	}, 10*time.Millisecond, testutil.NewTestLogger())

	require.True(t, p.Start())
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	p.Stop()

	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, calls.Load(), settled+1)
	assert.GreaterOrEqual(t, p.Ticks(), 3)
}

func TestPoller_StopCancelsInFlight(t *testing.T) {
	t.Parallel()

	started := make(chan struct{}, 1)
	cancelled := make(chan struct{})
	p := New(func(ctx context.Context) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		select {
		case <-cancelled:
		default:
			close(cancelled)
		}
	}, 5*time.Millisecond, testutil.NewTestLogger())

	require.True(t, p.Start())
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never ran")
	}

	p.Stop()
	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight refresh was not cancelled")
	}
}
