package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/notify"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/realtime"
	"github.com/hariomahlawat/ProjectManagement-sub006/tests/testutil"
)

type sent struct {
	method string
	args   []any
}

type fakeChannel struct {
	mu     sync.Mutex
	sent   []sent
	closed bool
}

func (c *fakeChannel) Send(_ context.Context, method string, args ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return realtime.ErrClosed
	}
	c.sent = append(c.sent, sent{method: method, args: args})
	return nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeChannel) methods() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.sent))
	for _, s := range c.sent {
		out = append(out, s.method)
	}
	return out
}

type fakeDialer struct {
	err      error
	ch       *fakeChannel
	handlers realtime.Handlers
	dials    int
}

func (d *fakeDialer) Dial(_ context.Context, h realtime.Handlers) (notify.Channel, error) {
	d.dials++
	if d.err != nil {
		return nil, d.err
	}
	d.handlers = h
	return d.ch, nil
}

func TestStore_Start_Unauthenticated(t *testing.T) {
	t.Parallel()

	src := testutil.NewFakeSource(testutil.Raw(1, at(1)))
	dialer := &fakeDialer{ch: &fakeChannel{}}
	s := newStore(t, src, func(o *notify.Options) {
		o.Authenticated = false
		o.Dialer = dialer
	})

	s.Start(context.Background())

	assert.Zero(t, src.ListCalls())
	assert.Zero(t, dialer.dials)
	assert.False(t, s.Polling())
	assert.Equal(t, notify.TransportIdle, s.Transport())
}

func TestStore_Start_NoDialerPolls(t *testing.T) {
	t.Parallel()

	src := testutil.NewFakeSource(testutil.Raw(1, at(1)))
	s := newStore(t, src)

	s.Start(context.Background())

	assert.Equal(t, 1, src.ListCalls())
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Polling())
	assert.Equal(t, notify.TransportPolling, s.Transport())

	s.Stop()
	assert.False(t, s.Polling())
	assert.Equal(t, notify.TransportIdle, s.Transport())
}

func TestStore_Start_DialFailurePolls(t *testing.T) {
	t.Parallel()

	dialer := &fakeDialer{err: errors.New("connection refused")}
	s := newStore(t, testutil.NewFakeSource(), func(o *notify.Options) {
		o.Dialer = dialer
	})

	s.Start(context.Background())

	assert.Equal(t, 1, dialer.dials)
	assert.True(t, s.Polling())
	assert.Equal(t, notify.TransportPolling, s.Transport())
}

func TestStore_Start_OnlyOnce(t *testing.T) {
	t.Parallel()

	src := testutil.NewFakeSource()
	s := newStore(t, src)

	s.Start(context.Background())
	s.Start(context.Background())

	assert.Equal(t, 1, src.ListCalls())
}

func TestStore_Channel_Lifecycle(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{}
	dialer := &fakeDialer{ch: ch}

	var mu sync.Mutex
	var states []notify.TransportState
	s := newStore(t, testutil.NewFakeSource(), func(o *notify.Options) {
		o.Dialer = dialer
		o.FetchLimit = 25
		o.OnTransportChange = func(st notify.TransportState) {
			mu.Lock()
			states = append(states, st)
			mu.Unlock()
		}
	})

	s.Start(context.Background())

	require.Equal(t, notify.TransportLive, s.Transport())
	assert.False(t, s.Polling())
	assert.Equal(t, []string{
		realtime.MethodRequestRecentNotifications,
		realtime.MethodRequestUnreadCount,
	}, ch.methods())
	assert.Equal(t, []any{25}, ch.sent[0].args)

	h := dialer.handlers
	h.OnNotifications([]model.RawNotification{testutil.Raw(1, at(1)), testutil.Raw(2, at(2))})
	h.OnNotification(testutil.Raw(3, at(3)))
	h.OnUnreadCount(7)

	items, unread := s.Snapshot()
	assert.Equal(t, []int64{3, 2, 1}, ids(items))
	assert.Equal(t, 7, unread)

	h.OnReconnecting(errors.New("socket reset"))
	assert.True(t, s.Polling())
	assert.Equal(t, notify.TransportReconnecting, s.Transport())

	h.OnReconnected()
	assert.False(t, s.Polling())
	assert.Equal(t, notify.TransportLive, s.Transport())
	assert.Len(t, ch.methods(), 4)

	h.OnClose(errors.New("retries exhausted"))
	assert.True(t, s.Polling())
	assert.Equal(t, notify.TransportPolling, s.Transport())

	// A late reconnect after a terminal close must not resume the dead channel.
	h.OnReconnected()
	assert.True(t, s.Polling())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []notify.TransportState{
		notify.TransportLive,
		notify.TransportReconnecting,
		notify.TransportLive,
		notify.TransportPolling,
	}, states)
}

func TestStore_Stop_ClosesChannel(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{}
	s := newStore(t, testutil.NewFakeSource(), func(o *notify.Options) {
		o.Dialer = &fakeDialer{ch: ch}
	})

	s.Start(context.Background())
	s.Stop()

	ch.mu.Lock()
	closed := ch.closed
	ch.mu.Unlock()
	assert.True(t, closed)
	assert.Equal(t, notify.TransportIdle, s.Transport())

	s.Start(context.Background())
	assert.Equal(t, notify.TransportIdle, s.Transport())
}

func TestTransportState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", notify.TransportIdle.String())
	assert.Equal(t, "live", notify.TransportLive.String())
	assert.Equal(t, "reconnecting", notify.TransportReconnecting.String())
	assert.Equal(t, "polling", notify.TransportPolling.String())
}

func TestRealtimeDialer_Nil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, notify.RealtimeDialer(nil))
}
