package notify

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/realtime"
)

// requestTimeout bounds the snapshot requests sent over the channel from
// inside event handlers, which have no caller context.
const requestTimeout = 10 * time.Second

// TransportState describes how the store is currently receiving updates.
type TransportState int

const (
	TransportIdle TransportState = iota
	TransportLive
	TransportReconnecting
	TransportPolling
)

func (t TransportState) String() string {
	switch t {
	case TransportLive:
		return "live"
	case TransportReconnecting:
		return "reconnecting"
	case TransportPolling:
		return "polling"
	default:
		return "idle"
	}
}

// Channel is an open real-time connection.
type Channel interface {
	Send(ctx context.Context, method string, args ...any) error
	Close() error
}

// ChannelDialer opens a Channel that reports events to h.
type ChannelDialer interface {
	Dial(ctx context.Context, h realtime.Handlers) (Channel, error)
}

type realtimeDialer struct {
	d *realtime.Dialer
}

func (r realtimeDialer) Dial(ctx context.Context, h realtime.Handlers) (Channel, error) {
	c, err := r.d.Dial(ctx, h)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// RealtimeDialer adapts a hub dialer. A nil dialer yields nil, which makes
// the store poll.
func RealtimeDialer(d *realtime.Dialer) ChannelDialer {
	if d == nil {
		return nil
	}
	return realtimeDialer{d: d}
}

// Start loads the initial snapshot and opens the real-time channel,
// falling back to polling when the channel is unavailable. It does nothing
// when the session is not authenticated or the store was already started.
// Start returns once both the refresh and the connect attempt finish;
// neither failure is returned.
func (s *Store) Start(ctx context.Context) {
	if !s.authed {
		s.logger.Debug("not authenticated, notifications disabled")
		return
	}

	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		_ = s.Refresh(ctx)
		return nil
	})
	g.Go(func() error {
		s.connect(ctx)
		return nil
	})
	_ = g.Wait()
}

// Stop closes the channel and halts polling. The store stays readable.
func (s *Store) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	ch := s.channel
	s.channel = nil
	s.mu.Unlock()

	s.poller.Stop()
	if ch != nil {
		if err := ch.Close(); err != nil {
			s.logger.Debug("closing channel", slog.Any("error", err))
		}
	}
	s.setTransport(TransportIdle)
}

// Polling reports whether the fallback poller is active.
func (s *Store) Polling() bool {
	return s.poller.Running()
}

// Transport returns the current delivery mode.
func (s *Store) Transport() TransportState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport
}

func (s *Store) connect(ctx context.Context) {
	if s.dialer == nil {
		s.startPolling(TransportPolling)
		return
	}

	ch, err := s.dialer.Dial(ctx, s.handlers())
	if err != nil {
		s.logger.Warn("real-time channel unavailable, polling", slog.Any("error", err))
		s.startPolling(TransportPolling)
		return
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		_ = ch.Close()
		return
	}
	s.channel = ch
	s.mu.Unlock()

	s.poller.Stop()
	s.setTransport(TransportLive)
	s.requestSnapshot(ctx, ch)
}

func (s *Store) handlers() realtime.Handlers {
	return realtime.Handlers{
		OnUnreadCount: s.SetUnreadCount,
		OnNotifications: func(list []model.RawNotification) {
			s.MergeStore(list)
		},
		OnNotification: func(item model.RawNotification) {
			s.MergeStore([]model.RawNotification{item})
		},
		OnReconnecting: func(err error) {
			s.startPolling(TransportReconnecting)
		},
		OnReconnected: func() {
			s.mu.Lock()
			ch, stopped := s.channel, s.stopped
			s.mu.Unlock()
			if stopped || ch == nil {
				return
			}

			s.poller.Stop()
			s.setTransport(TransportLive)

			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			s.requestSnapshot(ctx, ch)
		},
		OnClose: func(err error) {
			s.logger.Warn("real-time channel closed, polling", slog.Any("error", err))
			s.mu.Lock()
			s.channel = nil
			s.mu.Unlock()
			s.startPolling(TransportPolling)
		},
	}
}

// requestSnapshot asks the server to push the recent list and the count.
func (s *Store) requestSnapshot(ctx context.Context, ch Channel) {
	if err := ch.Send(ctx, realtime.MethodRequestRecentNotifications, s.fetchLimit); err != nil {
		s.logger.Warn("requesting recent notifications", slog.Any("error", err))
	}
	if err := ch.Send(ctx, realtime.MethodRequestUnreadCount); err != nil {
		s.logger.Warn("requesting unread count", slog.Any("error", err))
	}
}

func (s *Store) startPolling(state TransportState) {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return
	}

	s.poller.Start()
	s.setTransport(state)
}

func (s *Store) setTransport(state TransportState) {
	s.mu.Lock()
	changed := s.transport != state
	s.transport = state
	s.mu.Unlock()

	if changed && s.onTrans != nil {
		s.onTrans(state)
	}
}
