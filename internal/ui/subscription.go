package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
)

// SnapshotMsg carries the latest store snapshot to the view that owns Sub.
type SnapshotMsg struct {
	Sub    *Subscription
	Items  []model.Notification
	Unread int
}

// Subscription bridges a store listener into the Bubble Tea loop. The
// store calls Update from its own goroutine; Wait hands the latest
// snapshot to the program. Snapshots that arrive before the previous one
// was consumed replace it.
type Subscription struct {
	mu      sync.Mutex
	items   []model.Notification
	unread  int
	pending bool

	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewSubscription creates an idle subscription.
func NewSubscription() *Subscription {
	return &Subscription{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Update records a snapshot. It never blocks.
func (s *Subscription) Update(items []model.Notification, unread int) {
	s.mu.Lock()
	s.items = items
	s.unread = unread
	s.pending = true
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Wait returns a command that blocks until a snapshot is pending and
// yields it as a SnapshotMsg. After Close it yields nil.
func (s *Subscription) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.signal:
		case <-s.done:
			return nil
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.pending {
			return nil
		}
		s.pending = false
		return SnapshotMsg{Sub: s, Items: s.items, Unread: s.unread}
	}
}

// Close releases any pending Wait.
func (s *Subscription) Close() {
	s.once.Do(func() { close(s.done) })
}
