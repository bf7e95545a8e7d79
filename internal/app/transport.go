package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/notify"
)

// TransportMsg reports a delivery-mode change to the root model.
type TransportMsg struct {
	State notify.TransportState
}

// TransportFeed carries transport changes from the store into the Bubble
// Tea loop. Only the latest unconsumed state is kept.
type TransportFeed struct {
	ch   chan notify.TransportState
	done chan struct{}
	once sync.Once
}

// NewTransportFeed creates an empty feed.
func NewTransportFeed() *TransportFeed {
	return &TransportFeed{
		ch:   make(chan notify.TransportState, 1),
		done: make(chan struct{}),
	}
}

// Publish records st, replacing any state not yet consumed.
func (f *TransportFeed) Publish(st notify.TransportState) {
	for {
		select {
		case f.ch <- st:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

// Wait returns a command yielding the next TransportMsg, or nil once the
// feed is closed.
func (f *TransportFeed) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case st := <-f.ch:
			return TransportMsg{State: st}
		case <-f.done:
			return nil
		}
	}
}

// Close releases any pending Wait.
func (f *TransportFeed) Close() {
	f.once.Do(func() { close(f.done) })
}
