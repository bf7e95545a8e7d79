package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/notify"
)

// ActionTimeout bounds one user-initiated store call.
const ActionTimeout = 30 * time.Second

// Store is the subset of the notification store the views drive.
type Store interface {
	MarkRead(ctx context.Context, ids []int64) (int, error)
	MarkUnread(ctx context.Context, ids []int64) (int, error)
	MarkAllRead(ctx context.Context) (int, error)
	MuteProject(ctx context.Context, projectID int64, muted bool) error
	Refresh(ctx context.Context) error
}

// NavigateMsg asks the application to open Route. MarkErr is set when the
// optimistic mark-read that preceded navigation failed.
type NavigateMsg struct {
	ID      int64
	Route   string
	MarkErr error
}

// ActionResultMsg reports the outcome of a store mutation.
type ActionResultMsg struct {
	Op    string
	Count int
	Err   error
}

// StatusText renders the result for the status bar and reports whether it
// is an error.
func (m ActionResultMsg) StatusText() (string, bool) {
	if m.Err == nil {
		return fmt.Sprintf("%s: %d updated", m.Op, m.Count), false
	}

	var berr *notify.BatchError
	if errors.As(m.Err, &berr) {
		return fmt.Sprintf("%s: %d updated, %d failed", m.Op, len(berr.Succeeded), len(berr.Failed)), true
	}
	return fmt.Sprintf("Unable to %s", m.Op), true
}

// OpenCmd marks n read if needed and then asks the app to navigate to its
// route. Navigation does not wait on the mark succeeding.
func OpenCmd(s Store, n model.Notification) tea.Cmd {
	return func() tea.Msg {
		var markErr error
		if !n.IsRead {
			ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
			defer cancel()
			_, markErr = s.MarkRead(ctx, []int64{n.ID})
		}
		return NavigateMsg{ID: n.ID, Route: n.Route, MarkErr: markErr}
	}
}

// MarkCmd marks ids read or unread.
func MarkCmd(s Store, ids []int64, read bool) tea.Cmd {
	ids = slices.Clone(ids)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()
		if read {
			count, err := s.MarkRead(ctx, ids)
			return ActionResultMsg{Op: "mark read", Count: count, Err: err}
		}
		count, err := s.MarkUnread(ctx, ids)
		return ActionResultMsg{Op: "mark unread", Count: count, Err: err}
	}
}

// MarkAllCmd marks every unread notification read.
func MarkAllCmd(s Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()
		count, err := s.MarkAllRead(ctx)
		return ActionResultMsg{Op: "mark all read", Count: count, Err: err}
	}
}

// MuteCmd mutes or unmutes each project in turn. Count is the number of
// projects updated; failures are joined.
func MuteCmd(s Store, projectIDs []int64, muted bool) tea.Cmd {
	projectIDs = slices.Clone(projectIDs)
	op := "unmute"
	if muted {
		op = "mute"
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()

		var errs []error
		count := 0
		for _, pid := range projectIDs {
			if err := s.MuteProject(ctx, pid, muted); err != nil {
				errs = append(errs, err)
				continue
			}
			count++
		}
		return ActionResultMsg{Op: op, Count: count, Err: errors.Join(errs...)}
	}
}

// RefreshResultMsg reports a manual refresh.
type RefreshResultMsg struct {
	Err error
}

// RefreshCmd re-fetches the snapshot.
func RefreshCmd(s Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), ActionTimeout)
		defer cancel()
		return RefreshResultMsg{Err: s.Refresh(ctx)}
	}
}
