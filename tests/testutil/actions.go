package testutil

import (
	"context"
	"sync"
)

// MuteCall records one MuteProject invocation.
type MuteCall struct {
	ProjectID int64
	Muted     bool
}

// FakeActions records the store calls a view makes.
type FakeActions struct {
	mu sync.Mutex

	Read      [][]int64
	Unread    [][]int64
	AllRead   int
	Mutes     []MuteCall
	Refreshes int

	// Err is returned from every call when set.
	Err error
}

func (f *FakeActions) MarkRead(_ context.Context, ids []int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Read = append(f.Read, append([]int64(nil), ids...))
	if f.Err != nil {
		return 0, f.Err
	}
	return len(ids), nil
}

func (f *FakeActions) MarkUnread(_ context.Context, ids []int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Unread = append(f.Unread, append([]int64(nil), ids...))
	if f.Err != nil {
		return 0, f.Err
	}
	return len(ids), nil
}

func (f *FakeActions) MarkAllRead(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AllRead++
	return 0, f.Err
}

func (f *FakeActions) MuteProject(_ context.Context, projectID int64, muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Mutes = append(f.Mutes, MuteCall{ProjectID: projectID, Muted: muted})
	return f.Err
}

func (f *FakeActions) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Refreshes++
	return f.Err
}
