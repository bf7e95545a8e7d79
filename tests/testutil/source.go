package testutil

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/source"
)

// NewTestLogger returns a logger that discards everything.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Raw builds a payload with the given id and creation time.
func Raw(id int64, createdUTC string, kv ...any) model.RawNotification {
	r := model.RawNotification{"id": id, "createdUtc": createdUTC}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			r[k] = kv[i+1]
		}
	}
	return r
}

// FakeSource is an in-memory stand-in for the project server. Read state
// lives server-side, so UnreadCount is derived from it unless overridden.
type FakeSource struct {
	mu sync.Mutex

	items map[int64]model.RawNotification
	muted map[int64]bool

	// UnreadOverride, when non-nil, is returned by UnreadCount.
	UnreadOverride *int

	// ListErr and UnreadErr fail the corresponding calls.
	ListErr   error
	UnreadErr error

	// FailIDs fails mutations for the listed ids with the given error.
	FailIDs map[int64]error

	// MissingIDs answer mutations with a 404.
	MissingIDs map[int64]bool

	// MissingProjects answer mute calls with a 404.
	MissingProjects map[int64]bool

	// BeforeList runs inside ListNotifications before the response is built.
	BeforeList func(ctx context.Context)

	listCalls   int
	unreadCalls int
	readCalls   []int64
	unreadMarks []int64
	muteCalls   []int64
}

// NewFakeSource creates a FakeSource holding raws.
func NewFakeSource(raws ...model.RawNotification) *FakeSource {
	f := &FakeSource{
		items:           make(map[int64]model.RawNotification),
		muted:           make(map[int64]bool),
		FailIDs:         make(map[int64]error),
		MissingIDs:      make(map[int64]bool),
		MissingProjects: make(map[int64]bool),
	}
	f.Put(raws...)
	return f
}

// Put adds or replaces server-side records.
func (f *FakeSource) Put(raws ...model.RawNotification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range raws {
		id, ok := r["id"].(int64)
		if !ok {
			continue
		}
		cp := make(model.RawNotification, len(r))
		for k, v := range r {
			cp[k] = v
		}
		f.items[id] = cp
	}
}

// SetUnread fixes the value returned by UnreadCount.
func (f *FakeSource) SetUnread(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UnreadOverride = &n
}

func (f *FakeSource) ListNotifications(ctx context.Context, limit int) ([]model.RawNotification, error) {
	if f.BeforeList != nil {
		f.BeforeList(ctx)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	if f.ListErr != nil {
		return nil, f.ListErr
	}

	out := make([]model.RawNotification, 0, len(f.items))
	for _, r := range f.items {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["id"].(int64) > out[j]["id"].(int64)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeSource) UnreadCount(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unreadCalls++

	if f.UnreadErr != nil {
		return 0, f.UnreadErr
	}
	if f.UnreadOverride != nil {
		return *f.UnreadOverride, nil
	}

	n := 0
	for _, r := range f.items {
		if v, ok := r["readUtc"]; !ok || v == nil {
			n++
		}
	}
	return n, nil
}

func (f *FakeSource) MarkRead(ctx context.Context, id int64) error {
	return f.mutate(id, true)
}

func (f *FakeSource) MarkUnread(ctx context.Context, id int64) error {
	return f.mutate(id, false)
}

func (f *FakeSource) mutate(id int64, read bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if read {
		f.readCalls = append(f.readCalls, id)
	} else {
		f.unreadMarks = append(f.unreadMarks, id)
	}

	if err := f.FailIDs[id]; err != nil {
		return err
	}
	if f.MissingIDs[id] {
		delete(f.items, id)
		return &source.NotFoundError{Method: "POST", Path: "/notifications/read"}
	}

	r, ok := f.items[id]
	if !ok {
		return &source.NotFoundError{Method: "POST", Path: "/notifications/read"}
	}
	if read {
		r["readUtc"] = time.Now().UTC().Format(time.RFC3339)
	} else {
		delete(r, "readUtc")
	}
	return nil
}

func (f *FakeSource) SetProjectMuted(ctx context.Context, projectID int64, muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.muteCalls = append(f.muteCalls, projectID)
	if f.MissingProjects[projectID] {
		return &source.NotFoundError{Method: "POST", Path: "/notifications/projects/mute"}
	}
	f.muted[projectID] = muted
	return nil
}

// ListCalls returns how many times ListNotifications ran.
func (f *FakeSource) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// UnreadCalls returns how many times UnreadCount ran.
func (f *FakeSource) UnreadCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unreadCalls
}

// ReadCalls returns the ids passed to MarkRead, in call order.
func (f *FakeSource) ReadCalls() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.readCalls...)
}

// UnreadMarkCalls returns the ids passed to MarkUnread, in call order.
func (f *FakeSource) UnreadMarkCalls() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.unreadMarks...)
}

// Muted reports the server-side mute state of a project.
func (f *FakeSource) Muted(projectID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muted[projectID]
}
