package store

import (
	"context"
	"time"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
)

// Snapshot is the last store state written to the cache.
type Snapshot struct {
	Notifications []model.Notification
	Unread        int
	SavedAt       time.Time
}

// Raws returns the cached records in payload form for seeding a store.
func (s Snapshot) Raws() []model.RawNotification {
	out := make([]model.RawNotification, 0, len(s.Notifications))
	for _, n := range s.Notifications {
		out = append(out, n.Raw())
	}
	return out
}

// Empty reports whether nothing has been cached yet.
func (s Snapshot) Empty() bool {
	return len(s.Notifications) == 0 && s.SavedAt.IsZero()
}

// Cache persists the notification snapshot between sessions. It is a
// boot-time seed only; the server stays authoritative.
type Cache interface {
	SaveSnapshot(ctx context.Context, notifications []model.Notification, unread int) error
	LoadSnapshot(ctx context.Context, limit int) (Snapshot, error)
	Clear(ctx context.Context) error
	Close() error
}
