package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
)

const saveTimeout = 5 * time.Second

// SnapshotWriter persists store snapshots in the background. It satisfies
// notify.Listener. Only the latest pending snapshot is written; bursts of
// updates collapse into one write.
type SnapshotWriter struct {
	cache  Cache
	logger *slog.Logger

	mu      sync.Mutex
	pending *Snapshot
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// NewSnapshotWriter starts a writer goroutine for cache.
func NewSnapshotWriter(cache Cache, logger *slog.Logger) *SnapshotWriter {
	if logger == nil {
		logger = slog.Default()
	}
	w := &SnapshotWriter{
		cache:  cache,
		logger: logger.With(slog.String("component", "cache")),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w
}

// Update queues a snapshot for writing.
func (w *SnapshotWriter) Update(notifications []model.Notification, unread int) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = &Snapshot{Notifications: notifications, Unread: unread}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Close flushes the pending snapshot and stops the writer.
func (w *SnapshotWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.mu.Unlock()

	close(w.wake)
	<-w.done
}

func (w *SnapshotWriter) loop() {
	defer close(w.done)

	for range w.wake {
		w.flush()
	}
	w.flush()
}

func (w *SnapshotWriter) flush() {
	w.mu.Lock()
	snap := w.pending
	w.pending = nil
	w.mu.Unlock()

	if snap == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := w.cache.SaveSnapshot(ctx, snap.Notifications, snap.Unread); err != nil {
		w.logger.Warn("saving notification snapshot", slog.Any("error", err))
		return
	}
	w.logger.Debug("notification snapshot saved", slog.Int("count", len(snap.Notifications)))
}
