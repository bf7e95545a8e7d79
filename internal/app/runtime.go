package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/notify"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/realtime"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/source"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/source/web"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/store"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/ui"
)

const cacheLoadTimeout = 5 * time.Second

// Runtime owns the notification store and everything wired around it:
// the server source, the real-time dialer and the snapshot cache.
type Runtime struct {
	Config    *model.AppConfig
	Store     *notify.Store
	Transport *TransportFeed

	logger *slog.Logger
	cache  store.Cache
	writer *store.SnapshotWriter

	mu     sync.Mutex
	unregs []func()
	subs   []*ui.Subscription
	closed bool
}

// BuildOptions overrides pieces of the default wiring.
type BuildOptions struct {
	// Source replaces the REST adapter built from the config.
	Source source.Source

	// Dialer replaces the real-time dialer built from the config. Only
	// consulted when Source is set.
	Dialer notify.ChannelDialer

	// Cache replaces the SQLite cache opened from the config.
	Cache store.Cache
}

// Build wires a Runtime from cfg. The store is not started.
func Build(ctx context.Context, cfg *model.AppConfig, token string, logger *slog.Logger, opts BuildOptions) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}

	src := opts.Source
	dialer := opts.Dialer
	if src == nil {
		if cfg.Server.APIBase == "" {
			return nil, fmt.Errorf("server.api_base is not configured")
		}
		src = web.NewAdapter(web.NewClient(token), cfg.Server.APIBase, cfg.UnreadURL())
		if cfg.Server.HubURL != "" {
			dialer = notify.RealtimeDialer(realtime.NewDialer(cfg.Server.HubURL, token, logger))
		}
	}

	rt := &Runtime{
		Config:    cfg,
		Transport: NewTransportFeed(),
		logger:    logger,
		cache:     opts.Cache,
	}
	if rt.cache == nil && cfg.Cache.Enabled && cfg.Cache.Path != "" {
		rt.cache = openCache(cfg.Cache.Path, logger)
	}

	raws, unread := cfg.Initial.Notifications, cfg.Initial.Unread
	if len(raws) == 0 && rt.cache != nil {
		raws, unread = rt.loadCached(ctx, cfg.StoreLimit(), unread)
	}

	rt.Store = notify.New(notify.Options{
		Source:               src,
		Dialer:               dialer,
		Normalizer:           model.Normalizer{DefaultRoute: cfg.CenterURL()},
		FetchLimit:           cfg.FetchLimit(),
		StoreLimit:           cfg.StoreLimit(),
		PollInterval:         time.Duration(cfg.PollIntervalSec) * time.Second,
		Authenticated:        cfg.Server.Authenticated,
		InitialUnread:        unread,
		InitialNotifications: raws,
		OnTransportChange:    rt.Transport.Publish,
		Logger:               logger,
	})

	if rt.cache != nil {
		rt.writer = store.NewSnapshotWriter(rt.cache, logger)
		rt.unregs = append(rt.unregs, rt.Store.Register(rt.writer))
	}

	return rt, nil
}

// openCache opens the SQLite cache. A cache that cannot be opened is
// logged and skipped; the client works without it.
func openCache(path string, logger *slog.Logger) store.Cache {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			logger.Warn("unable to create cache directory", slog.String("path", path), slog.Any("error", err))
			return nil
		}
	}
	c, err := store.NewSQLiteStore(path)
	if err != nil {
		logger.Warn("unable to open notification cache", slog.String("path", path), slog.Any("error", err))
		return nil
	}
	return c
}

// loadCached returns the cached snapshot as a boot payload, falling back
// to unread when nothing usable is cached.
func (r *Runtime) loadCached(ctx context.Context, limit, unread int) ([]model.RawNotification, int) {
	ctx, cancel := context.WithTimeout(ctx, cacheLoadTimeout)
	defer cancel()

	snap, err := r.cache.LoadSnapshot(ctx, limit)
	if err != nil {
		r.logger.Warn("unable to load cached notifications", slog.Any("error", err))
		return nil, unread
	}
	if snap.Empty() {
		return nil, unread
	}
	r.logger.Debug("seeding store from cache",
		slog.Int("count", len(snap.Notifications)),
		slog.Time("saved_at", snap.SavedAt),
	)
	return snap.Raws(), snap.Unread
}

// Subscribe registers a new view subscription with the store.
func (r *Runtime) Subscribe() *ui.Subscription {
	sub := ui.NewSubscription()
	unreg := r.Store.Register(sub)

	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.unregs = append(r.unregs, unreg)
	r.mu.Unlock()
	return sub
}

// Close stops the store, releases the views and flushes the cache.
func (r *Runtime) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	unregs, subs := r.unregs, r.subs
	r.mu.Unlock()

	r.Store.Stop()
	for _, u := range unregs {
		u()
	}
	for _, s := range subs {
		s.Close()
	}
	r.Transport.Close()

	if r.writer != nil {
		r.writer.Close()
	}
	if r.cache != nil {
		if err := r.cache.Close(); err != nil {
			r.logger.Warn("closing notification cache", slog.Any("error", err))
		}
	}
}
