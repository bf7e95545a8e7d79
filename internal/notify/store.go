package notify

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/source"
	appsync "github.com/hariomahlawat/ProjectManagement-sub006/internal/sync"
)

// maxConcurrentMutations bounds the per-id requests in flight for one
// mark-read or mark-unread batch.
const maxConcurrentMutations = 8

// Options configures a Store.
type Options struct {
	// Source is the server API. Required.
	Source source.Source

	// Dialer opens the real-time channel. Nil means polling only.
	Dialer ChannelDialer

	// Normalizer converts raw payloads. Its DefaultRoute should be the
	// notification-center URL.
	Normalizer model.Normalizer

	// FetchLimit is the list size requested from the server. Defaults to
	// model.DefaultFetchLimit.
	FetchLimit int

	// StoreLimit caps the number of records held. Defaults to FetchLimit
	// floored at model.MinStoreLimit.
	StoreLimit int

	// PollInterval is the fallback polling period.
	PollInterval time.Duration

	// Authenticated gates Start.
	Authenticated bool

	// InitialUnread and InitialNotifications seed the store before any
	// transport has run.
	InitialUnread        int
	InitialNotifications []model.RawNotification

	// OnTransportChange is called whenever the delivery mode changes.
	OnTransportChange func(TransportState)

	Logger *slog.Logger
	Now    func() time.Time
}

// entry is a stored record tagged with the mutation generation that last
// touched it.
type entry struct {
	n   model.Notification
	gen uint64
}

// Store is the single source of truth for notifications and the unread
// counter. Views read it through Register and mutate it only through its
// methods.
type Store struct {
	src        source.Source
	dialer     ChannelDialer
	norm       model.Normalizer
	fetchLimit int
	storeLimit int
	authed     bool
	logger     *slog.Logger
	now        func() time.Time
	onTrans    func(TransportState)

	mu        sync.Mutex
	items     map[int64]entry
	unread    int
	gen       uint64
	listeners map[uint64]Listener
	nextLID   uint64
	channel   Channel
	transport TransportState
	started   bool
	stopped   bool

	// publishMu serializes listener delivery so no listener sees an older
	// snapshot after a newer one.
	publishMu sync.Mutex

	refreshGroup singleflight.Group
	poller       *appsync.Poller
}

// New creates a Store seeded with the initial payload. No network
// activity happens until Start or an explicit call.
func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	fetchLimit := opts.FetchLimit
	if fetchLimit <= 0 {
		fetchLimit = model.DefaultFetchLimit
	}
	storeLimit := opts.StoreLimit
	if storeLimit <= 0 {
		storeLimit = max(fetchLimit, model.MinStoreLimit)
	}

	norm := opts.Normalizer
	if norm.Now == nil {
		norm.Now = now
	}

	s := &Store{
		src:        opts.Source,
		dialer:     opts.Dialer,
		norm:       norm,
		fetchLimit: fetchLimit,
		storeLimit: storeLimit,
		authed:     opts.Authenticated,
		logger:     logger.With(slog.String("component", "notify")),
		now:        now,
		onTrans:    opts.OnTransportChange,
		items:      make(map[int64]entry),
		unread:     max(opts.InitialUnread, 0),
		listeners:  make(map[uint64]Listener),
	}
	s.poller = appsync.New(func(ctx context.Context) {
		_ = s.Refresh(ctx)
	}, opts.PollInterval, logger)

	if len(opts.InitialNotifications) > 0 {
		s.replace(opts.InitialNotifications, s.gen)
	}

	return s
}

// FetchLimit returns the list size requested from the server.
func (s *Store) FetchLimit() int { return s.fetchLimit }

// StoreLimit returns the store capacity.
func (s *Store) StoreLimit() int { return s.storeLimit }

// Register adds a listener and immediately delivers the current snapshot
// to it. The returned function removes the listener.
func (s *Store) Register(l Listener) func() {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	id := s.nextLID
	s.nextLID++
	s.listeners[id] = l
	items, unread := s.snapshotLocked()
	s.mu.Unlock()

	l.Update(items, unread)

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Snapshot returns a copy of all records, newest first, and the unread count.
func (s *Store) Snapshot() ([]model.Notification, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// UnreadCount returns the current unread counter.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Len returns the number of records held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// GetItem looks up a record by id.
func (s *Store) GetItem(id int64) (model.Notification, bool) {
	if id <= 0 {
		return model.Notification{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return model.Notification{}, false
	}
	return e.n.Clone(), true
}

// Refresh reloads the list from the server, replaces the store contents,
// then fetches the unread count. Concurrent calls share one request.
// Failures are logged and returned; the last good snapshot stays.
func (s *Store) Refresh(ctx context.Context) error {
	_, err, _ := s.refreshGroup.Do("refresh", func() (any, error) {
		return nil, s.refresh(ctx)
	})
	return err
}

func (s *Store) refresh(ctx context.Context) error {
	s.mu.Lock()
	since := s.gen
	s.mu.Unlock()

	raws, err := s.src.ListNotifications(ctx, s.fetchLimit)
	if err != nil {
		s.logger.Warn("unable to refresh notifications", slog.Any("error", err))
		return fmt.Errorf("refreshing notifications: %w", err)
	}

	s.replace(raws, since)
	s.publish()

	if err := s.fetchUnread(ctx); err != nil {
		return err
	}
	s.publish()
	return nil
}

// ReplaceStore authoritatively replaces the contents with raws.
func (s *Store) ReplaceStore(raws []model.RawNotification) {
	s.mu.Lock()
	since := s.gen
	s.mu.Unlock()

	s.replace(raws, since)
	s.publish()
}

// replace swaps in a new record set. Records changed after generation
// since (pushed or mutated while the request was in flight) survive, and
// for ids on both sides the later CreatedAt wins.
func (s *Store) replace(raws []model.RawNotification, since uint64) {
	incoming := s.norm.NormalizeAndDedupe(raws)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	next := make(map[int64]entry, len(incoming))

	for _, n := range incoming {
		cur, ok := s.items[n.ID]
		switch {
		case !ok, n.CreatedAt.After(cur.n.CreatedAt):
			next[n.ID] = entry{n: n, gen: s.gen}
		case cur.n.CreatedAt.After(n.CreatedAt), cur.gen > since:
			next[n.ID] = cur
		default:
			next[n.ID] = entry{n: n, gen: s.gen}
		}
	}

	for id, cur := range s.items {
		if _, ok := next[id]; !ok && cur.gen > since {
			next[id] = cur
		}
	}

	s.items = next
	s.evictLocked()
}

// MergeStore upserts raws: newer-or-equal CreatedAt wins per id, then
// capacity is re-applied. Merging the same payload twice is a no-op.
func (s *Store) MergeStore(raws []model.RawNotification) {
	incoming := s.norm.NormalizeAndDedupe(raws)
	if len(incoming) == 0 {
		return
	}

	s.mu.Lock()
	s.gen++
	for _, n := range incoming {
		if cur, ok := s.items[n.ID]; ok && cur.n.CreatedAt.After(n.CreatedAt) {
			continue
		}
		s.items[n.ID] = entry{n: n, gen: s.gen}
	}
	s.evictLocked()
	s.mu.Unlock()

	s.publish()
}

// SetUnreadCount sets the counter directly, as pushed by the server.
func (s *Store) SetUnreadCount(count int) {
	s.mu.Lock()
	s.unread = max(count, 0)
	s.mu.Unlock()

	s.publish()
}

// MarkRead marks ids read on the server and locally. See setRead.
func (s *Store) MarkRead(ctx context.Context, ids []int64) (int, error) {
	return s.setRead(ctx, ids, true)
}

// MarkUnread clears the read stamp of ids on the server and locally.
func (s *Store) MarkUnread(ctx context.Context, ids []int64) (int, error) {
	return s.setRead(ctx, ids, false)
}

// MarkAllRead marks every locally unread record read.
func (s *Store) MarkAllRead(ctx context.Context) (int, error) {
	s.mu.Lock()
	var ids []int64
	for id, e := range s.items {
		if !e.n.IsRead {
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()

	if len(ids) == 0 {
		return 0, nil
	}
	slices.Sort(ids)
	return s.MarkRead(ctx, ids)
}

// setRead issues one request per unique id concurrently and waits for all
// of them. A 404 counts as success. Succeeded ids are updated locally, the
// unread count is re-fetched and listeners are notified. It returns the
// number of ids processed and a *BatchError if any request failed.
func (s *Store) setRead(ctx context.Context, ids []int64, read bool) (int, error) {
	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return 0, nil
	}

	op := "mark unread"
	call := s.src.MarkUnread
	if read {
		op = "mark read"
		call = s.src.MarkRead
	}

	results := make([]error, len(unique))
	var g errgroup.Group
	g.SetLimit(maxConcurrentMutations)
	for i, id := range unique {
		g.Go(func() error {
			if err := call(ctx, id); err != nil && !source.IsNotFound(err) {
				results[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	var succeeded []int64
	failed := make(map[int64]error)
	for i, id := range unique {
		if results[i] != nil {
			failed[id] = results[i]
			continue
		}
		succeeded = append(succeeded, id)
	}

	if len(succeeded) > 0 {
		at := s.now()
		s.mu.Lock()
		s.gen++
		for _, id := range succeeded {
			e, ok := s.items[id]
			if !ok {
				continue
			}
			if read {
				e.n.MarkRead(at)
			} else {
				e.n.MarkUnread()
			}
			e.gen = s.gen
			s.items[id] = e
		}
		s.mu.Unlock()
	}

	// The counter is authoritative server-side; a failed fetch keeps the
	// previous value and is already logged.
	_ = s.fetchUnread(ctx)
	s.publish()

	if len(failed) > 0 {
		berr := &BatchError{Op: op, Succeeded: succeeded, Failed: failed}
		s.logger.Warn("notification batch partially failed",
			slog.String("op", op),
			slog.Int("succeeded", len(succeeded)),
			slog.Int("failed", len(failed)),
		)
		return len(succeeded), berr
	}
	return len(succeeded), nil
}

// MuteProject mutes or unmutes a project server-side, then flips
// IsProjectMuted on every local record of that project. A 404 counts as
// success.
func (s *Store) MuteProject(ctx context.Context, projectID int64, muted bool) error {
	if projectID <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidProject, projectID)
	}

	err := s.src.SetProjectMuted(ctx, projectID, muted)
	if err != nil && !source.IsNotFound(err) {
		return fmt.Errorf("updating mute for project %d: %w", projectID, err)
	}

	s.mu.Lock()
	s.gen++
	for id, e := range s.items {
		if e.n.InProject(projectID) {
			e.n.IsProjectMuted = muted
			e.gen = s.gen
			s.items[id] = e
		}
	}
	s.mu.Unlock()

	s.publish()
	return nil
}

// fetchUnread updates the counter from the server without notifying.
func (s *Store) fetchUnread(ctx context.Context) error {
	count, err := s.src.UnreadCount(ctx)
	if err != nil {
		s.logger.Warn("unable to fetch unread count", slog.Any("error", err))
		return fmt.Errorf("fetching unread count: %w", err)
	}

	s.mu.Lock()
	s.unread = max(count, 0)
	s.mu.Unlock()
	return nil
}

// publish delivers a fresh snapshot to every listener.
func (s *Store) publish() {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	items, unread := s.snapshotLocked()
	ls := make([]Listener, 0, len(s.listeners))
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		ls = append(ls, s.listeners[id])
	}
	s.mu.Unlock()

	for i, l := range ls {
		if i == 0 {
			l.Update(items, unread)
			continue
		}
		l.Update(cloneAll(items), unread)
	}
}

// snapshotLocked returns a sorted deep copy. Caller holds s.mu.
func (s *Store) snapshotLocked() ([]model.Notification, int) {
	out := make([]model.Notification, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e.n.Clone())
	}
	model.SortNewestFirst(out)
	return out, s.unread
}

// evictLocked drops the oldest records beyond capacity. Caller holds s.mu.
func (s *Store) evictLocked() {
	if len(s.items) <= s.storeLimit {
		return
	}

	all := make([]model.Notification, 0, len(s.items))
	for _, e := range s.items {
		all = append(all, e.n)
	}
	model.SortNewestFirst(all)

	for _, n := range all[s.storeLimit:] {
		delete(s.items, n.ID)
	}
}

func cloneAll(list []model.Notification) []model.Notification {
	out := make([]model.Notification, len(list))
	for i, n := range list {
		out[i] = n.Clone()
	}
	return out
}

// uniqueIDs drops non-positive and duplicate ids, keeping first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
