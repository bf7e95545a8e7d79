package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/store"
	"github.com/hariomahlawat/ProjectManagement-sub006/tests/testutil"
)

func sample(t *testing.T) []model.Notification {
	t.Helper()

	norm := model.Normalizer{DefaultRoute: "/notifications"}
	list := norm.NormalizeAndDedupe([]model.RawNotification{
		{"id": 1, "title": "old", "createdUtc": "2024-01-01T00:00:00Z"},
		{"id": 2, "title": "read", "createdUtc": "2024-01-02T00:00:00Z", "readUtc": "2024-01-03T00:00:00Z", "projectId": 4},
		{"id": 3, "title": "muted", "createdUtc": "2024-01-04T00:00:00Z", "projectId": 9, "isProjectMuted": true},
	})
	require.Len(t, list, 3)
	return list
}

func TestSQLiteStore_Migrations(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestCache(t)
	v, err := s.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestSQLiteStore_EmptySnapshot(t *testing.T) {
	t.Parallel()

	s := testutil.NewTestCache(t)
	snap, err := s.LoadSnapshot(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, snap.Empty())
	assert.Zero(t, snap.Unread)
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := testutil.NewTestCache(t)
	want := sample(t)

	require.NoError(t, s.SaveSnapshot(ctx, want, 5))

	snap, err := s.LoadSnapshot(ctx, 0)
	require.NoError(t, err)
	assert.False(t, snap.Empty())
	assert.Equal(t, 5, snap.Unread)
	assert.WithinDuration(t, time.Now(), snap.SavedAt, time.Minute)
	require.Len(t, snap.Notifications, 3)

	for i, got := range snap.Notifications {
		w := want[i]
		assert.Equal(t, w.ID, got.ID)
		assert.Equal(t, w.Title, got.Title)
		assert.True(t, w.CreatedAt.Equal(got.CreatedAt))
		assert.Equal(t, w.IsRead, got.IsRead)
		assert.Equal(t, w.IsProjectMuted, got.IsProjectMuted)
		assert.Equal(t, w.ProjectID, got.ProjectID)
		assert.Equal(t, w.ReadUTC, got.ReadUTC)
	}

	limited, err := s.LoadSnapshot(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited.Notifications, 2)
	assert.Equal(t, int64(3), limited.Notifications[0].ID)
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := testutil.NewTestCache(t)
	list := sample(t)

	require.NoError(t, s.SaveSnapshot(ctx, list, 3))
	require.NoError(t, s.SaveSnapshot(ctx, list[:1], 1))

	snap, err := s.LoadSnapshot(ctx, 0)
	require.NoError(t, err)
	require.Len(t, snap.Notifications, 1)
	assert.Equal(t, list[0].ID, snap.Notifications[0].ID)
	assert.Equal(t, 1, snap.Unread)

	require.NoError(t, s.Clear(ctx))
	snap, err = s.LoadSnapshot(ctx, 0)
	require.NoError(t, err)
	assert.True(t, snap.Empty())
}

func TestSnapshot_RawsSeedNormalizer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := testutil.NewTestCache(t)
	require.NoError(t, s.SaveSnapshot(ctx, sample(t), 2))

	snap, err := s.LoadSnapshot(ctx, 0)
	require.NoError(t, err)

	norm := model.Normalizer{}
	again := norm.NormalizeAndDedupe(snap.Raws())
	require.Len(t, again, 3)
	assert.Equal(t, "muted", again[0].Title)
	assert.True(t, again[0].IsProjectMuted)
	assert.True(t, again[1].IsRead)
}

func TestSQLiteStore_ReopenFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveSnapshot(ctx, sample(t), 4))
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	snap, err := s.LoadSnapshot(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, snap.Notifications, 3)
	assert.Equal(t, 4, snap.Unread)
}

func TestSnapshotWriter_PersistsLatest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := testutil.NewTestCache(t)
	w := store.NewSnapshotWriter(cache, testutil.NewTestLogger())

	list := sample(t)
	w.Update(list[:1], 1)
	w.Update(list[:2], 2)
	w.Update(list, 3)
	w.Close()
	w.Close()

	snap, err := cache.LoadSnapshot(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, snap.Notifications, 3)
	assert.Equal(t, 3, snap.Unread)

	w.Update(nil, 0)
	snap, err = cache.LoadSnapshot(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, snap.Notifications, 3)
}
