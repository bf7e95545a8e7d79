package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/notify"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/store"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/ui"
	"github.com/hariomahlawat/ProjectManagement-sub006/tests/testutil"
)

func testConfig(cachePath string) *model.AppConfig {
	return &model.AppConfig{
		Server: model.ServerConfig{
			APIBase:       "https://pm.example.com/api/notifications",
			Authenticated: true,
		},
		Views:           model.ViewsConfig{BellLimit: 10, CenterLimit: 50},
		PollIntervalSec: 60,
		Cache:           model.CacheConfig{Enabled: cachePath != "", Path: cachePath},
	}
}

func normalized(t *testing.T, raws ...model.RawNotification) []model.Notification {
	t.Helper()
	var out []model.Notification
	for _, r := range raws {
		n, ok := model.Normalizer{}.Normalize(r)
		require.True(t, ok)
		out = append(out, n)
	}
	return out
}

func seedCache(t *testing.T, path string, unread int, raws ...model.RawNotification) {
	t.Helper()
	c, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, c.SaveSnapshot(context.Background(), normalized(t, raws...), unread))
	require.NoError(t, c.Close())
}

func TestBuild_SeedsFromCache(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.db")
	seedCache(t, path, 1,
		testutil.Raw(1, "2024-01-01T00:00:00Z"),
		testutil.Raw(2, "2024-01-02T00:00:00Z", "readUtc", "2024-01-03T00:00:00Z"),
	)

	rt, err := Build(context.Background(), testConfig(path), "", testutil.NewTestLogger(), BuildOptions{
		Source: testutil.NewFakeSource(),
	})
	require.NoError(t, err)
	defer rt.Close()

	items, unread := rt.Store.Snapshot()
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)
	assert.True(t, items[0].IsRead)
	assert.Equal(t, 1, unread)
}

func TestBuild_InitialPayloadBeatsCache(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.db")
	seedCache(t, path, 4, testutil.Raw(1, "2024-01-01T00:00:00Z"))

	cfg := testConfig(path)
	cfg.Initial = model.InitialConfig{
		Unread:        7,
		Notifications: []model.RawNotification{testutil.Raw(9, "2024-02-01T00:00:00Z")},
	}

	rt, err := Build(context.Background(), cfg, "", testutil.NewTestLogger(), BuildOptions{
		Source: testutil.NewFakeSource(),
	})
	require.NoError(t, err)
	defer rt.Close()

	items, unread := rt.Store.Snapshot()
	require.Len(t, items, 1)
	assert.Equal(t, int64(9), items[0].ID)
	assert.Equal(t, 7, unread)
}

func TestBuild_PersistsSnapshotOnClose(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache.db")
	src := testutil.NewFakeSource(
		testutil.Raw(1, "2024-01-01T00:00:00Z"),
		testutil.Raw(2, "2024-01-02T00:00:00Z"),
		testutil.Raw(3, "2024-01-03T00:00:00Z"),
	)

	rt, err := Build(context.Background(), testConfig(path), "", testutil.NewTestLogger(), BuildOptions{Source: src})
	require.NoError(t, err)
	require.NoError(t, rt.Store.Refresh(context.Background()))
	rt.Close()
	rt.Close()

	c, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer c.Close()

	snap, err := c.LoadSnapshot(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, snap.Notifications, 3)
	assert.Equal(t, 3, snap.Unread)
}

func TestBuild_WithoutCache(t *testing.T) {
	t.Parallel()

	rt, err := Build(context.Background(), testConfig(""), "", testutil.NewTestLogger(), BuildOptions{
		Source: testutil.NewFakeSource(testutil.Raw(1, "2024-01-01T00:00:00Z")),
	})
	require.NoError(t, err)
	defer rt.Close()

	assert.Zero(t, rt.Store.Len())
	assert.Equal(t, 50, rt.Store.FetchLimit())
	assert.Equal(t, model.MinStoreLimit, rt.Store.StoreLimit())
}

func TestBuild_RequiresAPIBase(t *testing.T) {
	t.Parallel()

	cfg := testConfig("")
	cfg.Server.APIBase = ""
	_, err := Build(context.Background(), cfg, "", testutil.NewTestLogger(), BuildOptions{})
	assert.ErrorContains(t, err, "api_base")
}

func TestRuntime_Subscribe(t *testing.T) {
	t.Parallel()

	cfg := testConfig("")
	cfg.Initial.Notifications = []model.RawNotification{testutil.Raw(1, "2024-01-01T00:00:00Z")}
	cfg.Initial.Unread = 1

	rt, err := Build(context.Background(), cfg, "", testutil.NewTestLogger(), BuildOptions{
		Source: testutil.NewFakeSource(),
	})
	require.NoError(t, err)

	sub := rt.Subscribe()
	msg, ok := sub.Wait()().(ui.SnapshotMsg)
	require.True(t, ok)
	assert.Same(t, sub, msg.Sub)
	assert.Len(t, msg.Items, 1)
	assert.Equal(t, 1, msg.Unread)

	rt.Close()
	assert.Nil(t, sub.Wait()())
	assert.Equal(t, notify.TransportIdle, rt.Store.Transport())
}

func TestTransportFeed_LatestWins(t *testing.T) {
	t.Parallel()

	f := NewTransportFeed()
	f.Publish(notify.TransportLive)
	f.Publish(notify.TransportReconnecting)
	f.Publish(notify.TransportPolling)

	assert.Equal(t, TransportMsg{State: notify.TransportPolling}, f.Wait()())

	f.Close()
	f.Close()
	assert.Nil(t, f.Wait()())
}
