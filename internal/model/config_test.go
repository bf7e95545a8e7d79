package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Limits(t *testing.T) {
	t.Parallel()

	cfg := &AppConfig{}
	assert.Equal(t, DefaultFetchLimit, cfg.FetchLimit())
	assert.Equal(t, DefaultFetchLimit, cfg.StoreLimit())

	cfg.Views = ViewsConfig{BellLimit: 10, CenterLimit: 50}
	assert.Equal(t, 50, cfg.FetchLimit())
	assert.Equal(t, MinStoreLimit, cfg.StoreLimit())

	cfg.Views.CenterLimit = 300
	assert.Equal(t, 300, cfg.FetchLimit())
	assert.Equal(t, 300, cfg.StoreLimit())
}

func TestAppConfig_URLs(t *testing.T) {
	t.Parallel()

	cfg := &AppConfig{}
	assert.Empty(t, cfg.UnreadURL())
	assert.Equal(t, "/notifications", cfg.CenterURL())
	assert.False(t, cfg.IsConfigured())

	cfg.Server.APIBase = "https://pm.example.com/api/notifications/"
	assert.Equal(t, "https://pm.example.com/api/notifications/unread-count", cfg.UnreadURL())
	assert.True(t, cfg.IsConfigured())

	cfg.Server.UnreadURLOverride = "https://pm.example.com/api/unread"
	cfg.Server.CenterURLOverride = "https://pm.example.com/notifications"
	assert.Equal(t, "https://pm.example.com/api/unread", cfg.UnreadURL())
	assert.Equal(t, "https://pm.example.com/notifications", cfg.CenterURL())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.True(t, cfg.Server.Authenticated)
	assert.Equal(t, DefaultPollIntervalSec, cfg.PollIntervalSec)
	assert.Equal(t, DefaultBellLimit, cfg.Views.BellLimit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Cache.Enabled)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultAppConfig()
	cfg.Server.APIBase = "https://pm.example.com/api/notifications"
	cfg.Server.HubURL = "https://pm.example.com/hubs/notifications"
	cfg.Views.CenterLimit = 75
	cfg.PollIntervalSec = 30
	cfg.Initial.Unread = 4

	require.NoError(t, SaveConfig(path, cfg))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server.APIBase, got.Server.APIBase)
	assert.Equal(t, cfg.Server.HubURL, got.Server.HubURL)
	assert.Equal(t, 75, got.Views.CenterLimit)
	assert.Equal(t, 30, got.PollIntervalSec)
	assert.Zero(t, got.Initial.Unread)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("NOTIFY_CENTER_SERVER_API_BASE", "https://env.example.com/api/notifications")
	t.Setenv("NOTIFY_CENTER_POLL_INTERVAL_SEC", "15")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/api/notifications", cfg.Server.APIBase)
	assert.Equal(t, 15, cfg.PollIntervalSec)
}
