package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultFetchLimit is used when no view asks for a specific limit.
	DefaultFetchLimit = 200

	// MinStoreLimit is the floor for store capacity.
	MinStoreLimit = 100

	// DefaultPollIntervalSec is the polling period when the real-time
	// channel is unavailable.
	DefaultPollIntervalSec = 60

	// DefaultBellLimit is the number of rows the bell view renders.
	DefaultBellLimit = 10
)

// ServerConfig locates the project-management server endpoints.
type ServerConfig struct {
	// APIBase is the notifications REST root, e.g.
	// https://pm.example.com/api/notifications.
	APIBase string `mapstructure:"api_base" yaml:"api_base"`

	// UnreadURL returns {"count": n}. Defaults to {APIBase}/unread-count.
	UnreadURLOverride string `mapstructure:"unread_url" yaml:"unread_url"`

	// HubURL is the real-time channel endpoint. Empty disables the
	// channel and the client polls.
	HubURL string `mapstructure:"hub_url" yaml:"hub_url"`

	// CenterURL is the notification-center page, used as the fallback
	// route for notifications without one.
	CenterURLOverride string `mapstructure:"center_url" yaml:"center_url"`

	// Authenticated gates Store.Start. An anonymous session never fetches.
	Authenticated bool `mapstructure:"authenticated" yaml:"authenticated"`
}

// ViewsConfig holds the per-view fetch limits. The largest one decides the
// shared fetch limit and store capacity.
type ViewsConfig struct {
	BellLimit   int `mapstructure:"bell_limit" yaml:"bell_limit"`
	CenterLimit int `mapstructure:"center_limit" yaml:"center_limit"`
}

// InitialConfig is the boot payload: what a server-rendered page would
// embed before any transport has run.
type InitialConfig struct {
	Unread        int               `mapstructure:"unread" yaml:"unread"`
	Notifications []RawNotification `mapstructure:"notifications" yaml:"notifications"`
}

// CacheConfig controls the local snapshot cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server          ServerConfig  `mapstructure:"server" yaml:"server"`
	Views           ViewsConfig   `mapstructure:"views" yaml:"views"`
	PollIntervalSec int           `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
	Initial         InitialConfig `mapstructure:"initial" yaml:"initial"`
	Cache           CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Log             LogConfig     `mapstructure:"log" yaml:"log"`
	Display         DisplayConfig `mapstructure:"display" yaml:"display"`
}

// UnreadURL returns the unread-count endpoint.
func (c *AppConfig) UnreadURL() string {
	if c.Server.UnreadURLOverride != "" {
		return c.Server.UnreadURLOverride
	}
	if c.Server.APIBase == "" {
		return ""
	}
	return strings.TrimRight(c.Server.APIBase, "/") + "/unread-count"
}

// CenterURL returns the notification-center URL used as the navigation
// fallback.
func (c *AppConfig) CenterURL() string {
	if c.Server.CenterURLOverride != "" {
		return c.Server.CenterURLOverride
	}
	return "/notifications"
}

// FetchLimit is the largest limit requested by any view, or
// DefaultFetchLimit when none is configured.
func (c *AppConfig) FetchLimit() int {
	limit := max(c.Views.BellLimit, c.Views.CenterLimit)
	if limit <= 0 {
		return DefaultFetchLimit
	}
	return limit
}

// StoreLimit is the store capacity: the fetch limit, floored at
// MinStoreLimit.
func (c *AppConfig) StoreLimit() int {
	return max(c.FetchLimit(), MinStoreLimit)
}

// IsConfigured reports whether enough server settings exist to run.
func (c *AppConfig) IsConfigured() bool {
	return c.Server.APIBase != ""
}

// DefaultConfigDir returns ~/.config/notifycenter.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "notifycenter")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/notifycenter/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Authenticated: true,
		},
		Views: ViewsConfig{
			BellLimit:   DefaultBellLimit,
			CenterLimit: DefaultFetchLimit,
		},
		PollIntervalSec: DefaultPollIntervalSec,
		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(DefaultConfigDir(), "cache.db"),
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			File:       filepath.Join(DefaultConfigDir(), "notifycenter.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// newViper returns a viper instance with defaults and NOTIFY_CENTER_*
// environment overrides registered.
func newViper(path string) *viper.Viper {
	d := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("NOTIFY_CENTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values and so
	// AutomaticEnv can see every key.
	v.SetDefault("server.api_base", "")
	v.SetDefault("server.unread_url", "")
	v.SetDefault("server.hub_url", "")
	v.SetDefault("server.center_url", "")
	v.SetDefault("server.authenticated", d.Server.Authenticated)
	v.SetDefault("views.bell_limit", d.Views.BellLimit)
	v.SetDefault("views.center_limit", d.Views.CenterLimit)
	v.SetDefault("poll_interval_sec", d.PollIntervalSec)
	v.SetDefault("initial.unread", 0)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("display.theme", d.Display.Theme)

	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults plus environment overrides are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.PollIntervalSec <= 0 {
		cfg.PollIntervalSec = DefaultPollIntervalSec
	}
	if cfg.Views.BellLimit <= 0 {
		cfg.Views.BellLimit = DefaultBellLimit
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed. The initial payload is not
// persisted; it only describes a single boot.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("views", cfg.Views)
	v.Set("poll_interval_sec", cfg.PollIntervalSec)
	v.Set("cache", cfg.Cache)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
