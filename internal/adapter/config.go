package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// PathKind identifies how a network path reaches the upstream
type PathKind string

const (
	PathKindDirect   PathKind = "direct"   // Request the upstream URL as is
	PathKindPrefix   PathKind = "prefix"   // Proxy URL followed by the escaped target
	PathKindTemplate PathKind = "template" // Proxy URL with {url} replaced by the escaped target
)

// Config holds all application configuration
type Config struct {
	Roster        []string            `mapstructure:"roster"`
	Upstream      UpstreamConfig      `mapstructure:"upstream"`
	Refresh       RefreshConfig       `mapstructure:"refresh"`
	Store         StoreConfig         `mapstructure:"store"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	UI            UIConfig            `mapstructure:"ui"`
	Player        PlayerConfig        `mapstructure:"player"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// UpstreamConfig describes the Kick endpoints and the ordered network paths
type UpstreamConfig struct {
	ChannelURL     string        `mapstructure:"channel_url"` // {id} is replaced by the username
	VideosURL      string        `mapstructure:"videos_url"`  // {id} is replaced by the username
	UserAgent      string        `mapstructure:"user_agent"`
	PathTimeout    time.Duration `mapstructure:"path_timeout"`
	HistoryTimeout time.Duration `mapstructure:"history_timeout"`
	Paths          []PathConfig  `mapstructure:"paths"`
}

// PathConfig is one indirection strategy, tried in list order
type PathConfig struct {
	Name  string   `mapstructure:"name"`
	Kind  PathKind `mapstructure:"kind"`
	Proxy string   `mapstructure:"proxy"`
}

// RefreshConfig controls batching, backpressure and the periodic refresh
type RefreshConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	BatchSize     int           `mapstructure:"batch_size"`
	BatchDelay    time.Duration `mapstructure:"batch_delay"` // After a clean group
	ErrorDelay    time.Duration `mapstructure:"error_delay"` // After a group with at least one failure
	Attempts      int           `mapstructure:"attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	FetchDeadline time.Duration `mapstructure:"fetch_deadline"` // Upper bound for one streamer, all paths included
}

// StoreConfig holds local persistence configuration
type StoreConfig struct {
	Path string `mapstructure:"path"` // Empty = memory only
}

// RedisConfig holds the optional shared cache configuration
type RedisConfig struct {
	URL       string        `mapstructure:"url"` // Empty = disabled
	StatusTTL time.Duration `mapstructure:"status_ttl"`
}

// NotificationsConfig holds go-live alert configuration
type NotificationsConfig struct {
	Permission string `mapstructure:"permission"` // "granted", "denied" or "prompt"
}

// UIConfig holds UI configuration
type UIConfig struct {
	ShowOffline bool `mapstructure:"show_offline"`
}

// PlayerConfig selects the program live streams are opened with
type PlayerConfig struct {
	Command string   `mapstructure:"command"` // Empty = auto-detect, then the browser
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultRoster is the curated list shipped with the application
var DefaultRoster = []string{
	"https://kick.com/5ald",
	"https://kick.com/irellax",
	"https://kick.com/7arith",
	"https://kick.com/S0VE",
	"https://kick.com/idew",
	"https://kick.com/id7d7",
	"https://kick.com/1saadx",
	"https://kick.com/fttir",
	"https://kick.com/Dahrooj",
	"https://kick.com/rashed7cr",
	"https://kick.com/Maramjk",
	"https://kick.com/mezaar",
	"https://kick.com/11hussin",
	"https://kick.com/d7dn",
	"https://kick.com/only3bed",
	"https://kick.com/iclassie",
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Roster: append([]string(nil), DefaultRoster...),
		Upstream: UpstreamConfig{
			ChannelURL:     "https://kick.com/api/v1/channels/{id}",
			VideosURL:      "https://kick.com/api/v2/channels/{id}/videos",
			UserAgent:      "Kickboard/1.0",
			PathTimeout:    5 * time.Second,
			HistoryTimeout: 3 * time.Second,
			Paths: []PathConfig{
				{Name: "corsproxy", Kind: PathKindPrefix, Proxy: "https://corsproxy.io/?"},
				{Name: "allorigins", Kind: PathKindTemplate, Proxy: "https://api.allorigins.win/raw?url={url}"},
				{Name: "direct", Kind: PathKindDirect},
			},
		},
		Refresh: RefreshConfig{
			Interval:      60 * time.Second,
			BatchSize:     2,
			BatchDelay:    500 * time.Millisecond,
			ErrorDelay:    3 * time.Second,
			Attempts:      1,
			RetryDelay:    time.Second,
			FetchDeadline: 45 * time.Second,
		},
		Store: StoreConfig{
			Path: filepath.Join(defaultDataPath(), "kickboard.db"),
		},
		Redis: RedisConfig{
			StatusTTL: 30 * time.Second,
		},
		Notifications: NotificationsConfig{
			Permission: "prompt",
		},
		UI: UIConfig{
			ShowOffline: true,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "kickboard.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "kickboard")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "kickboard")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "kickboard")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "kickboard")
	}
}

// LoadConfig loads configuration from file and environment.
// An explicit path overrides the default search locations.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides (KICKBOARD_REFRESH_INTERVAL=30s)
	v.SetEnvPrefix("KICKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	// Lists from the file replace the defaults instead of merging element-wise
	if v.IsSet("roster") {
		cfg.Roster = nil
	}
	if v.IsSet("upstream.paths") {
		cfg.Upstream.Paths = nil
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnvKeys registers scalar keys so AutomaticEnv values reach Unmarshal
// even when the config file does not mention them.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"upstream.channel_url", "upstream.videos_url", "upstream.user_agent",
		"upstream.path_timeout", "upstream.history_timeout",
		"refresh.interval", "refresh.batch_size", "refresh.batch_delay",
		"refresh.error_delay", "refresh.attempts", "refresh.retry_delay",
		"refresh.fetch_deadline",
		"store.path", "redis.url", "redis.status_ttl",
		"notifications.permission", "ui.show_offline", "player.command",
		"logging.file", "logging.level",
	} {
		_ = v.BindEnv(key)
	}
}

// Validate checks value ranges and the timeout ordering the fetch pipeline relies on
func (c *Config) Validate() error {
	if c.Refresh.BatchSize <= 0 {
		return fmt.Errorf("refresh.batch_size must be positive, got %d", c.Refresh.BatchSize)
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh.interval must be positive, got %s", c.Refresh.Interval)
	}
	if c.Refresh.Attempts <= 0 {
		return fmt.Errorf("refresh.attempts must be positive, got %d", c.Refresh.Attempts)
	}
	if c.Refresh.BatchDelay < 0 || c.Refresh.ErrorDelay < 0 || c.Refresh.RetryDelay < 0 {
		return fmt.Errorf("refresh delays must not be negative")
	}
	if c.Upstream.PathTimeout <= 0 {
		return fmt.Errorf("upstream.path_timeout must be positive, got %s", c.Upstream.PathTimeout)
	}
	if c.Upstream.HistoryTimeout <= 0 || c.Upstream.HistoryTimeout > c.Upstream.PathTimeout {
		return fmt.Errorf("upstream.history_timeout must be positive and not exceed path_timeout")
	}
	if c.Upstream.PathTimeout >= c.Refresh.FetchDeadline {
		return fmt.Errorf("upstream.path_timeout (%s) must be shorter than refresh.fetch_deadline (%s)",
			c.Upstream.PathTimeout, c.Refresh.FetchDeadline)
	}
	if !strings.Contains(c.Upstream.ChannelURL, "{id}") {
		return fmt.Errorf("upstream.channel_url must contain {id}")
	}
	if len(c.Upstream.Paths) == 0 {
		return fmt.Errorf("upstream.paths must list at least one path")
	}
	for i, p := range c.Upstream.Paths {
		switch p.Kind {
		case PathKindDirect:
		case PathKindPrefix:
			if p.Proxy == "" {
				return fmt.Errorf("upstream.paths[%d]: prefix path needs a proxy", i)
			}
		case PathKindTemplate:
			if !strings.Contains(p.Proxy, "{url}") {
				return fmt.Errorf("upstream.paths[%d]: template proxy must contain {url}", i)
			}
		default:
			return fmt.Errorf("upstream.paths[%d]: unknown kind %q", i, p.Kind)
		}
	}
	switch strings.ToLower(c.Notifications.Permission) {
	case "granted", "denied", "prompt", "":
	default:
		return fmt.Errorf("notifications.permission must be granted, denied or prompt")
	}
	return nil
}
