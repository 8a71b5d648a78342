package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DBPath string `koanf:"db_path"` // empty means $XDG_DATA_HOME/tides/tides.db

	Log LogConfig `koanf:"log"`

	// Music backend serving stream URLs
	Stream StreamConfig `koanf:"stream"`

	// Engine tuning
	Player PlayerConfig `koanf:"player"`

	// Last.fm scrobbling (enables scrobbling when configured)
	Lastfm LastfmConfig `koanf:"lastfm"`

	Metrics MetricsConfig `koanf:"metrics"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `koanf:"level"` // logrus level name (default: "info")
	File  string `koanf:"file"`  // empty means $XDG_STATE_HOME/tides/tides.log
}

// StreamConfig holds the stream resolution backend configuration.
type StreamConfig struct {
	BaseURL            string `koanf:"base_url"`             // e.g., "http://localhost:8080"
	TimeoutSeconds     int    `koanf:"timeout_seconds"`      // per request (default: 10)
	CacheSize          int    `koanf:"cache_size"`           // cached URLs (default: 500)
	CacheTTLMinutes    int    `koanf:"cache_ttl_minutes"`    // resolved URL lifetime (default: 60)
	NegativeTTLSeconds int    `koanf:"negative_ttl_seconds"` // unavailable result lifetime (default: 30)
}

// PlayerConfig holds engine tuning knobs.
type PlayerConfig struct {
	PollIntervalMS    int     `koanf:"poll_interval_ms"`    // progress sampling (default: 100)
	ProgressThreshold float64 `koanf:"progress_threshold"`  // seconds (default: 0.3)
	DurationThreshold float64 `koanf:"duration_threshold"`  // seconds (default: 0.5)
	SleepCheckSeconds int     `koanf:"sleep_check_seconds"` // sleep timer check (default: 10)
	HistorySize       int     `koanf:"history_size"`        // saved queues (default: 10)
	RecentArtists     int     `koanf:"recent_artists"`      // shuffle artist window (default: 5)
	SaveDelayMS       int     `koanf:"save_delay_ms"`       // persistence debounce (default: 500, negative writes immediately)
}

// LastfmConfig holds Last.fm scrobbling configuration.
type LastfmConfig struct {
	APIKey     string `koanf:"api_key"`
	APISecret  string `koanf:"api_secret"`
	SessionKey string `koanf:"session_key"`
}

// MetricsConfig holds the Prometheus endpoint configuration.
type MetricsConfig struct {
	Listen string `koanf:"listen"` // e.g., ":9090"; empty disables the endpoint
}

func Load() (*Config, error) {
	return load(getConfigPaths())
}

// load reads paths in order, later files overriding earlier ones. Missing
// files are skipped.
func load(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.DBPath = expandPath(cfg.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	// Normalize stream URL (remove trailing slash)
	cfg.Stream.BaseURL = strings.TrimSuffix(cfg.Stream.BaseURL, "/")

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/tides/config.toml
		filepath.Join(xdg.ConfigHome, "tides", "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm API credentials are configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != "" && c.Lastfm.APISecret != ""
}

// CanScrobble returns true if credentials and a session key are configured.
func (c *Config) CanScrobble() bool {
	return c.HasLastfmConfig() && c.Lastfm.SessionKey != ""
}

// LogLevel returns the configured level, or info when unset or invalid.
func (c *Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// LogPath returns the log file location.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	return xdg.StateFile(filepath.Join("tides", "tides.log"))
}

// GetStreamConfig returns the stream configuration with defaults applied.
func (c *Config) GetStreamConfig() StreamConfig {
	cfg := c.Stream

	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 10
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 500
	}
	if cfg.CacheTTLMinutes <= 0 {
		cfg.CacheTTLMinutes = 60
	}
	if cfg.NegativeTTLSeconds <= 0 {
		cfg.NegativeTTLSeconds = 30
	}

	return cfg
}

// Timeout returns the per-request timeout.
func (s StreamConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// CacheTTL returns the lifetime of a resolved URL.
func (s StreamConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLMinutes) * time.Minute
}

// NegativeTTL returns the lifetime of an unavailable result.
func (s StreamConfig) NegativeTTL() time.Duration {
	return time.Duration(s.NegativeTTLSeconds) * time.Second
}

// GetPlayerConfig returns the engine configuration with defaults applied.
func (c *Config) GetPlayerConfig() PlayerConfig {
	cfg := c.Player

	if cfg.PollIntervalMS <= 0 {
		cfg.PollIntervalMS = 100
	}
	if cfg.ProgressThreshold <= 0 {
		cfg.ProgressThreshold = 0.3
	}
	if cfg.DurationThreshold <= 0 {
		cfg.DurationThreshold = 0.5
	}
	if cfg.SleepCheckSeconds <= 0 {
		cfg.SleepCheckSeconds = 10
	}
	if cfg.HistorySize <= 0 || cfg.HistorySize > 100 {
		cfg.HistorySize = 10
	}
	if cfg.RecentArtists <= 0 {
		cfg.RecentArtists = 5
	}
	if cfg.SaveDelayMS < 0 {
		cfg.SaveDelayMS = 0
	} else if cfg.SaveDelayMS == 0 {
		cfg.SaveDelayMS = 500
	}

	return cfg
}

// PollInterval returns the progress sampling period.
func (p PlayerConfig) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalMS) * time.Millisecond
}

// SleepCheckInterval returns the sleep timer check period.
func (p PlayerConfig) SleepCheckInterval() time.Duration {
	return time.Duration(p.SleepCheckSeconds) * time.Second
}

// SaveDelay returns the persistence debounce delay.
func (p PlayerConfig) SaveDelay() time.Duration {
	return time.Duration(p.SaveDelayMS) * time.Millisecond
}
