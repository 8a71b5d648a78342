package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"tilde expands to home", "~/music", filepath.Join(home, "music")},
		{"tilde with nested path", "~/data/tides/tides.db", filepath.Join(home, "data", "tides", "tides.db")},
		{"absolute path unchanged", "/var/lib/tides.db", "/var/lib/tides.db"},
		{"relative path unchanged", "data/tides.db", "data/tides.db"},
		{"empty string unchanged", "", ""},
		{"tilde only", "~", home},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) != 2 {
		t.Fatalf("getConfigPaths() returned %d paths, want 2", len(paths))
	}
	if paths[1] != "config.toml" {
		t.Errorf("last config path = %q, want %q", paths[1], "config.toml")
	}
	if !strings.HasSuffix(paths[0], filepath.Join("tides", "config.toml")) {
		t.Errorf("first config path = %q, want suffix tides/config.toml", paths[0])
	}
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_LaterFilesWin(t *testing.T) {
	dir := t.TempDir()
	user := writeConfig(t, dir, "user.toml", `
db_path = "/data/tides.db"

[stream]
base_url = "http://music.local/"
timeout_seconds = 3

[lastfm]
api_key = "key"
api_secret = "secret"
`)
	local := writeConfig(t, dir, "local.toml", `
[stream]
timeout_seconds = 7

[player]
poll_interval_ms = 250

[metrics]
listen = ":9090"
`)

	cfg, err := load([]string{user, filepath.Join(dir, "missing.toml"), local})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if cfg.DBPath != "/data/tides.db" {
		t.Errorf("DBPath = %q, want /data/tides.db", cfg.DBPath)
	}
	if cfg.Stream.BaseURL != "http://music.local" {
		t.Errorf("Stream.BaseURL = %q, want trailing slash removed", cfg.Stream.BaseURL)
	}
	if cfg.Stream.TimeoutSeconds != 7 {
		t.Errorf("Stream.TimeoutSeconds = %d, want 7", cfg.Stream.TimeoutSeconds)
	}
	if cfg.Player.PollIntervalMS != 250 {
		t.Errorf("Player.PollIntervalMS = %d, want 250", cfg.Player.PollIntervalMS)
	}
	if cfg.Metrics.Listen != ":9090" {
		t.Errorf("Metrics.Listen = %q, want :9090", cfg.Metrics.Listen)
	}
	if !cfg.HasLastfmConfig() {
		t.Error("HasLastfmConfig() = false, want true")
	}
	if cfg.CanScrobble() {
		t.Error("CanScrobble() = true without a session key")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "bad.toml", "db_path = [unterminated")

	if _, err := load([]string{path}); err == nil {
		t.Error("load() with invalid TOML should fail")
	}
}

func TestLoad_NoFiles(t *testing.T) {
	cfg, err := load([]string{filepath.Join(t.TempDir(), "none.toml")})
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.DBPath != "" || cfg.Stream.BaseURL != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestGetStreamConfig_Defaults(t *testing.T) {
	cfg := Config{}
	s := cfg.GetStreamConfig()

	if s.Timeout() != 10*time.Second {
		t.Errorf("Timeout() = %v, want 10s", s.Timeout())
	}
	if s.CacheSize != 500 {
		t.Errorf("CacheSize = %d, want 500", s.CacheSize)
	}
	if s.CacheTTL() != time.Hour {
		t.Errorf("CacheTTL() = %v, want 1h", s.CacheTTL())
	}
	if s.NegativeTTL() != 30*time.Second {
		t.Errorf("NegativeTTL() = %v, want 30s", s.NegativeTTL())
	}
}

func TestGetStreamConfig_CustomValues(t *testing.T) {
	cfg := Config{Stream: StreamConfig{
		TimeoutSeconds:     5,
		CacheSize:          50,
		CacheTTLMinutes:    15,
		NegativeTTLSeconds: 120,
	}}
	s := cfg.GetStreamConfig()

	if s.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", s.Timeout())
	}
	if s.CacheSize != 50 {
		t.Errorf("CacheSize = %d, want 50", s.CacheSize)
	}
	if s.CacheTTL() != 15*time.Minute {
		t.Errorf("CacheTTL() = %v, want 15m", s.CacheTTL())
	}
	if s.NegativeTTL() != 2*time.Minute {
		t.Errorf("NegativeTTL() = %v, want 2m", s.NegativeTTL())
	}
}

func TestGetPlayerConfig(t *testing.T) {
	tests := []struct {
		name  string
		input PlayerConfig
		want  PlayerConfig
	}{
		{
			name:  "defaults",
			input: PlayerConfig{},
			want: PlayerConfig{
				PollIntervalMS: 100, ProgressThreshold: 0.3, DurationThreshold: 0.5,
				SleepCheckSeconds: 10, HistorySize: 10, RecentArtists: 5, SaveDelayMS: 500,
			},
		},
		{
			name: "custom values kept",
			input: PlayerConfig{
				PollIntervalMS: 50, ProgressThreshold: 1, DurationThreshold: 2,
				SleepCheckSeconds: 1, HistorySize: 20, RecentArtists: 3, SaveDelayMS: 100,
			},
			want: PlayerConfig{
				PollIntervalMS: 50, ProgressThreshold: 1, DurationThreshold: 2,
				SleepCheckSeconds: 1, HistorySize: 20, RecentArtists: 3, SaveDelayMS: 100,
			},
		},
		{
			name:  "invalid values replaced",
			input: PlayerConfig{PollIntervalMS: -5, HistorySize: 1000, RecentArtists: -1, SaveDelayMS: -1},
			want: PlayerConfig{
				PollIntervalMS: 100, ProgressThreshold: 0.3, DurationThreshold: 0.5,
				SleepCheckSeconds: 10, HistorySize: 10, RecentArtists: 5, SaveDelayMS: 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Player: tt.input}
			if got := cfg.GetPlayerConfig(); got != tt.want {
				t.Errorf("GetPlayerConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPlayerConfig_Durations(t *testing.T) {
	p := PlayerConfig{PollIntervalMS: 100, SleepCheckSeconds: 10, SaveDelayMS: 500}
	if p.PollInterval() != 100*time.Millisecond {
		t.Errorf("PollInterval() = %v", p.PollInterval())
	}
	if p.SleepCheckInterval() != 10*time.Second {
		t.Errorf("SleepCheckInterval() = %v", p.SleepCheckInterval())
	}
	if p.SaveDelay() != 500*time.Millisecond {
		t.Errorf("SaveDelay() = %v", p.SaveDelay())
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"", logrus.InfoLevel},
		{"debug", logrus.DebugLevel},
		{"WARN", logrus.WarnLevel},
		{"nonsense", logrus.InfoLevel},
	}
	for _, tt := range tests {
		cfg := Config{Log: LogConfig{Level: tt.level}}
		if got := cfg.LogLevel(); got != tt.want {
			t.Errorf("LogLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestLogPath_Override(t *testing.T) {
	cfg := Config{Log: LogConfig{File: "/tmp/tides.log"}}
	path, err := cfg.LogPath()
	if err != nil {
		t.Fatalf("LogPath() error = %v", err)
	}
	if path != "/tmp/tides.log" {
		t.Errorf("LogPath() = %q", path)
	}
}

func TestCanScrobble(t *testing.T) {
	cfg := Config{Lastfm: LastfmConfig{APIKey: "k", APISecret: "s", SessionKey: "sk"}}
	if !cfg.CanScrobble() {
		t.Error("CanScrobble() = false, want true")
	}
	cfg.Lastfm.APISecret = ""
	if cfg.CanScrobble() {
		t.Error("CanScrobble() = true without secret")
	}
}
