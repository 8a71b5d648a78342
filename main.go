package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llehouerou/tides/internal/app"
	"github.com/llehouerou/tides/internal/config"
	"github.com/llehouerou/tides/internal/lastfm"
	"github.com/llehouerou/tides/internal/metrics"
	"github.com/llehouerou/tides/internal/mpris"
	"github.com/llehouerou/tides/internal/playback"
	"github.com/llehouerou/tides/internal/player"
	"github.com/llehouerou/tides/internal/resolver"
	"github.com/llehouerou/tides/internal/state"
	"github.com/llehouerou/tides/internal/taste"
)

var (
	debug bool
	cfg   *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tides",
	Short: "Stream music from the terminal",
	Long:  `Tides plays a queue of streamed tracks with shuffle, repeat, a sleep timer and desktop media keys.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	RunE:         runPlayer,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "log at debug level")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newLogger writes to the log file since the terminal belongs to the UI.
func newLogger() (*logrus.Logger, func(), error) {
	path, err := cfg.LogPath()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	log.SetOutput(f)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(cfg.LogLevel())
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}
	return log, func() { f.Close() }, nil
}

func runPlayer(cmd *cobra.Command, _ []string) error {
	if !player.AudioAvailable {
		return player.ErrAudioUnavailable
	}

	log, closeLog, err := newLogger()
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()

	store, err := state.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	collector := metrics.New()
	pc := cfg.GetPlayerConfig()
	opts := playback.Options{
		Store:              store,
		SaveDelay:          pc.SaveDelay(),
		Observer:           collector,
		Logger:             log,
		PollInterval:       pc.PollInterval(),
		ProgressThreshold:  pc.ProgressThreshold,
		DurationThreshold:  pc.DurationThreshold,
		SleepCheckInterval: pc.SleepCheckInterval(),
		HistorySize:        pc.HistorySize,
		RecentArtists:      pc.RecentArtists,
	}
	if sc := cfg.GetStreamConfig(); sc.BaseURL != "" {
		opts.Resolver = resolver.New(resolver.Options{
			BaseURL:     sc.BaseURL,
			Timeout:     sc.Timeout(),
			CacheSize:   sc.CacheSize,
			CacheTTL:    sc.CacheTTL(),
			NegativeTTL: sc.NegativeTTL(),
			Observer:    collector,
			Logger:      log,
		})
	} else {
		log.Info("no stream backend configured; only tracks with a stream URL will play")
	}

	device, err := player.NewDevice(nil)
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	defer device.Close()

	svc := playback.New(device, opts)

	scorer := taste.NewScorer(store, taste.WithObserver(collector), taste.WithLogger(log))
	tracker := taste.Track(svc, scorer, store, log)
	defer tracker.Stop()

	if scrobbler := newScrobbler(store, log); scrobbler != nil {
		scrobbler.Attach(svc)
		defer scrobbler.Close()
	}
	// Closed before the listeners above so the interrupted play still
	// reaches them.
	defer svc.Close()

	if session, err := mpris.New(svc, log); err != nil {
		log.WithError(err).Warn("media session unavailable")
	} else {
		defer session.Close()
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if addr := cfg.Metrics.Listen; addr != "" {
		go func() {
			if err := collector.Serve(ctx, addr, log); err != nil {
				log.WithError(err).Warn("metrics endpoint stopped")
			}
		}()
	}

	p := tea.NewProgram(app.New(svc, log), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// newScrobbler returns nil unless Last.fm credentials and a session exist.
// A session key in the config wins over one saved by "tides lastfm login".
func newScrobbler(store *state.Manager, log logrus.FieldLogger) *lastfm.Scrobbler {
	if !cfg.HasLastfmConfig() {
		return nil
	}
	sessionKey := cfg.Lastfm.SessionKey
	if sessionKey == "" {
		sessionKey = state.LastfmSession(store)
	}
	if sessionKey == "" {
		log.Info("last.fm configured but not linked; run 'tides lastfm login'")
		return nil
	}
	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
	client.SetSessionKey(sessionKey)
	return lastfm.NewScrobbler(client, store, log)
}
