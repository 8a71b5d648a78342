package playback

import (
	"context"
	"io"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tides/internal/state"
)

// StreamResolver maps a track id to a playable URL.
type StreamResolver interface {
	Resolve(ctx context.Context, trackID string) (string, error)
}

// Prefetcher is implemented by resolvers that can warm their cache.
type Prefetcher interface {
	Prefetch(trackID string)
}

// Forgetter is implemented by resolvers that cache failures.
type Forgetter interface {
	Forget(trackID string)
}

// Observer receives playback counts. Implemented by metrics.Collector.
type Observer interface {
	TrackStarted()
	PlaybackFailed()
}

type nopObserver struct{}

func (nopObserver) TrackStarted()   {}
func (nopObserver) PlaybackFailed() {}

// Options configures the engine. Zero values pick the defaults.
type Options struct {
	// Resolver is asked for a URL when a track has no Audio. Optional.
	Resolver StreamResolver
	// Store persists the queue and settings. Optional.
	Store state.Store
	// SaveDelay debounces persistence writes; zero writes synchronously.
	SaveDelay time.Duration

	Observer Observer
	Logger   logrus.FieldLogger

	PollInterval       time.Duration // progress polling, default 100ms
	ProgressThreshold  float64       // seconds, default 0.3
	DurationThreshold  float64       // seconds, default 0.5
	SleepCheckInterval time.Duration // default 10s
	HistorySize        int           // queue snapshots kept, default 10
	RecentArtists      int           // shuffle artist window, default 5

	// Rand drives shuffle selection. Defaults to a randomly seeded source.
	Rand *rand.Rand
}

func (o *Options) withDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = 100 * time.Millisecond
	}
	if o.ProgressThreshold <= 0 {
		o.ProgressThreshold = 0.3
	}
	if o.DurationThreshold <= 0 {
		o.DurationThreshold = 0.5
	}
	if o.SleepCheckInterval <= 0 {
		o.SleepCheckInterval = 10 * time.Second
	}
	if o.HistorySize <= 0 {
		o.HistorySize = 10
	}
	if o.RecentArtists <= 0 {
		o.RecentArtists = 5
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // shuffle order
	}
}
