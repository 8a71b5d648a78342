package taste

import (
	"encoding/json"
	"io"
	"maps"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tides/internal/playlist"
	"github.com/llehouerou/tides/internal/state"
)

// Observer receives skip counts. Implemented by metrics.Collector.
type Observer interface {
	TrackSkipped()
}

type nopObserver struct{}

func (nopObserver) TrackSkipped() {}

// Scorer records plays into a Profile persisted in a state.Store.
type Scorer struct {
	mu      sync.Mutex
	store   state.Store
	profile Profile
	now     func() time.Time
	obs     Observer
	log     logrus.FieldLogger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// WithObserver reports skips to obs.
func WithObserver(obs Observer) Option {
	return func(s *Scorer) { s.obs = obs }
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Scorer) { s.log = log }
}

// NewScorer loads the stored profile. A missing or corrupt profile starts empty.
func NewScorer(store state.Store, opts ...Option) *Scorer {
	l := logrus.New()
	l.SetOutput(io.Discard)
	s := &Scorer{
		store: store,
		now:   time.Now,
		obs:   nopObserver{},
		log:   l,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.profile = Load(store)
	return s
}

// Load reads the profile from store. Errors yield an empty profile.
func Load(store state.Store) Profile {
	raw, ok, err := store.Get(state.KeyTasteProfile)
	if err != nil || !ok {
		return NewProfile()
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil || p.Tracks == nil {
		return NewProfile()
	}
	return p
}

// RecordPlay adds one play of track lasting played. It reports whether the
// play counted as a skip. Storage failures are logged and ignored.
func (s *Scorer) RecordPlay(track playlist.Track, played time.Duration) bool {
	if track.ID == "" {
		return false
	}
	skipped := IsSkip(played, time.Duration(track.Duration)*time.Second)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.record(track.ID, Entry{
		Artist:   artistOf(track),
		Keywords: Keywords(track.Name),
	}, played, skipped, s.now())
	if skipped {
		s.obs.TrackSkipped()
	}
	s.saveLocked()
	return skipped
}

// Profile returns a copy of the current profile with scores recomputed at now.
func (s *Scorer) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profile
	p.Tracks = maps.Clone(s.profile.Tracks)
	p.Recent = append([]string(nil), s.profile.Recent...)
	p.rank(s.now())
	return p
}

func (s *Scorer) saveLocked() {
	data, err := json.Marshal(s.profile)
	if err != nil {
		s.log.WithError(err).Debug("encoding taste profile failed")
		return
	}
	if err := s.store.Set(state.KeyTasteProfile, string(data)); err != nil {
		s.log.WithError(err).Debug("saving taste profile failed")
	}
}

func artistOf(t playlist.Track) string {
	if t.ArtistName != "" {
		return t.ArtistName
	}
	return t.ArtistID
}
