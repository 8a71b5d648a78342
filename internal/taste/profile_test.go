package taste

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tides/internal/playlist"
	"github.com/llehouerou/tides/internal/state"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func song(id, artist, name string) playlist.Track {
	return playlist.Track{ID: id, Name: name, ArtistName: artist, Duration: 200}
}

func TestIsSkip(t *testing.T) {
	tests := []struct {
		played, duration time.Duration
		want             bool
	}{
		{10 * time.Second, 200 * time.Second, true},
		{29 * time.Second, 31 * time.Second, true},
		{30 * time.Second, 200 * time.Second, false},
		{10 * time.Second, 30 * time.Second, false},
		{5 * time.Second, 20 * time.Second, false},
	}
	for _, tt := range tests {
		if got := IsSkip(tt.played, tt.duration); got != tt.want {
			t.Errorf("IsSkip(%v, %v) = %v, want %v", tt.played, tt.duration, got, tt.want)
		}
	}
}

func TestScore_Formula(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		entry Entry
		want  float64
	}{
		{"fresh single play", Entry{PlayCount: 1, LastPlayedAt: now}, 3.5},
		{"plays cap the bonus", Entry{PlayCount: 8, LastPlayedAt: now}, 16 + 7.5},
		{"skips subtract", Entry{PlayCount: 2, SkipCount: 2, LastPlayedAt: now}, 5},
		{"half decayed", Entry{PlayCount: 1, LastPlayedAt: now.Add(-84 * time.Hour)}, 1.75},
		{"floor after a week", Entry{PlayCount: 1, LastPlayedAt: now.Add(-30 * 24 * time.Hour)}, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.entry, now), 1e-9)
		})
	}
}

// Two plays a second apart score higher than the same two plays eight days
// ago, and the old plays keep a non-zero weight.
func TestScore_RecencyDecay(t *testing.T) {
	recentClock := newClock()
	recent := NewScorer(state.NewMock(), WithClock(recentClock.now))
	recent.RecordPlay(song("t1", "Artist", "Tune"), time.Minute)
	recentClock.advance(time.Second)
	recent.RecordPlay(song("t1", "Artist", "Tune"), time.Minute)

	oldClock := newClock()
	old := NewScorer(state.NewMock(), WithClock(oldClock.now))
	old.RecordPlay(song("t1", "Artist", "Tune"), time.Minute)
	oldClock.advance(time.Second)
	old.RecordPlay(song("t1", "Artist", "Tune"), time.Minute)
	oldClock.advance(8 * 24 * time.Hour)

	recentScore := recent.Profile().ArtistScore("Artist")
	oldScore := old.Profile().ArtistScore("Artist")

	assert.Greater(t, recentScore, oldScore)
	assert.Greater(t, oldScore, 0.0)
	assert.InDelta(t, 7*minRecency, oldScore, 1e-9)
}

func TestRecordPlay_UpdatesEntry(t *testing.T) {
	clock := newClock()
	s := NewScorer(state.NewMock(), WithClock(clock.now))

	assert.False(t, s.RecordPlay(song("t1", "Band", "Midnight City Lights"), 3*time.Minute))
	clock.advance(time.Hour)
	assert.True(t, s.RecordPlay(song("t1", "Band", "Midnight City Lights (Remix)"), 5*time.Second))

	p := s.Profile()
	e := p.Tracks["t1"]
	assert.Equal(t, 2, e.PlayCount)
	assert.Equal(t, 1, e.SkipCount)
	assert.InDelta(t, 185, e.TotalPlayDuration, 1e-9)
	assert.Equal(t, clock.t, e.LastPlayedAt)
	assert.Equal(t, []string{"midnight", "city", "lights"}, e.Keywords)
	assert.Equal(t, []string{"t1"}, p.Recent)
}

func TestRecordPlay_RecentListDedupedAndBounded(t *testing.T) {
	clock := newClock()
	s := NewScorer(state.NewMock(), WithClock(clock.now))

	for i := range 60 {
		s.RecordPlay(song(fmt.Sprintf("t%d", i), "A", "Name"), time.Minute)
		clock.advance(time.Second)
	}
	s.RecordPlay(song("t10", "A", "Name"), time.Minute)

	p := s.Profile()
	require.Len(t, p.Recent, maxRecent)
	assert.Equal(t, "t10", p.Recent[0])
	assert.Equal(t, "t59", p.Recent[1])
	count := 0
	for _, id := range p.Recent {
		if id == "t10" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRecordPlay_EvictsLeastRecentlyPlayed(t *testing.T) {
	clock := newClock()
	s := NewScorer(state.NewMock(), WithClock(clock.now))

	for i := range maxEntries + 5 {
		s.RecordPlay(song(fmt.Sprintf("t%03d", i), "A", "Name"), time.Minute)
		clock.advance(time.Second)
	}

	p := s.Profile()
	assert.Len(t, p.Tracks, maxEntries)
	for i := range 5 {
		assert.NotContains(t, p.Tracks, fmt.Sprintf("t%03d", i))
	}
	assert.Contains(t, p.Tracks, "t005")
}

func TestRecordPlay_TopListsBounded(t *testing.T) {
	clock := newClock()
	s := NewScorer(state.NewMock(), WithClock(clock.now))

	for i := range 30 {
		name := fmt.Sprintf("word%c alpha%c", 'a'+i%26, 'a'+(i+1)%26)
		s.RecordPlay(song(fmt.Sprintf("t%d", i), fmt.Sprintf("artist%d", i), name), time.Minute)
	}
	// one artist played more than the rest
	s.RecordPlay(song("t0", "artist0", "worda alphab"), time.Minute)

	p := s.Profile()
	assert.Len(t, p.TopArtists, topArtistCount)
	assert.Len(t, p.TopKeywords, topKeywordCnt)
	assert.Equal(t, "artist0", p.TopArtists[0].Name)
	for i := 1; i < len(p.TopArtists); i++ {
		assert.GreaterOrEqual(t, p.TopArtists[i-1].Score, p.TopArtists[i].Score)
	}
}

func TestScorer_PersistsAndReloads(t *testing.T) {
	store := state.NewMock()
	clock := newClock()
	s := NewScorer(store, WithClock(clock.now))
	s.RecordPlay(song("t1", "Band", "Ocean Drive"), time.Minute)

	reloaded := NewScorer(store, WithClock(clock.now))
	p := reloaded.Profile()
	require.Contains(t, p.Tracks, "t1")
	assert.Equal(t, 1, p.Tracks["t1"].PlayCount)
	assert.Equal(t, "Band", p.TopArtists[0].Name)
}

func TestScorer_CorruptProfileStartsEmpty(t *testing.T) {
	store := state.NewMock()
	require.NoError(t, store.Set(state.KeyTasteProfile, "not json"))

	s := NewScorer(store)
	assert.Empty(t, s.Profile().Tracks)

	s.RecordPlay(song("t1", "A", "Song"), time.Minute)
	assert.Len(t, s.Profile().Tracks, 1)
}

func TestScorer_WriteFailureIsSilent(t *testing.T) {
	store := state.NewMock()
	store.FailWrites(true)
	s := NewScorer(store)

	assert.NotPanics(t, func() {
		s.RecordPlay(song("t1", "A", "Song"), time.Minute)
	})
	assert.Len(t, s.Profile().Tracks, 1)
}

func TestRecordPlay_IgnoresEmptyID(t *testing.T) {
	s := NewScorer(state.NewMock())
	s.RecordPlay(playlist.Track{Name: "x"}, time.Minute)
	assert.Empty(t, s.Profile().Tracks)
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"The Sound of Silence", []string{"sound", "silence"}},
		{"Midnight City (Official Video)", []string{"midnight", "city"}},
		{"Don't Stop Me Now - Remastered 2011", []string{"don't", "stop", "now"}},
		{"Song Song SONG", nil},
		{"a b c", nil},
		{"one two three four five six seven eight nine ten eleven twelve", []string{
			"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten",
		}},
	}
	for _, tt := range tests {
		got := Keywords(tt.name)
		if len(tt.want) == 0 {
			assert.Empty(t, got, tt.name)
			continue
		}
		assert.Equal(t, tt.want, got, tt.name)
	}
}
