// Package taste keeps a recency-weighted profile of what the listener plays.
package taste

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/samber/lo"
)

const (
	maxEntries     = 200
	maxRecent      = 50
	maxKeywords    = 10
	topArtistCount = 15
	topKeywordCnt  = 20

	skipThreshold = 30 * time.Second
	decayWindow   = 7 * 24 * time.Hour
	minRecency    = 0.2
)

// Entry aggregates the plays of one track.
type Entry struct {
	Artist            string    `json:"artist"`
	Keywords          []string  `json:"keywords"`
	PlayCount         int       `json:"play_count"`
	SkipCount         int       `json:"skip_count"`
	TotalPlayDuration float64   `json:"total_play_duration"` // seconds
	LastPlayedAt      time.Time `json:"last_played_at"`
}

// Ranked is a scored artist or keyword.
type Ranked struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Profile is the persisted taste model.
type Profile struct {
	Tracks      map[string]Entry `json:"tracks"`
	Recent      []string         `json:"recent"` // track ids, newest first
	TopArtists  []Ranked         `json:"top_artists"`
	TopKeywords []Ranked         `json:"top_keywords"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewProfile returns an empty profile.
func NewProfile() Profile {
	return Profile{Tracks: make(map[string]Entry)}
}

// IsSkip reports whether a play counts as a skip: under 30 seconds of a
// track longer than 30 seconds.
func IsSkip(played, trackDuration time.Duration) bool {
	return played < skipThreshold && trackDuration > skipThreshold
}

// Score is the decayed weight of an entry at now:
// (plays*2 + min(plays,5)*1.5 - skips) * max(0.2, 1 - age/7d).
func Score(e Entry, now time.Time) float64 {
	base := float64(e.PlayCount)*2 + float64(min(e.PlayCount, 5))*1.5 - float64(e.SkipCount)
	return base * recency(now.Sub(e.LastPlayedAt))
}

func recency(age time.Duration) float64 {
	if age < 0 {
		age = 0
	}
	return math.Max(minRecency, 1-float64(age)/float64(decayWindow))
}

// record applies one play to p.
func (p *Profile) record(trackID string, e Entry, played time.Duration, skipped bool, at time.Time) {
	if p.Tracks == nil {
		p.Tracks = make(map[string]Entry)
	}
	cur, ok := p.Tracks[trackID]
	if !ok {
		cur = Entry{Artist: e.Artist}
	}
	if e.Artist != "" {
		cur.Artist = e.Artist
	}
	cur.PlayCount++
	if skipped {
		cur.SkipCount++
	}
	cur.TotalPlayDuration += played.Seconds()
	cur.LastPlayedAt = at
	cur.Keywords = lo.Slice(lo.Uniq(append(slices.Clone(cur.Keywords), e.Keywords...)), 0, maxKeywords)
	p.Tracks[trackID] = cur

	p.Recent = append([]string{trackID}, lo.Without(p.Recent, trackID)...)
	if len(p.Recent) > maxRecent {
		p.Recent = p.Recent[:maxRecent]
	}

	p.evict()
	p.rank(at)
	p.UpdatedAt = at
}

// evict drops the least recently played entries beyond maxEntries.
func (p *Profile) evict() {
	if len(p.Tracks) <= maxEntries {
		return
	}
	ids := lo.Keys(p.Tracks)
	slices.SortFunc(ids, func(a, b string) int {
		if c := p.Tracks[a].LastPlayedAt.Compare(p.Tracks[b].LastPlayedAt); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	for _, id := range ids[:len(ids)-maxEntries] {
		delete(p.Tracks, id)
	}
}

// rank recomputes TopArtists and TopKeywords at now.
func (p *Profile) rank(now time.Time) {
	artists := make(map[string]float64)
	keywords := make(map[string]float64)
	for _, e := range p.Tracks {
		score := Score(e, now)
		if e.Artist != "" {
			artists[e.Artist] += score
		}
		for _, k := range e.Keywords {
			keywords[k] += score
		}
	}
	p.TopArtists = top(artists, topArtistCount)
	p.TopKeywords = top(keywords, topKeywordCnt)
}

func top(scores map[string]float64, n int) []Ranked {
	ranked := lo.MapToSlice(scores, func(name string, score float64) Ranked {
		return Ranked{Name: name, Score: score}
	})
	slices.SortFunc(ranked, func(a, b Ranked) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return cmp.Compare(a.Name, b.Name)
		}
	})
	return lo.Slice(ranked, 0, n)
}

// ArtistScore returns the ranked score of artist, or 0.
func (p Profile) ArtistScore(artist string) float64 {
	r, ok := lo.Find(p.TopArtists, func(r Ranked) bool { return r.Name == artist })
	if !ok {
		return 0
	}
	return r.Score
}
