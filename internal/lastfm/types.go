package lastfm

import (
	"time"

	"github.com/llehouerou/tides/internal/playlist"
)

// ScrobbleTrack contains track metadata for scrobbling.
type ScrobbleTrack struct {
	Artist    string
	Track     string
	Album     string
	Duration  time.Duration
	Timestamp time.Time // When playback started
}

// FromTrack builds a ScrobbleTrack for a play of t that started at startedAt.
func FromTrack(t playlist.Track, startedAt time.Time) ScrobbleTrack {
	artist := t.ArtistName
	if artist == "" {
		artist = t.ArtistID
	}
	return ScrobbleTrack{
		Artist:    artist,
		Track:     t.Name,
		Album:     t.AlbumName,
		Duration:  time.Duration(t.Duration) * time.Second,
		Timestamp: startedAt,
	}
}

const (
	minScrobbleLength = 30 * time.Second
	scrobbleAfter     = 4 * time.Minute
)

// ShouldScrobble reports whether a play of played out of a track lasting
// duration qualifies: at least half the track or four minutes. Tracks known
// to be 30 seconds or shorter never qualify.
func ShouldScrobble(played, duration time.Duration) bool {
	if duration > 0 && duration <= minScrobbleLength {
		return false
	}
	if played >= scrobbleAfter {
		return true
	}
	return duration > 0 && played >= duration/2
}
