package playback

import (
	"math/rand/v2"

	"github.com/samber/lo"

	"github.com/llehouerou/tides/internal/playlist"
)

// recentArtists is a bounded window of the artists played last, newest last.
type recentArtists struct {
	size int
	ids  []string
}

func newRecentArtists(size int) *recentArtists {
	return &recentArtists{size: size}
}

// push records artistID. Tracks without an artist are not recorded.
func (r *recentArtists) push(artistID string) {
	if artistID == "" {
		return
	}
	r.ids = append(r.ids, artistID)
	if len(r.ids) > r.size {
		r.ids = r.ids[len(r.ids)-r.size:]
	}
}

func (r *recentArtists) contains(artistID string) bool {
	return lo.Contains(r.ids, artistID)
}

func (r *recentArtists) snapshot() []string {
	return append([]string(nil), r.ids...)
}

// pickShuffle chooses the next index at random, avoiding the current index
// and, when possible, any track by a recently played artist.
// Returns -1 when the queue has no other track.
func pickShuffle(tracks []playlist.Track, current int, recent *recentArtists, rng *rand.Rand) int {
	others := lo.Filter(lo.Range(len(tracks)), func(i int, _ int) bool {
		return i != current
	})
	if len(others) == 0 {
		return -1
	}
	fresh := lo.Filter(others, func(i int, _ int) bool {
		return !recent.contains(tracks[i].ArtistID)
	})
	candidates := others
	if len(fresh) > 0 {
		candidates = fresh
	}
	return candidates[rng.IntN(len(candidates))]
}
