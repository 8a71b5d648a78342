package mpris

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tides/internal/playback"
	"github.com/llehouerou/tides/internal/player"
	"github.com/llehouerou/tides/internal/playlist"
)

func song(id string) playlist.Track {
	return playlist.Track{
		ID:         id,
		Name:       "Song " + id,
		ArtistName: "Artist",
		AlbumName:  "Album",
		AlbumImage: "https://img.example/" + id + ".jpg",
		Audio:      "https://cdn.example/" + id + ".mp3",
		Duration:   200,
		Position:   3,
	}
}

func setup(t *testing.T) (*playerAdapter, playback.Service, *player.Mock) {
	t.Helper()
	p := player.NewMock()
	svc := playback.New(p, playback.Options{})
	t.Cleanup(func() { svc.Close() })
	return &playerAdapter{service: svc}, svc, p
}

func TestPlayerAdapter_EmptyEngine(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pa, _, _ := setup(t)

		status, err := pa.PlaybackStatus()
		require.NoError(t, err)
		assert.Equal(t, types.PlaybackStatusStopped, status)

		meta, err := pa.Metadata()
		require.NoError(t, err)
		assert.Equal(t, noTrack, meta.TrackId)

		canNext, _ := pa.CanGoNext()
		canPrev, _ := pa.CanGoPrevious()
		canPlay, _ := pa.CanPlay()
		assert.False(t, canNext)
		assert.False(t, canPrev)
		assert.False(t, canPlay)

		assert.NoError(t, pa.Seek(1_000_000))
		assert.NoError(t, pa.PlayPause())
	})
}

func TestPlayerAdapter_MetadataFollowsCurrentTrack(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pa, svc, _ := setup(t)
		q := []playlist.Track{song("a"), song("b")}
		svc.Play(q[0], q...)

		meta, err := pa.Metadata()
		require.NoError(t, err)
		assert.Equal(t, trackObjectPath("a"), meta.TrackId)
		assert.Equal(t, "Song a", meta.Title)
		assert.Equal(t, []string{"Artist"}, meta.Artist)
		assert.Equal(t, "Album", meta.Album)
		assert.Equal(t, "https://img.example/a.jpg", meta.ArtUrl)
		assert.Equal(t, types.Microseconds(200_000_000), meta.Length)
		assert.Equal(t, 3, meta.TrackNumber)

		require.NoError(t, pa.Next())
		meta, _ = pa.Metadata()
		assert.Equal(t, "Song b", meta.Title)
	})
}

func TestPlayerAdapter_PlayPauseFollowsEngine(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pa, svc, p := setup(t)
		q := []playlist.Track{song("a")}
		svc.Play(q[0], q...)
		p.EmitForLast(player.Playing)
		synctest.Wait()

		status, _ := pa.PlaybackStatus()
		assert.Equal(t, types.PlaybackStatusPlaying, status)

		require.NoError(t, pa.PlayPause())
		status, _ = pa.PlaybackStatus()
		assert.Equal(t, types.PlaybackStatusPaused, status)

		require.NoError(t, pa.Play())
		status, _ = pa.PlaybackStatus()
		assert.Equal(t, types.PlaybackStatusPlaying, status)

		require.NoError(t, pa.Stop())
		status, _ = pa.PlaybackStatus()
		assert.Equal(t, types.PlaybackStatusPaused, status)
	})
}

func TestPlayerAdapter_Seek(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pa, svc, p := setup(t)
		q := []playlist.Track{song("a"), song("b")}
		svc.Play(q[0], q...)
		p.SetDuration(200)
		p.SetProgress(50)
		svc.Seek(50)

		require.NoError(t, pa.Seek(10_000_000))
		assert.InDelta(t, 60, svc.State().Progress, 1e-9)

		require.NoError(t, pa.Seek(-100_000_000))
		assert.InDelta(t, 0, svc.State().Progress, 1e-9)

		pos, err := pa.Position()
		require.NoError(t, err)
		assert.Equal(t, int64(0), pos)

		require.NoError(t, pa.SetPosition(string(trackObjectPath("a")), 120_000_000))
		assert.InDelta(t, 120, svc.State().Progress, 1e-9)

		// Stale track id is ignored.
		require.NoError(t, pa.SetPosition(string(trackObjectPath("b")), 5_000_000))
		assert.InDelta(t, 120, svc.State().Progress, 1e-9)

		// Let the poller pick up the device duration.
		time.Sleep(200 * time.Millisecond)
		require.NoError(t, pa.Seek(500_000_000))
		assert.Equal(t, "b", svc.State().CurrentTrack.ID)
	})
}

func TestPlayerAdapter_LoopAndShuffle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pa, svc, _ := setup(t)

		for _, status := range []types.LoopStatus{
			types.LoopStatusTrack, types.LoopStatusPlaylist, types.LoopStatusNone, types.LoopStatusPlaylist,
		} {
			require.NoError(t, pa.SetLoopStatus(status))
			got, _ := pa.LoopStatus()
			assert.Equal(t, status, got)
		}

		require.NoError(t, pa.SetShuffle(true))
		require.NoError(t, pa.SetShuffle(true))
		assert.True(t, svc.State().Shuffle)
		require.NoError(t, pa.SetShuffle(false))
		shuffle, _ := pa.Shuffle()
		assert.False(t, shuffle)
	})
}

func TestPlayerAdapter_NavigationCapabilities(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pa, svc, _ := setup(t)
		q := []playlist.Track{song("a"), song("b")}
		svc.Play(q[1], q...)

		canNext, _ := pa.CanGoNext()
		canPrev, _ := pa.CanGoPrevious()
		assert.False(t, canNext)
		assert.True(t, canPrev)

		svc.ToggleRepeat() // all
		canNext, _ = pa.CanGoNext()
		assert.True(t, canNext)
	})
}

func TestPlayerAdapter_Volume(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		pa, _, p := setup(t)
		require.NoError(t, pa.SetVolume(0.4))
		v, _ := pa.Volume()
		assert.InDelta(t, 0.4, v, 1e-9)
		assert.Equal(t, 40, p.VolumeCalls()[len(p.VolumeCalls())-1])
	})
}

func TestStatusMappings(t *testing.T) {
	assert.Equal(t, types.LoopStatusNone, loopStatus(playback.RepeatOff))
	assert.Equal(t, types.LoopStatusPlaylist, loopStatus(playback.RepeatAll))
	assert.Equal(t, types.LoopStatusTrack, loopStatus(playback.RepeatOne))
	for _, m := range []playback.RepeatMode{playback.RepeatOff, playback.RepeatAll, playback.RepeatOne} {
		assert.Equal(t, m, repeatMode(loopStatus(m)))
	}

	tr := song("a")
	assert.Equal(t, types.PlaybackStatusPaused, playbackStatus(playback.PlayerState{CurrentTrack: &tr}))
	assert.Equal(t, types.PlaybackStatusPlaying, playbackStatus(playback.PlayerState{CurrentTrack: &tr, IsPlaying: true}))
}

func TestTrackObjectPath(t *testing.T) {
	p := trackObjectPath("abc")
	assert.True(t, p.IsValid())
	assert.Equal(t, p, trackObjectPath("abc"))
	assert.NotEqual(t, p, trackObjectPath("abd"))
	assert.Equal(t, dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack"), noTrack)
}
