package mpris

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/tides/internal/playback"
)

const noTrack = dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Tides", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and the loop
// status and shuffle extensions. Every answer is read from the engine.
type playerAdapter struct {
	service playback.Service
}

func (p *playerAdapter) Next() error {
	p.service.Next()
	return nil
}

func (p *playerAdapter) Previous() error {
	p.service.Previous()
	return nil
}

func (p *playerAdapter) Pause() error {
	p.service.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.service.Toggle()
	return nil
}

// Stop pauses; the engine has no stopped state distinct from paused.
func (p *playerAdapter) Stop() error {
	p.service.Pause()
	return nil
}

func (p *playerAdapter) Play() error {
	p.service.Resume()
	return nil
}

// Seek moves relative to the current position. Seeking past the end skips
// to the next track.
func (p *playerAdapter) Seek(offset types.Microseconds) error {
	st := p.service.State()
	if st.CurrentTrack == nil {
		return nil
	}
	target := st.Progress + toSeconds(offset)
	if st.Duration > 0 && target > st.Duration {
		p.service.Next()
		return nil
	}
	p.service.Seek(math.Max(0, target))
	return nil
}

func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	st := p.service.State()
	if st.CurrentTrack == nil || dbus.ObjectPath(trackID) != trackObjectPath(st.CurrentTrack.ID) {
		return nil
	}
	seconds := toSeconds(position)
	if seconds < 0 || (st.Duration > 0 && seconds > st.Duration) {
		return nil
	}
	p.service.Seek(seconds)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	return playbackStatus(p.service.State()), nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	return metadata(p.service.State()), nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.service.State().Volume, nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	p.service.SetVolume(v)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return int64(toMicroseconds(p.service.State().Progress)), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	st := p.service.State()
	if len(st.Queue) == 0 {
		return false, nil
	}
	return st.QueueIndex < len(st.Queue)-1 || st.Repeat == playback.RepeatAll || st.Shuffle, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	st := p.service.State()
	if len(st.Queue) == 0 {
		return false, nil
	}
	return st.QueueIndex > 0 || st.Repeat == playback.RepeatAll, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.service.State().CurrentTrack != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.service.State().CurrentTrack != nil, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.service.State().CurrentTrack != nil, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	return loopStatus(p.service.State().Repeat), nil
}

// SetLoopStatus cycles the engine's repeat mode until it matches status.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	want := repeatMode(status)
	for range 3 {
		if p.service.State().Repeat == want {
			return nil
		}
		p.service.ToggleRepeat()
	}
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.service.State().Shuffle, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	if p.service.State().Shuffle != shuffle {
		p.service.ToggleShuffle()
	}
	return nil
}

func playbackStatus(st playback.PlayerState) types.PlaybackStatus {
	switch {
	case st.CurrentTrack == nil:
		return types.PlaybackStatusStopped
	case st.IsPlaying:
		return types.PlaybackStatusPlaying
	default:
		return types.PlaybackStatusPaused
	}
}

func loopStatus(m playback.RepeatMode) types.LoopStatus {
	switch m {
	case playback.RepeatOne:
		return types.LoopStatusTrack
	case playback.RepeatAll:
		return types.LoopStatusPlaylist
	case playback.RepeatOff:
		return types.LoopStatusNone
	}
	return types.LoopStatusNone
}

func repeatMode(s types.LoopStatus) playback.RepeatMode {
	switch s {
	case types.LoopStatusTrack:
		return playback.RepeatOne
	case types.LoopStatusPlaylist:
		return playback.RepeatAll
	case types.LoopStatusNone:
		return playback.RepeatOff
	}
	return playback.RepeatOff
}

func metadata(st playback.PlayerState) types.Metadata {
	track := st.CurrentTrack
	if track == nil {
		return types.Metadata{TrackId: noTrack}
	}

	length := st.Duration
	if length <= 0 {
		length = float64(track.Duration)
	}
	meta := types.Metadata{
		TrackId: trackObjectPath(track.ID),
		Length:  toMicroseconds(length),
		Title:   track.Name,
		Album:   track.AlbumName,
		ArtUrl:  track.AlbumImage,
	}
	if track.ArtistName != "" {
		meta.Artist = []string{track.ArtistName}
	}
	if track.Position > 0 {
		meta.TrackNumber = track.Position
	}
	return meta
}

func trackObjectPath(id string) dbus.ObjectPath {
	h := fnv.New64a()
	h.Write([]byte(id))
	return dbus.ObjectPath(fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64()))
}

func toMicroseconds(seconds float64) types.Microseconds {
	return types.Microseconds(math.Round(seconds * 1e6))
}

func toSeconds(us types.Microseconds) float64 {
	return float64(us) / 1e6
}
