package playback

import (
	"time"

	"github.com/llehouerou/tides/internal/playlist"
)

// Service defines the playback engine contract.
//
// Transport and queue operations never fail for expected conditions such as
// an empty queue or an out-of-range index; they degrade to a no-op.
// Operations are serialized and take effect in call order. After Close every
// operation is a no-op.
type Service interface {
	// Playback control
	Play(track playlist.Track, queue ...playlist.Track)
	Pause()
	Resume()
	Toggle()
	Seek(seconds float64)
	Next()
	Previous()
	PlayAt(index int)
	RetryPlayback()

	// Settings
	SetVolume(v float64)
	ToggleShuffle() bool
	ToggleRepeat() RepeatMode
	SetCrossfade(d time.Duration)
	SetVolumeNormalization(enabled bool)
	SetSleepTimer(minutes *int)

	// Queue manipulation
	AddToQueue(track playlist.Track)
	PlayNext(track playlist.Track)
	RemoveFromQueue(index int)
	ReorderQueue(from, to int)
	ClearQueue()

	// Queue history
	QueueHistory() []playlist.HistoryEntry
	RestoreQueue(id string) bool

	// State queries
	State() PlayerState

	// Event subscription
	OnTrackPlay(fn func(TrackPlay)) (unsubscribe func())
	OnTrackEnd(fn func(TrackEnd)) (unsubscribe func())
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}
