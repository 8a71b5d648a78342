// internal/player/interface.go
package player

import (
	"errors"
	"time"
)

// ErrAudioUnavailable is returned when the build has no audio output.
var ErrAudioUnavailable = errors.New("audio output not available in this build")

// LoadRequest asks a backend to load a stream.
// Seq identifies the load; every Event produced for it carries the same Seq
// so callers can drop notifications from superseded loads.
type LoadRequest struct {
	Seq     uint64
	TrackID string
	URL     string // may be empty if the backend resolves TrackID itself
}

// Event is a transport notification from the backend.
type Event struct {
	Seq   uint64
	State State
	Code  int // backend error code, set when State == Error
}

// Interface is the playback backend contract. Calls are fire-and-forget;
// results come back asynchronously on Events.
type Interface interface {
	Load(req LoadRequest)
	Play()
	Pause()
	SeekTo(seconds float64)
	SetVolume(percent int) // 0-100
	Progress() float64     // seconds
	Duration() float64     // seconds
	Events() <-chan Event
	Close() error
}

// Crossfader is implemented by backends that can overlap consecutive tracks.
type Crossfader interface {
	SetCrossfade(d time.Duration)
}

// Normalizer is implemented by backends that can level loudness across tracks.
type Normalizer interface {
	SetNormalization(enabled bool)
}
