// internal/playback/state.go
package playback

import (
	"time"

	"github.com/llehouerou/tides/internal/playlist"
)

// StatusKind is the discriminant of Status.
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusLoading
	StatusPlaying
	StatusPaused
	StatusBuffering
	StatusErrored
)

// String returns the status name.
func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "Idle"
	case StatusLoading:
		return "Loading"
	case StatusPlaying:
		return "Playing"
	case StatusPaused:
		return "Paused"
	case StatusBuffering:
		return "Buffering"
	case StatusErrored:
		return "Errored"
	default:
		return "Unknown"
	}
}

// Status is the playback status. Message is set only for StatusErrored.
type Status struct {
	Kind    StatusKind
	Message string
}

func idle() Status              { return Status{Kind: StatusIdle} }
func errored(msg string) Status { return Status{Kind: StatusErrored, Message: msg} }

// IsPlaying reports whether playback is wanted: loading, buffering or audible.
func (s Status) IsPlaying() bool {
	switch s.Kind {
	case StatusLoading, StatusPlaying, StatusBuffering:
		return true
	default:
		return false
	}
}

// IsBuffering reports whether the listener is waiting on the stream.
func (s Status) IsBuffering() bool {
	return s.Kind == StatusLoading || s.Kind == StatusBuffering
}

// Error returns the user-facing error message, or "".
func (s Status) Error() string {
	if s.Kind != StatusErrored {
		return ""
	}
	return s.Message
}

// RepeatMode defines the repeat behavior.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

// String returns the repeat mode name as persisted.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "unknown"
	}
}

// Next cycles off → all → one → off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// ParseRepeatMode parses a persisted mode; unknown values are RepeatOff.
func ParseRepeatMode(s string) RepeatMode {
	switch s {
	case "all":
		return RepeatAll
	case "one":
		return RepeatOne
	default:
		return RepeatOff
	}
}

// PlayerState is a snapshot of the engine.
// IsPlaying, IsBuffering and PlaybackError are derived from Status.
type PlayerState struct {
	CurrentTrack *playlist.Track
	Queue        []playlist.Track
	QueueIndex   int

	Status        Status
	IsPlaying     bool
	IsBuffering   bool
	PlaybackError string

	Progress float64 // seconds
	Duration float64 // seconds

	Volume              float64 // 0..1
	Shuffle             bool
	Repeat              RepeatMode
	Crossfade           time.Duration
	VolumeNormalization bool

	// SleepMinutes is the whole minutes left on the sleep timer, nil if unset.
	SleepMinutes *int
}
