package playback

import "github.com/llehouerou/tides/internal/playlist"

// StateChange is emitted when the playback status changes.
type StateChange struct {
	Previous Status
	Current  Status
}

// TrackChange is emitted when a track becomes current.
//
// Emitted by Play, Next, Previous, PlayAt, RestoreQueue and automatic
// advance at the end of a track. Not emitted by repeat-one restarts or
// RetryPlayback, which keep the same track current.
type TrackChange struct {
	Previous      *playlist.Track
	Current       *playlist.Track
	PreviousIndex int
	Index         int
}

// QueueChange is emitted when the queue contents or cursor change.
type QueueChange struct {
	Tracks []playlist.Track
	Index  int
}

// ModeChange is emitted when repeat or shuffle mode changes.
type ModeChange struct {
	Repeat  RepeatMode
	Shuffle bool
}

// PositionChange is emitted when polled progress or duration moves past
// the reporting threshold, and on seek.
type PositionChange struct {
	Progress float64
	Duration float64
}

// ErrorEvent is emitted when a track fails to play.
type ErrorEvent struct {
	Operation string // e.g., "resolve", "play"
	TrackID   string
	Message   string // user-facing
	Err       error  // nil for backend-reported errors
}
