// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"fmt"

	"github.com/llehouerou/tides/internal/player"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Queue operations
	OpQueueLoad    Op = "load queue"
	OpQueueSave    Op = "save queue"
	OpQueueRestore Op = "restore queue"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpStreamResolve Op = "resolve stream"

	// Settings and profile
	OpSettingsSave Op = "save settings"
	OpTasteRecord  Op = "record play"

	// Scrobbling
	OpScrobble   Op = "scrobble"
	OpNowPlaying Op = "update now playing"

	// Initialization
	OpInitialize Op = "initialize application"
)

// User-facing playback error messages.
const (
	MsgTrackUnavailable = "This track is unavailable"
	MsgInvalidTrack     = "This track ID is invalid"
	MsgUnplayable       = "This track can't be played here"
	MsgTrackRemoved     = "This track was removed or is private"
	MsgEmbedBlocked     = "The owner doesn't allow playback outside their site"
	MsgPlaybackFailed   = "Playback failed. Try again"
)

// Playback maps a backend error code to the message shown to the listener.
func Playback(code int) string {
	switch code {
	case player.CodeInvalidID:
		return MsgInvalidTrack
	case player.CodeUnplayable:
		return MsgUnplayable
	case player.CodeNotFound:
		return MsgTrackRemoved
	case player.CodeEmbedBlocked, player.CodeEmbedAlt:
		return MsgEmbedBlocked
	default:
		return MsgPlaybackFailed
	}
}

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
