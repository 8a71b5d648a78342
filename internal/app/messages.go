// Package app contains the terminal UI model.
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/tides/internal/playback"
)

// PlaybackMessage is implemented by messages coming from the playback engine.
// External messages (from other packages) cannot implement it, so they are
// handled separately in the Update() switch.
type PlaybackMessage interface {
	tea.Msg
	playbackMessage()
}

// TickMsg is sent periodically to refresh the clock-driven parts of the view.
type TickMsg time.Time

func (TickMsg) playbackMessage() {}

// ServiceStateChangedMsg is sent when the playback status changes.
type ServiceStateChangedMsg playback.StateChange

func (ServiceStateChangedMsg) playbackMessage() {}

// ServiceTrackChangedMsg is sent when a new track becomes current.
type ServiceTrackChangedMsg playback.TrackChange

func (ServiceTrackChangedMsg) playbackMessage() {}

// ServiceQueueChangedMsg is sent when the queue contents or cursor change.
type ServiceQueueChangedMsg struct{}

func (ServiceQueueChangedMsg) playbackMessage() {}

// ServiceModeChangedMsg is sent when shuffle or repeat changes.
type ServiceModeChangedMsg struct{}

func (ServiceModeChangedMsg) playbackMessage() {}

// ServicePositionChangedMsg is sent when progress or duration moves.
type ServicePositionChangedMsg struct{}

func (ServicePositionChangedMsg) playbackMessage() {}

// ServiceErrorMsg is sent when a track fails to play.
type ServiceErrorMsg playback.ErrorEvent

func (ServiceErrorMsg) playbackMessage() {}

// ServiceClosedMsg is sent when the playback service is closed.
type ServiceClosedMsg struct{}

func (ServiceClosedMsg) playbackMessage() {}
