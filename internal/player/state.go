// internal/player/state.go
package player

// State is the transport state reported by a playback backend.
//
// Backends that speak the embedded-player protocol report numeric codes;
// StateFromCode maps them:
//
//	-1 unstarted   0 ended   1 playing   2 paused   3 buffering   5 cued
//
// Error has no protocol code; it is raised through the error callback
// and travels as an Event with a non-zero Code.
type State int

const (
	Unstarted State = iota
	Cued
	Playing
	Paused
	Buffering
	Ended
	Error
)

// StateFromCode converts an embedded-player state code.
// Unknown codes map to Unstarted.
func StateFromCode(code int) State {
	switch code {
	case 0:
		return Ended
	case 1:
		return Playing
	case 2:
		return Paused
	case 3:
		return Buffering
	case 5:
		return Cued
	default:
		return Unstarted
	}
}

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Unstarted:
		return "Unstarted"
	case Cued:
		return "Cued"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Buffering:
		return "Buffering"
	case Ended:
		return "Ended"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a stream is loaded and not finished.
func (s State) IsActive() bool {
	return s == Playing || s == Paused || s == Buffering
}
