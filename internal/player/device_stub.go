//go:build !((linux && cgo) || windows || darwin)

package player

import "net/http"

// AudioAvailable indicates whether audio playback is supported in this build.
// Audio requires CGO for native sound libraries.
const AudioAvailable = false

// Device is a placeholder for builds without audio output.
type Device struct {
	events chan Event
}

// NewDevice always fails when cgo is disabled.
func NewDevice(_ *http.Client) (*Device, error) {
	return nil, ErrAudioUnavailable
}

func (d *Device) Load(_ LoadRequest) {}

func (d *Device) Play() {}

func (d *Device) Pause() {}

func (d *Device) SeekTo(_ float64) {}

func (d *Device) SetVolume(_ int) {}

func (d *Device) Progress() float64 { return 0 }

func (d *Device) Duration() float64 { return 0 }

func (d *Device) Events() <-chan Event { return d.events }

func (d *Device) Close() error { return nil }

// Verify Device implements Interface at compile time.
var _ Interface = (*Device)(nil)
