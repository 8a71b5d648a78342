//go:build (linux && cgo) || windows || darwin

package player

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

const (
	deviceEventBuffer = 64
	maxStreamBytes    = 64 << 20
)

// Device plays mp3 streams on the local sound card.
// A stream is fetched into memory before playback so it stays seekable.
type Device struct {
	mu sync.Mutex

	client      *http.Client
	sampleRate  beep.SampleRate
	initialized bool

	streamer beep.StreamSeekCloser
	format   beep.Format
	env      *envelope
	ctrl     *beep.Ctrl
	gain     *effects.Gain
	volume   *effects.Volume
	level    float64
	paused   bool // requested before or after the stream is ready
	drained  bool

	crossfade time.Duration
	fading    bool // the current stream entered its crossfade tail
	fadeIn    bool // the next stream overlaps the previous one's tail
	normalize bool
	loudness  float64 // gain that levels the current stream

	seq    uint64
	cancel context.CancelFunc

	events chan Event
	done   chan struct{}
	closed bool
}

// NewDevice creates a local playback device. A nil client uses http.DefaultClient.
func NewDevice(client *http.Client) (*Device, error) {
	if client == nil {
		client = http.DefaultClient
	}
	return &Device{
		client:     client,
		sampleRate: beep.SampleRate(44100),
		level:      1,
		events:     make(chan Event, deviceEventBuffer),
		done:       make(chan struct{}),
	}, nil
}

// Events returns the transport notification stream.
func (d *Device) Events() <-chan Event { return d.events }

// Load stops the current stream and starts fetching req in the background.
func (d *Device) Load(req LoadRequest) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.fadeIn = d.crossfade > 0 && d.fading && d.streamer != nil
	if d.fadeIn {
		// the outgoing stream fades out on its own; the speaker drops it
		// when it ends
		d.detachLocked()
	} else {
		d.stopLocked()
	}
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.seq = req.Seq
	d.paused = false
	d.mu.Unlock()

	// Load may be called by a consumer holding its own lock; never block here.
	d.tryEmit(Event{Seq: req.Seq, State: Buffering})
	go d.load(ctx, req)
}

func (d *Device) load(ctx context.Context, req LoadRequest) {
	data, code, err := d.fetch(ctx, req)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		d.emit(Event{Seq: req.Seq, State: Error, Code: code})
		return
	}

	streamer, format, err := mp3.Decode(nopCloser{bytes.NewReader(data)})
	if err != nil {
		d.emit(Event{Seq: req.Seq, State: Error, Code: CodeUnplayable})
		return
	}
	loudness := loudnessGain(streamer, format.SampleRate)

	d.mu.Lock()
	if d.closed || d.seq != req.Seq {
		d.mu.Unlock()
		streamer.Close()
		return
	}
	if err := d.initSpeakerLocked(); err != nil {
		d.mu.Unlock()
		streamer.Close()
		d.emit(Event{Seq: req.Seq, State: Error, Code: CodeUnplayable})
		return
	}

	d.streamer = streamer
	d.format = format
	d.loudness = loudness
	seq := req.Seq
	paused := d.paused
	d.startLocked()
	d.mu.Unlock()

	if paused {
		d.emit(Event{Seq: seq, State: Paused})
		return
	}
	d.emit(Event{Seq: seq, State: Playing})
}

// startLocked builds the resample/volume chain over the loaded stream and
// hands it to the speaker (must be called with lock held).
func (d *Device) startLocked() {
	seq := d.seq
	fade := d.format.SampleRate.N(d.crossfade)
	d.env = &envelope{
		s:       d.streamer,
		fadeOut: fade,
		// Runs on the speaker goroutine; hand off so it never waits on d.mu.
		onFadeOut: func() { go d.fadeStarted(seq) },
	}
	if d.fadeIn {
		d.env.fadeIn = fade
		d.fadeIn = false
	}
	d.ctrl = &beep.Ctrl{
		Streamer: beep.Resample(4, d.format.SampleRate, d.sampleRate, d.env),
		Paused:   d.paused,
	}
	d.gain = &effects.Gain{Streamer: d.ctrl, Gain: d.gainLocked()}
	d.volume = &effects.Volume{
		Streamer: d.gain,
		Base:     2,
		Volume:   levelToVolume(d.level),
		Silent:   d.level <= 0,
	}
	d.drained = false
	d.fading = false
	speaker.Play(beep.Seq(d.volume, beep.Callback(func() {
		go d.finished(seq)
	})))
}

// gainLocked is the effects.Gain offset for the current stream.
func (d *Device) gainLocked() float64 {
	if !d.normalize || d.loudness == 0 {
		return 0
	}
	return d.loudness - 1
}

// fadeStarted reports the end of a track as soon as its crossfade tail
// begins, so the next track is loaded in time to overlap it.
func (d *Device) fadeStarted(seq uint64) {
	d.mu.Lock()
	if d.seq != seq || d.crossfade <= 0 {
		d.mu.Unlock()
		return
	}
	d.fading = true
	d.mu.Unlock()
	d.emit(Event{Seq: seq, State: Ended})
}

// SetCrossfade sets how long consecutive tracks overlap. Zero disables it.
func (d *Device) SetCrossfade(dur time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.crossfade = max(dur, 0)
	if d.env == nil {
		return
	}
	speaker.Lock()
	d.env.fadeOut = d.format.SampleRate.N(d.crossfade)
	speaker.Unlock()
}

// SetNormalization toggles loudness leveling, including for the stream
// already playing.
func (d *Device) SetNormalization(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.normalize = enabled
	if d.gain == nil {
		return
	}
	speaker.Lock()
	d.gain.Gain = d.gainLocked()
	speaker.Unlock()
}

func (d *Device) finished(seq uint64) {
	d.mu.Lock()
	if d.seq == seq {
		d.drained = true
	}
	d.mu.Unlock()
	d.emit(Event{Seq: seq, State: Ended})
}

// fetch reads the whole stream. The returned code is meaningful only with an error.
func (d *Device) fetch(ctx context.Context, req LoadRequest) ([]byte, int, error) {
	src := req.URL
	if src == "" {
		return nil, CodeInvalidID, fmt.Errorf("no stream url for %q", req.TrackID)
	}

	if path, ok := strings.CutPrefix(src, "file://"); ok || filepath.IsAbs(src) {
		if !ok {
			path = src
		}
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, CodeNotFound, err
		}
		if err != nil {
			return nil, CodeUnplayable, err
		}
		return data, 0, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, CodeInvalidID, err
	}
	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, CodeUnplayable, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, CodeNotFound, fmt.Errorf("stream %s: %s", req.TrackID, resp.Status)
	case resp.StatusCode == http.StatusForbidden:
		return nil, CodeEmbedBlocked, fmt.Errorf("stream %s: %s", req.TrackID, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, CodeUnplayable, fmt.Errorf("stream %s: %s", req.TrackID, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxStreamBytes))
	if err != nil {
		return nil, CodeUnplayable, err
	}
	return data, 0, nil
}

// initSpeakerLocked initializes the speaker once (must be called with lock held).
func (d *Device) initSpeakerLocked() error {
	if d.initialized {
		return nil
	}
	if err := speaker.Init(d.sampleRate, d.sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	d.initialized = true
	return nil
}

// Play resumes the loaded stream. A stream that already played to the end
// starts again from the current play head.
func (d *Device) Play() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = false
	if d.ctrl == nil {
		return
	}
	speaker.Lock()
	d.ctrl.Paused = false
	speaker.Unlock()
	if d.drained {
		d.startLocked()
	}
	d.tryEmit(Event{Seq: d.seq, State: Playing})
}

// Pause pauses the loaded stream.
func (d *Device) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = true
	if d.ctrl == nil {
		return
	}
	speaker.Lock()
	d.ctrl.Paused = true
	speaker.Unlock()
	d.tryEmit(Event{Seq: d.seq, State: Paused})
}

// SeekTo moves the play head; positions past the end are clamped.
func (d *Device) SeekTo(seconds float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.streamer == nil {
		return
	}
	speaker.Lock()
	defer speaker.Unlock()
	n := d.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	n = max(0, min(n, d.streamer.Len()-1))
	if d.env != nil {
		_ = d.env.Seek(n)
		if !d.env.fired {
			d.fading = false
		}
		return
	}
	_ = d.streamer.Seek(n)
}

// SetVolume sets the output volume from a 0-100 percentage.
func (d *Device) SetVolume(percent int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.level = percentToLevel(percent)
	if d.volume == nil {
		return
	}
	speaker.Lock()
	d.volume.Volume = levelToVolume(d.level)
	d.volume.Silent = d.level <= 0
	speaker.Unlock()
}

// Progress returns the play head position in seconds.
func (d *Device) Progress() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := d.streamer.Position()
	speaker.Unlock()
	return d.format.SampleRate.D(pos).Seconds()
}

// Duration returns the loaded stream length in seconds.
func (d *Device) Duration() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.streamer == nil {
		return 0
	}
	return d.format.SampleRate.D(d.streamer.Len()).Seconds()
}

// Close stops playback and releases the stream.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if d.cancel != nil {
		d.cancel()
	}
	d.stopLocked()
	close(d.done)
	return nil
}

// stopLocked stops playback (must be called with lock held).
func (d *Device) stopLocked() {
	if d.initialized {
		speaker.Clear()
	}
	if d.streamer != nil {
		d.streamer.Close()
	}
	d.detachLocked()
}

// detachLocked forgets the current chain without stopping it.
func (d *Device) detachLocked() {
	d.streamer = nil
	d.env = nil
	d.ctrl = nil
	d.gain = nil
	d.volume = nil
	d.fading = false
}

// emit delivers e unless the device is closed.
func (d *Device) emit(e Event) {
	select {
	case d.events <- e:
	case <-d.done:
	}
}

// tryEmit delivers e only if there is room; used from transport calls that
// may run while the consumer is busy.
func (d *Device) tryEmit(e Event) {
	select {
	case d.events <- e:
	default:
	}
}

// nopCloser wraps a bytes.Reader to implement io.ReadCloser.
type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }

// Verify Device implements the backend interfaces at compile time.
var (
	_ Interface  = (*Device)(nil)
	_ Crossfader = (*Device)(nil)
	_ Normalizer = (*Device)(nil)
)
