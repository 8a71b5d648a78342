// internal/player/mock.go
package player

import (
	"sync"
	"time"
)

const mockEventBuffer = 64

// Mock is a test double for a playback backend.
type Mock struct {
	mu            sync.Mutex
	progress      float64
	duration      float64
	loads         []LoadRequest
	playCalls     int
	pauseCalls    int
	seekCalls     []float64
	volumeCalls   []int
	crossfade     time.Duration
	normalization bool
	events        chan Event
	closed        bool
}

// NewMock creates a new mock backend for testing.
func NewMock() *Mock {
	return &Mock{
		events: make(chan Event, mockEventBuffer),
	}
}

func (m *Mock) Load(req LoadRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads = append(m.loads, req)
	m.progress = 0
}

func (m *Mock) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
}

func (m *Mock) SeekTo(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, seconds)
	m.progress = seconds
}

func (m *Mock) SetVolume(percent int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volumeCalls = append(m.volumeCalls, percent)
}

func (m *Mock) Progress() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

func (m *Mock) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Events() <-chan Event { return m.events }

func (m *Mock) SetCrossfade(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.crossfade = d
}

func (m *Mock) SetNormalization(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.normalization = enabled
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

// Emit delivers an event as if the backend reported it.
func (m *Mock) Emit(e Event) { m.events <- e }

// EmitForLast delivers a state for the most recent load.
func (m *Mock) EmitForLast(s State) {
	m.Emit(Event{Seq: m.LastLoad().Seq, State: s})
}

// EmitErrorForLast delivers an error code for the most recent load.
func (m *Mock) EmitErrorForLast(code int) {
	m.Emit(Event{Seq: m.LastLoad().Seq, State: Error, Code: code})
}

func (m *Mock) SetProgress(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = seconds
}

func (m *Mock) SetDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = seconds
}

func (m *Mock) Loads() []LoadRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LoadRequest, len(m.loads))
	copy(out, m.loads)
	return out
}

// LastLoad returns the most recent load, or a zero request if none.
func (m *Mock) LastLoad() LoadRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.loads) == 0 {
		return LoadRequest{}
	}
	return m.loads[len(m.loads)-1]
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) SeekCalls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.seekCalls))
	copy(out, m.seekCalls)
	return out
}

func (m *Mock) VolumeCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.volumeCalls))
	copy(out, m.volumeCalls)
	return out
}

func (m *Mock) Crossfade() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.crossfade
}

func (m *Mock) Normalization() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.normalization
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements the backend interfaces at compile time.
var (
	_ Interface  = (*Mock)(nil)
	_ Crossfader = (*Mock)(nil)
	_ Normalizer = (*Mock)(nil)
)
