package player

import (
	"math"
	"time"

	"github.com/gopxl/beep/v2"
)

const (
	// normalizeWindow is how much of a stream is measured for loudness.
	normalizeWindow = 20 * time.Second
	targetRMS       = 0.2
	minGain         = 0.25
	maxGain         = 4
)

// envelope ramps a stream's gain up over its first fadeIn samples and down
// over its last fadeOut samples. onFadeOut runs once, on the speaker
// goroutine, when playback enters the fade-out window.
type envelope struct {
	s         beep.StreamSeeker
	fadeIn    int
	fadeOut   int
	onFadeOut func()
	fired     bool
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	pos := e.s.Position()
	n, ok := e.s.Stream(samples)
	total := e.s.Len()
	for i := range samples[:n] {
		g := e.gain(pos+i, total)
		samples[i][0] *= g
		samples[i][1] *= g
	}
	if e.fadeOut > 0 && !e.fired && pos+n >= total-e.fadeOut {
		e.fired = true
		if e.onFadeOut != nil {
			e.onFadeOut()
		}
	}
	return n, ok
}

func (e *envelope) gain(pos, total int) float64 {
	g := 1.0
	if e.fadeIn > 0 && pos < e.fadeIn {
		g = float64(pos) / float64(e.fadeIn)
	}
	if e.fadeOut > 0 {
		if left := total - pos; left < e.fadeOut {
			g = math.Min(g, float64(max(left, 0))/float64(e.fadeOut))
		}
	}
	return g
}

func (e *envelope) Err() error    { return e.s.Err() }
func (e *envelope) Len() int      { return e.s.Len() }
func (e *envelope) Position() int { return e.s.Position() }

// Seek moves the play head. Seeking back before the fade-out window arms
// onFadeOut again.
func (e *envelope) Seek(p int) error {
	if err := e.s.Seek(p); err != nil {
		return err
	}
	if p < e.s.Len()-e.fadeOut {
		e.fired = false
	}
	return nil
}

// loudnessGain measures the RMS level of the start of s and returns the
// factor that brings it to targetRMS. s is rewound afterwards.
func loudnessGain(s beep.StreamSeeker, rate beep.SampleRate) float64 {
	limit := rate.N(normalizeWindow)
	buf := make([][2]float64, 4096)
	var sum float64
	count := 0
	for count < limit {
		n, ok := s.Stream(buf[:min(len(buf), limit-count)])
		for _, smp := range buf[:n] {
			sum += smp[0]*smp[0] + smp[1]*smp[1]
		}
		count += n
		if !ok {
			break
		}
	}
	_ = s.Seek(0)
	if count == 0 || sum == 0 {
		return 1
	}
	rms := math.Sqrt(sum / float64(2*count))
	return math.Max(minGain, math.Min(maxGain, targetRMS/rms))
}
