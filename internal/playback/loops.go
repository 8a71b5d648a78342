package playback

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tides/internal/errmsg"
	"github.com/llehouerou/tides/internal/player"
)

// runEvents applies backend notifications until the service closes.
func (s *serviceImpl) runEvents() {
	events := s.player.Events()
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.handleEvent(ev)
		}
	}
}

// handleEvent mirrors a backend state into the status. Events for a load
// other than the current one are dropped, so late or repeated events never
// move the cursor.
func (s *serviceImpl) handleEvent(ev player.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	cur := s.queue.Current()
	if cur == nil || ev.Seq != s.seq {
		s.log.WithFields(logrus.Fields{
			"event": ev.State.String(),
			"seq":   ev.Seq,
		}).Debug("ignoring stale player event")
		return
	}

	switch ev.State {
	case player.Playing:
		s.setStatusLocked(Status{Kind: StatusPlaying})
	case player.Paused:
		s.setStatusLocked(Status{Kind: StatusPaused})
	case player.Buffering:
		if s.status.Kind != StatusPaused {
			s.setStatusLocked(Status{Kind: StatusBuffering})
		}
	case player.Ended:
		if s.endedSeq == ev.Seq {
			return
		}
		s.endedSeq = ev.Seq
		s.advanceLocked(true)
	case player.Error:
		s.failLocked("play", cur.ID, errmsg.Playback(ev.Code), nil)
	}
}

// runPoller samples progress and duration at a fixed rate.
func (s *serviceImpl) runPoller() {
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.poll()
		}
	}
}

// poll updates progress and duration only when they moved past their
// thresholds, so subscribers are not flooded with identical positions.
func (s *serviceImpl) poll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.queue.Current() == nil {
		return
	}
	progress := s.player.Progress()
	duration := s.player.Duration()

	changed := false
	if math.Abs(progress-s.progress) > s.opts.ProgressThreshold {
		s.progress = progress
		changed = true
	}
	if math.Abs(duration-s.duration) > s.opts.DurationThreshold {
		s.duration = duration
		changed = true
	}
	if changed {
		s.publishPositionLocked()
	}
}

// runSleepTimer checks the sleep deadline at a coarse interval.
func (s *serviceImpl) runSleepTimer() {
	ticker := time.NewTicker(s.opts.SleepCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			s.checkSleep(now)
		}
	}
}

func (s *serviceImpl) checkSleep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.sleepDeadline.IsZero() {
		return
	}
	remaining := s.sleepDeadline.Sub(now)
	if remaining > 0 {
		s.sleepMinutes = int(math.Ceil(remaining.Minutes()))
		return
	}
	s.sleepDeadline = time.Time{}
	s.sleepMinutes = 0
	s.log.Info("sleep timer expired, pausing")
	s.pauseLocked()
}
