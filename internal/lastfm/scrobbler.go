package lastfm

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tides/internal/playback"
	"github.com/llehouerou/tides/internal/playlist"
	"github.com/llehouerou/tides/internal/state"
)

const (
	maxAttempts   = 10
	pendingMaxAge = 14 * 24 * time.Hour
	retryInterval = 5 * time.Minute
	jobBuffer     = 64
)

// API is the part of Client the Scrobbler uses.
type API interface {
	UpdateNowPlaying(track ScrobbleTrack) error
	Scrobble(track ScrobbleTrack) error
}

// PendingStore keeps scrobbles that failed to submit. Implemented by
// state.Manager.
type PendingStore interface {
	AddPendingScrobble(s state.PendingScrobble) error
	GetPendingScrobbles() ([]state.PendingScrobble, error)
	DeletePendingScrobble(id int64) error
	UpdatePendingScrobbleAttempt(id int64, errMsg string) error
	DeleteOldPendingScrobbles(maxAge time.Duration) error
}

type job struct {
	nowPlaying *ScrobbleTrack
	scrobble   *ScrobbleTrack
}

// Scrobbler reports plays from the engine to Last.fm. Network calls run on
// its own goroutine so slow requests never hold up other listeners.
type Scrobbler struct {
	api     API
	pending PendingStore
	log     logrus.FieldLogger

	jobs   chan job
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.Mutex
	unsubs []func()
}

// NewScrobbler starts the submission worker. Pending scrobbles from earlier
// sessions are retried right away and then every five minutes.
func NewScrobbler(api API, pending PendingStore, log logrus.FieldLogger) *Scrobbler {
	s := &Scrobbler{
		api:     api,
		pending: pending,
		log:     log.WithField("component", "lastfm"),
		jobs:    make(chan job, jobBuffer),
		done:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Attach subscribes to svc's track plays and ends.
func (s *Scrobbler) Attach(svc playback.Service) {
	unsubs := []func(){svc.OnTrackPlay(s.HandlePlay), svc.OnTrackEnd(s.HandleEnd)}
	s.mu.Lock()
	s.unsubs = append(s.unsubs, unsubs...)
	s.mu.Unlock()
}

// HandlePlay sends "now playing" for the new track and scrobbles the one it
// replaced if enough of it was heard.
func (s *Scrobbler) HandlePlay(tp playback.TrackPlay) {
	var j job
	np := FromTrack(tp.Track, tp.At)
	j.nowPlaying = &np
	if tp.Previous != nil {
		j.scrobble = scrobbleFor(*tp.Previous, tp.PreviousElapsed, tp.At)
	}
	s.submit(j)
}

// HandleEnd scrobbles a play that finished without a successor: the last
// track of the queue, or the one playing when the app quit.
func (s *Scrobbler) HandleEnd(te playback.TrackEnd) {
	if sc := scrobbleFor(te.Track, te.Elapsed, te.At); sc != nil {
		s.submit(job{scrobble: sc})
	}
}

func scrobbleFor(t playlist.Track, elapsed time.Duration, endedAt time.Time) *ScrobbleTrack {
	if !ShouldScrobble(elapsed, time.Duration(t.Duration)*time.Second) {
		return nil
	}
	sc := FromTrack(t, endedAt.Add(-elapsed))
	return &sc
}

func (s *Scrobbler) submit(j job) {
	select {
	case s.jobs <- j:
	case <-s.done:
	default:
		// Worker is backed up: keep the scrobble for the next retry.
		if j.scrobble != nil {
			s.queue(*j.scrobble, "dropped: worker busy")
		}
	}
}

func (s *Scrobbler) run() {
	defer s.wg.Done()
	s.retry()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case j := <-s.jobs:
			s.process(j)
		case <-ticker.C:
			s.retry()
		}
	}
}

func (s *Scrobbler) process(j job) {
	if j.nowPlaying != nil {
		if err := s.api.UpdateNowPlaying(*j.nowPlaying); err != nil && !errors.Is(err, ErrNotAuthenticated) {
			s.log.WithError(err).Debug("now playing update failed")
		}
	}
	if j.scrobble == nil {
		return
	}
	err := s.api.Scrobble(*j.scrobble)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotAuthenticated):
	default:
		s.log.WithError(err).WithField("track", j.scrobble.Track).Warn("scrobble failed, queued for retry")
		s.queue(*j.scrobble, err.Error())
	}
}

func (s *Scrobbler) queue(t ScrobbleTrack, reason string) {
	err := s.pending.AddPendingScrobble(state.PendingScrobble{
		Artist:       t.Artist,
		Track:        t.Track,
		Album:        t.Album,
		DurationSecs: int(t.Duration.Seconds()),
		Timestamp:    t.Timestamp,
		LastError:    reason,
	})
	if err != nil {
		s.log.WithError(err).Warn("queueing scrobble failed")
	}
}

func (s *Scrobbler) retry() {
	succeeded, failed, err := s.RetryPending()
	if err != nil {
		s.log.WithError(err).Debug("retrying pending scrobbles failed")
		return
	}
	if succeeded+failed > 0 {
		s.log.WithFields(logrus.Fields{"succeeded": succeeded, "failed": failed}).Info("retried pending scrobbles")
	}
}

// RetryPending resubmits queued scrobbles. Entries that failed ten times are
// left alone until they age out after two weeks.
func (s *Scrobbler) RetryPending() (succeeded, failed int, err error) {
	if err := s.pending.DeleteOldPendingScrobbles(pendingMaxAge); err != nil {
		return 0, 0, err
	}
	pending, err := s.pending.GetPendingScrobbles()
	if err != nil {
		return 0, 0, err
	}

	for i := range pending {
		p := &pending[i]
		if p.Attempts >= maxAttempts {
			continue
		}
		err := s.api.Scrobble(ScrobbleTrack{
			Artist:    p.Artist,
			Track:     p.Track,
			Album:     p.Album,
			Duration:  time.Duration(p.DurationSecs) * time.Second,
			Timestamp: p.Timestamp,
		})
		if err != nil {
			failed++
			_ = s.pending.UpdatePendingScrobbleAttempt(p.ID, err.Error())
			continue
		}
		succeeded++
		_ = s.pending.DeletePendingScrobble(p.ID)
	}
	return succeeded, failed, nil
}

// Close unsubscribes from the engine and stops the worker. Scrobbles still
// buffered are stored for the next session instead of being sent.
func (s *Scrobbler) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		for _, unsub := range s.unsubs {
			unsub()
		}
		s.mu.Unlock()
		close(s.done)
		s.wg.Wait()

		for {
			select {
			case j := <-s.jobs:
				if j.scrobble != nil {
					s.queue(*j.scrobble, "not sent before exit")
				}
			default:
				return
			}
		}
	})
}
