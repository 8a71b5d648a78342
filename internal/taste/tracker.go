package taste

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tides/internal/playback"
	"github.com/llehouerou/tides/internal/playlist"
	"github.com/llehouerou/tides/internal/state"
)

// HistoryRecorder stores individual plays. Implemented by state.Manager.
type HistoryRecorder interface {
	RecordPlay(p state.PlayRecord) error
}

// Tracker feeds finished plays from the engine into a Scorer and the
// play history.
type Tracker struct {
	scorer  *Scorer
	history HistoryRecorder
	log     logrus.FieldLogger
	unsubs  []func()
}

// Track subscribes to svc. history may be nil.
func Track(svc playback.Service, scorer *Scorer, history HistoryRecorder, log logrus.FieldLogger) *Tracker {
	t := &Tracker{scorer: scorer, history: history, log: log.WithField("component", "taste")}
	t.unsubs = []func(){svc.OnTrackPlay(t.handlePlay), svc.OnTrackEnd(t.handleEnd)}
	return t
}

// handlePlay records the play that was replaced; the new one is recorded
// when it is replaced or ends in turn.
func (t *Tracker) handlePlay(tp playback.TrackPlay) {
	if tp.Previous == nil {
		return
	}
	t.record(*tp.Previous, tp.PreviousElapsed, tp.At)
}

func (t *Tracker) handleEnd(te playback.TrackEnd) {
	t.record(te.Track, te.Elapsed, te.At)
}

func (t *Tracker) record(track playlist.Track, elapsed time.Duration, endedAt time.Time) {
	skipped := t.scorer.RecordPlay(track, elapsed)
	if t.history == nil {
		return
	}
	err := t.history.RecordPlay(state.PlayRecord{
		TrackID:        track.ID,
		Name:           track.Name,
		ArtistName:     track.ArtistName,
		ArtistID:       track.ArtistID,
		PlayedAt:       endedAt.Add(-elapsed),
		DurationPlayed: elapsed,
		Skipped:        skipped,
	})
	if err != nil {
		t.log.WithError(err).Debug("recording play history failed")
	}
}

// Stop unsubscribes from the engine.
func (t *Tracker) Stop() {
	for _, unsub := range t.unsubs {
		unsub()
	}
}
