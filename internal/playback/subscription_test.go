package playback

import (
	"testing"
	"testing/synctest"

	"github.com/llehouerou/tides/internal/playlist"
)

func TestNewSubscription_ChannelsReadable(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sub := newSubscription()

		offer(sub.feeds.state, StateChange{Previous: idle(), Current: Status{Kind: StatusPlaying}})
		offer(sub.feeds.track, TrackChange{Index: 1})
		offer(sub.feeds.position, PositionChange{Progress: 30, Duration: 200})
		offer(sub.feeds.queue, QueueChange{Index: 2, Tracks: []playlist.Track{{ID: "q"}}})
		offer(sub.feeds.mode, ModeChange{Repeat: RepeatAll, Shuffle: true})
		offer(sub.feeds.err, ErrorEvent{TrackID: "x", Message: "nope"})

		e := <-sub.StateChanged
		if e.Current.Kind != StatusPlaying {
			t.Errorf("StateChanged.Current = %v, want Playing", e.Current.Kind)
		}

		tr := <-sub.TrackChanged
		if tr.Index != 1 {
			t.Errorf("TrackChanged.Index = %d, want 1", tr.Index)
		}

		pos := <-sub.PositionChanged
		if pos.Progress != 30 || pos.Duration != 200 {
			t.Errorf("PositionChanged = %+v, want 30/200", pos)
		}

		q := <-sub.QueueChanged
		if q.Index != 2 || len(q.Tracks) != 1 || q.Tracks[0].ID != "q" {
			t.Errorf("QueueChanged = %+v", q)
		}

		m := <-sub.ModeChanged
		if m.Repeat != RepeatAll || !m.Shuffle {
			t.Errorf("ModeChanged = %+v", m)
		}

		er := <-sub.Error
		if er.Message != "nope" {
			t.Errorf("Error.Message = %q, want nope", er.Message)
		}
	})
}

func TestSubscription_Close_SignalsDoneOnce(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		sub := newSubscription()
		sub.close()
		sub.close()
		<-sub.Done
	})
}

func TestSubscription_NonBlocking_DropsWhenFull(t *testing.T) {
	sub := newSubscription()

	for range eventBufferSize + 5 {
		offer(sub.feeds.state, StateChange{})
	}

	count := 0
	for len(sub.StateChanged) > 0 {
		<-sub.StateChanged
		count++
	}
	if count != eventBufferSize {
		t.Errorf("received %d events, want %d (buffer size)", count, eventBufferSize)
	}
}
