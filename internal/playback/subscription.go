package playback

import "sync"

// eventBufferSize is the per-channel backlog kept for a slow subscriber.
// Older events stay queued and newer ones are dropped once it fills.
const eventBufferSize = 16

// Subscription receives engine events on buffered channels. Sends never
// block the engine; a subscriber that falls behind misses events and should
// re-read State() when it catches up. Done is closed by Service.Close.
type Subscription struct {
	StateChanged    <-chan StateChange
	TrackChanged    <-chan TrackChange
	PositionChanged <-chan PositionChange
	QueueChanged    <-chan QueueChange
	ModeChanged     <-chan ModeChange
	Error           <-chan ErrorEvent
	Done            <-chan struct{}

	feeds feeds
	once  sync.Once
}

// feeds are the sending ends of the Subscription channels.
type feeds struct {
	state    chan StateChange
	track    chan TrackChange
	position chan PositionChange
	queue    chan QueueChange
	mode     chan ModeChange
	err      chan ErrorEvent
	done     chan struct{}
}

func newSubscription() *Subscription {
	f := feeds{
		state:    make(chan StateChange, eventBufferSize),
		track:    make(chan TrackChange, eventBufferSize),
		position: make(chan PositionChange, eventBufferSize),
		queue:    make(chan QueueChange, eventBufferSize),
		mode:     make(chan ModeChange, eventBufferSize),
		err:      make(chan ErrorEvent, eventBufferSize),
		done:     make(chan struct{}),
	}
	return &Subscription{
		StateChanged:    f.state,
		TrackChanged:    f.track,
		PositionChanged: f.position,
		QueueChanged:    f.queue,
		ModeChanged:     f.mode,
		Error:           f.err,
		Done:            f.done,
		feeds:           f,
	}
}

// offer sends v unless ch is full.
func offer[T any](ch chan<- T, v T) {
	select {
	case ch <- v:
	default:
	}
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.feeds.done) })
}
