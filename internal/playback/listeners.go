package playback

import (
	"sync"
	"time"

	"github.com/llehouerou/tides/internal/playlist"
)

// TrackPlay is delivered to OnTrackPlay listeners when a track becomes current.
type TrackPlay struct {
	Track playlist.Track
	At    time.Time

	// Previous is the earlier play this one replaced, if it was still
	// open, and how far into it playback had reached.
	Previous        *playlist.Track
	PreviousElapsed time.Duration
}

// TrackEnd is delivered to OnTrackEnd listeners when a play finishes with
// no track taking its place: the queue ran out, the queue was swapped for
// one without a current entry, or the engine closed.
type TrackEnd struct {
	Track   playlist.Track
	At      time.Time
	Elapsed time.Duration
}

// listeners delivers notifications in order on one goroutine. Callbacks
// may call back into the engine and may unsubscribe themselves or others
// while running.
type listeners[T any] struct {
	mu      sync.Mutex
	nextID  int
	entries map[int]func(T)
	order   []int
	pending []T
	wake    chan struct{}
}

func newListeners[T any]() *listeners[T] {
	return &listeners[T]{
		entries: make(map[int]func(T)),
		wake:    make(chan struct{}, 1),
	}
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.entries[id] = fn
	l.order = append(l.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *listeners[T]) remove(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, id)
	for i, v := range l.order {
		if v == id {
			l.order = append(l.order[:i:i], l.order[i+1:]...)
			break
		}
	}
}

// enqueue schedules v for delivery; it never blocks.
func (l *listeners[T]) enqueue(v T) {
	l.mu.Lock()
	l.pending = append(l.pending, v)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// run delivers notifications until done is closed. Notifications enqueued
// before done closed are still delivered.
func (l *listeners[T]) run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			l.drain()
			return
		case <-l.wake:
			l.drain()
		}
	}
}

func (l *listeners[T]) drain() {
	for {
		l.mu.Lock()
		if len(l.pending) == 0 {
			l.mu.Unlock()
			return
		}
		v := l.pending[0]
		l.pending = l.pending[1:]
		ids := append([]int(nil), l.order...)
		l.mu.Unlock()

		for _, id := range ids {
			l.mu.Lock()
			fn, ok := l.entries[id]
			l.mu.Unlock()
			if ok {
				fn(v)
			}
		}
	}
}
