package playback

import (
	"maps"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tides/internal/state"
)

// writeBehind is a state.BatchStore that buffers writes and flushes them
// after a quiet period. Flush failures are logged and dropped; the engine's
// in-memory state stays authoritative.
type writeBehind struct {
	flushMu sync.Mutex // keeps batches in write order
	mu      sync.Mutex
	store   state.Store
	delay   time.Duration
	pending map[string]string
	timer   *time.Timer
	log     logrus.FieldLogger
}

var _ state.BatchStore = (*writeBehind)(nil)

func newWriteBehind(store state.Store, delay time.Duration, log logrus.FieldLogger) *writeBehind {
	return &writeBehind{
		store:   store,
		delay:   delay,
		pending: make(map[string]string),
		log:     log,
	}
}

// Get returns a buffered value if one is pending, else reads through.
func (w *writeBehind) Get(key string) (string, bool, error) {
	w.mu.Lock()
	v, ok := w.pending[key]
	w.mu.Unlock()
	if ok {
		return v, true, nil
	}
	return w.store.Get(key)
}

func (w *writeBehind) Set(key, value string) error {
	return w.SetMany(map[string]string{key: value})
}

func (w *writeBehind) SetMany(values map[string]string) error {
	w.mu.Lock()
	maps.Copy(w.pending, values)
	if w.delay <= 0 {
		w.mu.Unlock()
		w.Flush()
		return nil
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.Flush)
	w.mu.Unlock()
	return nil
}

// Flush writes everything pending now.
func (w *writeBehind) Flush() {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	values := w.pending
	w.pending = make(map[string]string)
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	var err error
	if b, ok := w.store.(state.BatchStore); ok {
		err = b.SetMany(values)
	} else {
		for k, v := range values {
			if err = w.store.Set(k, v); err != nil {
				break
			}
		}
	}
	if err != nil {
		w.log.WithError(err).WithField("keys", len(values)).Warn("persisting player state failed")
	}
}

// discardStore is used when no store is configured.
type discardStore struct{}

func (discardStore) Get(string) (string, bool, error) { return "", false, nil }
func (discardStore) Set(string, string) error         { return nil }
