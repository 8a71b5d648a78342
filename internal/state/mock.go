// internal/state/mock.go
package state

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// ErrMockWrite is returned by Mock writes when failures are enabled.
var ErrMockWrite = errors.New("mock: write failed")

// Mock is an in-memory test double for Manager.
type Mock struct {
	mu        sync.Mutex
	values    map[string]string
	plays     []PlayRecord
	scrobbles []PendingScrobble
	nextID    int64
	failWrite bool
	writes    int
	closed    bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{values: make(map[string]string)}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)

// FailWrites makes subsequent writes return ErrMockWrite.
func (m *Mock) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite = fail
}

// Writes returns how many successful Set calls were made (SetMany counts each key).
func (m *Mock) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Value returns the raw stored value for key.
func (m *Mock) Value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Mock) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Mock) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return ErrMockWrite
	}
	m.values[key] = value
	m.writes++
	return nil
}

func (m *Mock) SetMany(values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return ErrMockWrite
	}
	for k, v := range values {
		m.values[k] = v
		m.writes++
	}
	return nil
}

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) RecordPlay(p PlayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return ErrMockWrite
	}
	m.nextID++
	p.ID = m.nextID
	m.plays = append(m.plays, p)
	return nil
}

func (m *Mock) RecentPlays(limit int) ([]PlayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PlayRecord, 0, limit)
	for i := len(m.plays) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.plays[i])
	}
	return out, nil
}

func (m *Mock) AddPendingScrobble(s PendingScrobble) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return ErrMockWrite
	}
	m.nextID++
	s.ID = m.nextID
	s.CreatedAt = time.Now()
	m.scrobbles = append(m.scrobbles, s)
	return nil
}

func (m *Mock) GetPendingScrobbles() ([]PendingScrobble, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PendingScrobble(nil), m.scrobbles...), nil
}

func (m *Mock) DeletePendingScrobble(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.scrobbles {
		if s.ID == id {
			m.scrobbles = append(m.scrobbles[:i], m.scrobbles[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Mock) UpdatePendingScrobbleAttempt(id int64, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.scrobbles {
		if m.scrobbles[i].ID == id {
			m.scrobbles[i].Attempts++
			m.scrobbles[i].LastError = errMsg
		}
	}
	return nil
}

func (m *Mock) DeleteOldPendingScrobbles(maxAge time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	kept := m.scrobbles[:0]
	for _, s := range m.scrobbles {
		if !s.CreatedAt.Before(cutoff) {
			kept = append(kept, s)
		}
	}
	m.scrobbles = kept
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
