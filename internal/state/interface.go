// internal/state/interface.go
package state

import (
	"database/sql"
	"time"
)

// Store is a durable string key-value store.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// BatchStore can write several keys atomically.
type BatchStore interface {
	Store
	SetMany(values map[string]string) error
}

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	BatchStore
	DB() *sql.DB
	RecordPlay(p PlayRecord) error
	RecentPlays(limit int) ([]PlayRecord, error)
	AddPendingScrobble(s PendingScrobble) error
	GetPendingScrobbles() ([]PendingScrobble, error)
	DeletePendingScrobble(id int64) error
	UpdatePendingScrobbleAttempt(id int64, errMsg string) error
	DeleteOldPendingScrobbles(maxAge time.Duration) error
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
