package state

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	dbutil "github.com/llehouerou/tides/internal/db"
)

const (
	appName    = "tides"
	dbFileName = "tides.db"
)

// Manager persists player state in a SQLite database.
type Manager struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path.
// An empty path uses $XDG_DATA_HOME/tides/tides.db.
func Open(path string) (*Manager, error) {
	if path == "" {
		p, err := DefaultDBPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

// DefaultDBPath returns the XDG data location of the database.
func DefaultDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

func (m *Manager) Close() error {
	return m.db.Close()
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

// Get returns the value stored under key. ok is false if the key is absent.
func (m *Manager) Get(key string) (string, bool, error) {
	var value string
	err := m.db.QueryRow(`SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (m *Manager) Set(key, value string) error {
	return setValue(m.db, key, value)
}

// SetMany stores all values in one transaction.
func (m *Manager) SetMany(values map[string]string) error {
	return dbutil.WithTx(context.Background(), m.db, func(tx *sql.Tx) error {
		for k, v := range values {
			if err := setValue(tx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func setValue(e execer, key, value string) error {
	_, err := e.Exec(`
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().Unix())
	return err
}
