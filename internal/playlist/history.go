package playlist

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is a snapshot of a queue that was replaced by a new one.
type HistoryEntry struct {
	ID        string
	Tracks    []Track
	Index     int
	Timestamp time.Time
}

// QueueHistory keeps the most recent replaced queues, newest last.
type QueueHistory struct {
	entries []HistoryEntry
	maxSize int
}

// NewQueueHistory creates a new history with the given maximum size.
func NewQueueHistory(maxSize int) *QueueHistory {
	return &QueueHistory{
		entries: make([]HistoryEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Push saves a snapshot of the track list and cursor.
// The oldest snapshot is dropped once the history is full.
func (h *QueueHistory) Push(tracks []Track, index int, at time.Time) HistoryEntry {
	snapshot := make([]Track, len(tracks))
	copy(snapshot, tracks)

	e := HistoryEntry{
		ID:        uuid.NewString(),
		Tracks:    snapshot,
		Index:     index,
		Timestamp: at,
	}
	h.entries = append(h.entries, e)

	if len(h.entries) > h.maxSize {
		excess := len(h.entries) - h.maxSize
		h.entries = h.entries[excess:]
	}
	return e
}

// Entries returns copies of all snapshots, newest first.
func (h *QueueHistory) Entries() []HistoryEntry {
	result := make([]HistoryEntry, 0, len(h.entries))
	for i := len(h.entries) - 1; i >= 0; i-- {
		e := h.entries[i]
		tracks := make([]Track, len(e.Tracks))
		copy(tracks, e.Tracks)
		e.Tracks = tracks
		result = append(result, e)
	}
	return result
}

// Take removes the snapshot with the given ID and returns it.
func (h *QueueHistory) Take(id string) (HistoryEntry, bool) {
	for i, e := range h.entries {
		if e.ID == id {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return e, true
		}
	}
	return HistoryEntry{}, false
}

// Len returns the number of stored snapshots.
func (h *QueueHistory) Len() int {
	return len(h.entries)
}
