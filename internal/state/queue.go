package state

import (
	"encoding/json"
	"strconv"

	"github.com/llehouerou/tides/internal/playlist"
)

// MaxPersistedQueue is the number of queue entries kept on save.
// The first entries win; the tail is dropped.
const MaxPersistedQueue = 200

// QueueState is the persisted part of the play queue.
type QueueState struct {
	Tracks  []playlist.Track
	Index   int
	Current *playlist.Track
}

// EmptyQueue is the state used when nothing (or nothing valid) is stored.
func EmptyQueue() QueueState {
	return QueueState{Tracks: []playlist.Track{}, Index: -1}
}

// QueueValues serializes q into the values to store, keyed by Key* constants.
func QueueValues(q QueueState) (map[string]string, error) {
	tracks := q.Tracks
	if len(tracks) > MaxPersistedQueue {
		tracks = tracks[:MaxPersistedQueue]
	}
	if tracks == nil {
		tracks = []playlist.Track{}
	}
	queueJSON, err := json.Marshal(tracks)
	if err != nil {
		return nil, err
	}
	currentJSON, err := json.Marshal(q.Current)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		KeyQueue:        string(queueJSON),
		KeyQueueIndex:   strconv.Itoa(q.Index),
		KeyCurrentTrack: string(currentJSON),
	}, nil
}

// SaveQueue writes q to s. Queues longer than MaxPersistedQueue are truncated.
func SaveQueue(s Store, q QueueState) error {
	values, err := QueueValues(q)
	if err != nil {
		return err
	}
	if b, ok := s.(BatchStore); ok {
		return b.SetMany(values)
	}
	for _, k := range []string{KeyQueue, KeyQueueIndex, KeyCurrentTrack} {
		if err := s.Set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// LoadQueue reads the queue from s. Missing or corrupt values yield EmptyQueue.
// An index that does not address a stored track is reset to -1.
func LoadQueue(s Store) QueueState {
	q := EmptyQueue()

	raw, ok, err := s.Get(KeyQueue)
	if err != nil || !ok {
		return q
	}
	var tracks []playlist.Track
	if err := json.Unmarshal([]byte(raw), &tracks); err != nil {
		return q
	}
	if tracks == nil {
		tracks = []playlist.Track{}
	}

	index := -1
	if raw, ok, err := s.Get(KeyQueueIndex); err == nil && ok {
		if n, err := strconv.Atoi(raw); err == nil {
			index = n
		}
	}
	if index < 0 || index >= len(tracks) {
		index = -1
	}

	var current *playlist.Track
	if raw, ok, err := s.Get(KeyCurrentTrack); err == nil && ok {
		var t *playlist.Track
		if err := json.Unmarshal([]byte(raw), &t); err == nil {
			current = t
		}
	}

	return QueueState{Tracks: tracks, Index: index, Current: current}
}
