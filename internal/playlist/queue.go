package playlist

// PlayingQueue wraps a Playlist with a playback cursor.
//
// Whenever Current() is non-nil, CurrentIndex() is a valid index and the
// track there is the current one. Every mutation below keeps that true.
type PlayingQueue struct {
	playlist     *Playlist
	currentIndex int // -1 if nothing playing
}

// NewQueue creates a new empty playing queue.
func NewQueue() *PlayingQueue {
	return &PlayingQueue{
		playlist:     NewPlaylist(),
		currentIndex: -1,
	}
}

// Current returns the currently playing track, or nil if none.
func (q *PlayingQueue) Current() *Track {
	if q.currentIndex < 0 || q.currentIndex >= q.playlist.Len() {
		return nil
	}
	return q.playlist.Track(q.currentIndex)
}

// CurrentIndex returns the index of the currently playing track (-1 if none).
func (q *PlayingQueue) CurrentIndex() int {
	return q.currentIndex
}

// Track returns the track at index, or nil if out of bounds.
func (q *PlayingQueue) Track(index int) *Track {
	return q.playlist.Track(index)
}

// JumpTo sets the current index to the specified position.
// Returns the track at that position, or nil if invalid.
func (q *PlayingQueue) JumpTo(index int) *Track {
	if index < 0 || index >= q.playlist.Len() {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// Add appends tracks to the queue without changing playback.
func (q *PlayingQueue) Add(tracks ...Track) {
	q.playlist.Add(tracks...)
}

// InsertNext places t immediately after the cursor.
// With no current track it is appended.
func (q *PlayingQueue) InsertNext(t Track) {
	if q.Current() == nil {
		q.playlist.Add(t)
		return
	}
	q.playlist.Insert(q.currentIndex+1, t)
}

// Replace swaps in a copy of tracks and points the cursor at current.
// If current is not in tracks it is prepended so the cursor still
// designates it. Returns the track under the cursor.
func (q *PlayingQueue) Replace(current Track, tracks []Track) *Track {
	if len(tracks) == 0 {
		tracks = []Track{current}
	}
	index := IndexOf(tracks, current.ID)
	if index < 0 {
		tracks = append([]Track{current}, tracks...)
		index = 0
	}
	q.playlist.Set(tracks)
	q.currentIndex = index
	return q.Current()
}

// Restore loads a saved queue. An out-of-range index leaves the cursor
// at -1 so a corrupt save cannot produce an invalid current track.
func (q *PlayingQueue) Restore(tracks []Track, index int) {
	q.playlist.Set(tracks)
	if index < 0 || index >= len(tracks) {
		q.currentIndex = -1
		return
	}
	q.currentIndex = index
}

// RemoveAt removes the track at the given index.
// The current track cannot be removed; that call is a no-op returning false.
func (q *PlayingQueue) RemoveAt(index int) bool {
	if index == q.currentIndex {
		return false
	}
	if !q.playlist.Remove(index) {
		return false
	}
	if index < q.currentIndex {
		q.currentIndex--
	}
	return true
}

// Move relocates the track at from to to, keeping the cursor on the
// same logical track.
func (q *PlayingQueue) Move(from, to int) bool {
	if !q.playlist.Move(from, to) {
		return false
	}
	cur := q.currentIndex
	switch {
	case cur < 0 || from == to:
	case from == cur:
		q.currentIndex = to
	case from < cur && to >= cur:
		q.currentIndex--
	case from > cur && to <= cur:
		q.currentIndex++
	}
	return true
}

// CollapseToCurrent drops everything but the current track.
func (q *PlayingQueue) CollapseToCurrent() {
	cur := q.Current()
	if cur == nil {
		q.Clear()
		return
	}
	q.playlist.Set([]Track{*cur})
	q.currentIndex = 0
}

// Clear removes all tracks and resets playback.
func (q *PlayingQueue) Clear() {
	q.playlist.Clear()
	q.currentIndex = -1
}

// Tracks returns all tracks in the queue.
func (q *PlayingQueue) Tracks() []Track {
	return q.playlist.Tracks()
}

// Len returns the number of tracks in the queue.
func (q *PlayingQueue) Len() int {
	return q.playlist.Len()
}

// IsEmpty returns true if the queue has no tracks.
func (q *PlayingQueue) IsEmpty() bool {
	return q.playlist.Len() == 0
}
