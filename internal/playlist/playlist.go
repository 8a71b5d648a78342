package playlist

import "slices"

// Playlist is an ordered list of tracks. Index arguments out of range are
// reported through the boolean results rather than panicking.
type Playlist struct {
	tracks []Track
}

// NewPlaylist returns an empty playlist.
func NewPlaylist() *Playlist {
	return &Playlist{}
}

func (p *Playlist) valid(i int) bool {
	return i >= 0 && i < len(p.tracks)
}

// Add appends tracks.
func (p *Playlist) Add(tracks ...Track) {
	p.tracks = append(p.tracks, tracks...)
}

// Insert puts t at index; an index past the end appends.
func (p *Playlist) Insert(index int, t Track) bool {
	if index < 0 {
		return false
	}
	p.tracks = slices.Insert(p.tracks, min(index, len(p.tracks)), t)
	return true
}

// Remove drops the track at index.
func (p *Playlist) Remove(index int) bool {
	if !p.valid(index) {
		return false
	}
	p.tracks = slices.Delete(p.tracks, index, index+1)
	return true
}

// Set replaces the contents with a copy of tracks.
func (p *Playlist) Set(tracks []Track) {
	p.tracks = slices.Clone(tracks)
}

// Clear empties the playlist.
func (p *Playlist) Clear() {
	p.tracks = nil
}

// Tracks returns a copy of the contents, never nil.
func (p *Playlist) Tracks() []Track {
	return append(make([]Track, 0, len(p.tracks)), p.tracks...)
}

// Track returns the track at index, or nil.
func (p *Playlist) Track(index int) *Track {
	if !p.valid(index) {
		return nil
	}
	return &p.tracks[index]
}

// Len returns the number of tracks.
func (p *Playlist) Len() int {
	return len(p.tracks)
}

// Move takes the track at from out of the list and reinserts it so that it
// ends up at to.
func (p *Playlist) Move(from, to int) bool {
	if !p.valid(from) || !p.valid(to) {
		return false
	}
	if from != to {
		t := p.tracks[from]
		p.tracks = slices.Insert(slices.Delete(p.tracks, from, from+1), to, t)
	}
	return true
}
