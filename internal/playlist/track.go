package playlist

// Track is a playable item from the music backend.
// Queue entries are copies; nothing in the queue aliases a catalog entry.
type Track struct {
	ID         string `json:"id"` // backend stream identifier
	Name       string `json:"name"`
	ArtistName string `json:"artist_name"`
	ArtistID   string `json:"artist_id"`
	AlbumName  string `json:"album_name"`
	AlbumID    string `json:"album_id"`
	AlbumImage string `json:"album_image"`
	Duration   int    `json:"duration"` // seconds, 0 if unknown
	Audio      string `json:"audio"`    // resolved stream URL, empty until resolved
	Position   int    `json:"position"` // ordinal in the originating playlist
}

// IndexOf returns the index of the first track with the given ID, or -1.
func IndexOf(tracks []Track, id string) int {
	for i := range tracks {
		if tracks[i].ID == id {
			return i
		}
	}
	return -1
}
