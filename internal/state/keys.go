package state

// Keys of the key-value store. Each value is a JSON document.
const (
	KeyQueue               = "player_queue"
	KeyQueueIndex          = "player_queue_index"
	KeyCurrentTrack        = "player_current_track"
	KeyVolume              = "player_volume"
	KeyShuffle             = "player_shuffle"
	KeyRepeat              = "player_repeat"
	KeyCrossfade           = "player_crossfade_duration"
	KeyVolumeNormalization = "player_volume_normalization"
	KeyTasteProfile        = "taste_profile"
	KeyLastfmSession       = "lastfm_session"
)
