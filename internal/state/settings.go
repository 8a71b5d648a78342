package state

import (
	"encoding/json"
	"strconv"
)

// Settings are the scalar player preferences, each stored under its own key.
type Settings struct {
	Volume              float64
	Shuffle             bool
	Repeat              string
	CrossfadeSeconds    int
	VolumeNormalization bool
}

// DefaultSettings returns the settings used for keys never written.
func DefaultSettings() Settings {
	return Settings{Volume: 1.0, Repeat: "off"}
}

// LoadSettings reads each setting independently; a missing or malformed key
// keeps its default.
func LoadSettings(s Store) Settings {
	out := DefaultSettings()
	if raw, ok := get(s, KeyVolume); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 && v <= 1 {
			out.Volume = v
		}
	}
	if raw, ok := get(s, KeyShuffle); ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			out.Shuffle = v
		}
	}
	if raw, ok := get(s, KeyRepeat); ok {
		var v string
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			switch v {
			case "off", "all", "one":
				out.Repeat = v
			}
		}
	}
	if raw, ok := get(s, KeyCrossfade); ok {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			out.CrossfadeSeconds = v
		}
	}
	if raw, ok := get(s, KeyVolumeNormalization); ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			out.VolumeNormalization = v
		}
	}
	return out
}

// SaveVolume stores the volume setting.
func SaveVolume(s Store, v float64) error {
	return s.Set(KeyVolume, strconv.FormatFloat(v, 'f', -1, 64))
}

// SaveShuffle stores the shuffle setting.
func SaveShuffle(s Store, on bool) error {
	return s.Set(KeyShuffle, strconv.FormatBool(on))
}

// SaveRepeat stores the repeat mode ("off", "all" or "one").
func SaveRepeat(s Store, mode string) error {
	b, err := json.Marshal(mode)
	if err != nil {
		return err
	}
	return s.Set(KeyRepeat, string(b))
}

// SaveCrossfade stores the crossfade duration in seconds.
func SaveCrossfade(s Store, seconds int) error {
	return s.Set(KeyCrossfade, strconv.Itoa(seconds))
}

// SaveVolumeNormalization stores the normalization flag.
func SaveVolumeNormalization(s Store, on bool) error {
	return s.Set(KeyVolumeNormalization, strconv.FormatBool(on))
}

func get(s Store, key string) (string, bool) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return "", false
	}
	return raw, true
}
