//nolint:goconst // test file with repeated string literals
package playlist

import "testing"

func TestNewPlaylist(t *testing.T) {
	p := NewPlaylist()

	if p.Len() != 0 {
		t.Errorf("Len() = %d, want 0", p.Len())
	}
	if p.Tracks() == nil {
		t.Error("Tracks() should return empty slice, not nil")
	}
}

func TestPlaylist_Add(t *testing.T) {
	p := NewPlaylist()

	p.Add(Track{ID: "a"}, Track{ID: "b"})

	if p.Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Len())
	}
	tracks := p.Tracks()
	if tracks[0].ID != "a" || tracks[1].ID != "b" {
		t.Errorf("Tracks() = %v, want [a b]", ids(tracks))
	}
}

func TestPlaylist_Insert(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  []string
		ok    bool
	}{
		{"front", 0, []string{"x", "a", "b"}, true},
		{"middle", 1, []string{"a", "x", "b"}, true},
		{"end", 2, []string{"a", "b", "x"}, true},
		{"past end appends", 10, []string{"a", "b", "x"}, true},
		{"negative", -1, []string{"a", "b"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlaylist()
			p.Add(Track{ID: "a"}, Track{ID: "b"})

			ok := p.Insert(tt.index, Track{ID: "x"})

			if ok != tt.ok {
				t.Errorf("Insert() = %v, want %v", ok, tt.ok)
			}
			if got := ids(p.Tracks()); !equalIDs(got, tt.want) {
				t.Errorf("Tracks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlaylist_Remove(t *testing.T) {
	p := NewPlaylist()
	p.Add(Track{ID: "a"}, Track{ID: "b"}, Track{ID: "c"})

	if !p.Remove(1) {
		t.Fatal("Remove should return true")
	}
	if got := ids(p.Tracks()); !equalIDs(got, []string{"a", "c"}) {
		t.Errorf("Tracks() = %v, want [a c]", got)
	}
	if p.Remove(5) {
		t.Error("Remove out of bounds should return false")
	}
}

func TestPlaylist_Tracks_ReturnsCopy(t *testing.T) {
	p := NewPlaylist()
	p.Add(Track{ID: "a", Name: "Original"})

	tracks := p.Tracks()
	tracks[0].Name = "Modified"

	if p.Track(0).Name != "Original" {
		t.Error("Tracks() should return a copy")
	}
}

func TestPlaylist_Set_Copies(t *testing.T) {
	src := []Track{{ID: "a"}}
	p := NewPlaylist()

	p.Set(src)
	src[0].ID = "changed"

	if p.Track(0).ID != "a" {
		t.Error("Set should copy the input slice")
	}
}

func TestPlaylist_Move(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
		ok       bool
	}{
		{"forward", 0, 2, []string{"b", "c", "a"}, true},
		{"backward", 2, 0, []string{"c", "a", "b"}, true},
		{"same", 1, 1, []string{"a", "b", "c"}, true},
		{"from out of bounds", 3, 0, []string{"a", "b", "c"}, false},
		{"to out of bounds", 0, -1, []string{"a", "b", "c"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlaylist()
			p.Add(Track{ID: "a"}, Track{ID: "b"}, Track{ID: "c"})

			ok := p.Move(tt.from, tt.to)

			if ok != tt.ok {
				t.Errorf("Move() = %v, want %v", ok, tt.ok)
			}
			if got := ids(p.Tracks()); !equalIDs(got, tt.want) {
				t.Errorf("Tracks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIndexOf(t *testing.T) {
	tracks := []Track{{ID: "a"}, {ID: "b"}, {ID: "b"}}

	if got := IndexOf(tracks, "b"); got != 1 {
		t.Errorf("IndexOf(b) = %d, want 1 (first match)", got)
	}
	if got := IndexOf(tracks, "z"); got != -1 {
		t.Errorf("IndexOf(z) = %d, want -1", got)
	}
}

func ids(tracks []Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
