package playlist

import (
	"testing"
	"time"
)

func TestQueueHistory_PushAndEntries(t *testing.T) {
	h := NewQueueHistory(10)
	t0 := time.Unix(1000, 0)

	h.Push([]Track{{ID: "a"}}, 0, t0)
	h.Push([]Track{{ID: "b"}, {ID: "c"}}, 1, t0.Add(time.Second))

	entries := h.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(Entries()) = %d, want 2", len(entries))
	}
	if entries[0].Tracks[0].ID != "b" {
		t.Errorf("Entries()[0] = %v, want newest first", entries[0].Tracks)
	}
	if entries[0].Index != 1 {
		t.Errorf("Entries()[0].Index = %d, want 1", entries[0].Index)
	}
	if entries[0].ID == "" || entries[0].ID == entries[1].ID {
		t.Error("entries should carry distinct IDs")
	}
}

func TestQueueHistory_BoundedToMaxSize(t *testing.T) {
	h := NewQueueHistory(10)
	for i := range 15 {
		h.Push([]Track{{ID: string(rune('a' + i))}}, 0, time.Unix(int64(i), 0))
	}

	if h.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", h.Len())
	}
	entries := h.Entries()
	if got := entries[len(entries)-1].Tracks[0].ID; got != "f" {
		t.Errorf("oldest kept = %q, want f", got)
	}
}

func TestQueueHistory_SnapshotIsCopy(t *testing.T) {
	h := NewQueueHistory(10)
	tracks := []Track{{ID: "a"}}

	h.Push(tracks, 0, time.Now())
	tracks[0].ID = "changed"

	if h.Entries()[0].Tracks[0].ID != "a" {
		t.Error("Push should snapshot the slice")
	}
}

func TestQueueHistory_Take(t *testing.T) {
	h := NewQueueHistory(10)
	e := h.Push([]Track{{ID: "a"}}, 0, time.Now())

	got, ok := h.Take(e.ID)
	if !ok || got.Tracks[0].ID != "a" {
		t.Fatalf("Take() = %v, %v", got, ok)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d after Take, want 0", h.Len())
	}
	if _, ok := h.Take(e.ID); ok {
		t.Error("second Take should fail")
	}
}
