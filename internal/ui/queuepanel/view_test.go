package queuepanel

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/tides/internal/playlist"
)

func testTrack(title, artist string) playlist.Track {
	return playlist.Track{ID: title, Name: title, ArtistName: artist}
}

func snapshot(current int, n int) Snapshot {
	tracks := make([]playlist.Track, n)
	for i := range tracks {
		tracks[i] = testTrack(fmt.Sprintf("Song %d", i+1), fmt.Sprintf("Artist %d", i+1))
	}
	return Snapshot{Tracks: tracks, Current: current, Repeat: "off"}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_EmptyQueue(t *testing.T) {
	m := New()
	m.SetSize(60, 10)

	if out := m.View(); !strings.Contains(out, "Queue (0/0)") {
		t.Errorf("empty queue should show 'Queue (0/0)', got: %s", out)
	}
}

func TestView_ShowsTracksAndHeader(t *testing.T) {
	m := New()
	m.SetSize(60, 10)
	s := snapshot(1, 3)
	s.Shuffle, s.Repeat = true, "all"
	m.SetSnapshot(s)

	out := m.View()
	for _, want := range []string{"Queue (2/3)", "Song 1", "Artist 3", "▶ Song 2", "shuffle", "repeat all"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q in:\n%s", want, out)
		}
	}
	if h := lipgloss.Height(out); h != 10 {
		t.Errorf("height = %d, want 10", h)
	}
}

func TestView_ZeroSize(t *testing.T) {
	if out := New().View(); out != "" {
		t.Errorf("View() with no size = %q", out)
	}
}

func TestSetSnapshot_CursorFollowsCurrentTrack(t *testing.T) {
	m := New()
	m.SetSize(60, 10)
	m.SetSnapshot(snapshot(0, 5))
	m.SetFocused(true)

	m, _ = m.Update(keyPress("j"))
	m, _ = m.Update(keyPress("j"))
	if m.Cursor() != 2 {
		t.Fatalf("cursor = %d, want 2", m.Cursor())
	}

	// Same current track: cursor stays where the user put it.
	m.SetSnapshot(snapshot(0, 5))
	if m.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", m.Cursor())
	}

	m.SetSnapshot(snapshot(4, 5))
	if m.Cursor() != 4 {
		t.Errorf("cursor = %d, want 4", m.Cursor())
	}

	m.SetSnapshot(snapshot(-1, 2))
	if m.Cursor() != 1 {
		t.Errorf("cursor = %d, want clamped to 1", m.Cursor())
	}
}

func TestUpdate_IgnoredWhenUnfocused(t *testing.T) {
	m := New()
	m.SetSize(60, 10)
	m.SetSnapshot(snapshot(0, 3))

	m, cmd := m.Update(keyPress("j"))
	if m.Cursor() != 0 || cmd != nil {
		t.Errorf("unfocused panel handled key: cursor=%d cmd=%v", m.Cursor(), cmd != nil)
	}
}

func TestUpdate_Actions(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want tea.Msg
	}{
		{"enter jumps", []string{"down", "enter"}, JumpToTrackMsg{Index: 1}},
		{"d removes", []string{"G", "d"}, RemoveTrackMsg{Index: 3}},
		{"J moves down", []string{"j", "J"}, MoveTrackMsg{From: 1, To: 2}},
		{"K moves up", []string{"G", "K"}, MoveTrackMsg{From: 3, To: 2}},
		{"K at top does nothing", []string{"K"}, nil},
		{"J at bottom does nothing", []string{"G", "J"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.SetSize(60, 10)
			m.SetSnapshot(snapshot(0, 4))
			m.SetFocused(true)

			var cmd tea.Cmd
			for _, k := range tt.keys {
				m, cmd = m.Update(keyPress(k))
			}
			var got tea.Msg
			if cmd != nil {
				got = cmd()
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestUpdate_EmptyQueue(t *testing.T) {
	m := New()
	m.SetSize(60, 10)
	m.SetFocused(true)
	for _, k := range []string{"enter", "d", "J", "K", "G"} {
		var cmd tea.Cmd
		m, cmd = m.Update(keyPress(k))
		if cmd != nil {
			t.Errorf("key %q on empty queue returned a command", k)
		}
	}
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	m := New()
	m.SetSize(60, 10) // 6 list rows
	m.SetSnapshot(snapshot(0, 50))
	m.SetFocused(true)

	m, _ = m.Update(keyPress("G"))
	out := m.View()
	if !strings.Contains(out, "Song 50") {
		t.Errorf("last track not visible after G:\n%s", out)
	}
	if strings.Contains(out, "Song 1 ") {
		t.Errorf("first track still visible after G:\n%s", out)
	}

	m, _ = m.Update(keyPress("g"))
	if !strings.Contains(m.View(), "Song 1 ") {
		t.Errorf("first track not visible after g")
	}
}
