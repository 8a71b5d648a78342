// Package queuepanel renders the play queue and turns list gestures into
// engine requests.
package queuepanel

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/tides/internal/playlist"
	"github.com/llehouerou/tides/internal/ui"
)

// JumpToTrackMsg is sent when the user selects a track to jump to.
type JumpToTrackMsg struct {
	Index int
}

// RemoveTrackMsg is sent when the user deletes the track under the cursor.
type RemoveTrackMsg struct {
	Index int
}

// MoveTrackMsg is sent when the user drags the track under the cursor.
type MoveTrackMsg struct {
	From, To int
}

// Snapshot is the queue as last reported by the engine.
type Snapshot struct {
	Tracks  []playlist.Track
	Current int
	Shuffle bool
	Repeat  string // "off", "all" or "one"
}

// Model is the queue panel state.
type Model struct {
	ui.Frame
	snap   Snapshot
	cursor int
	offset int
}

// New creates an empty queue panel.
func New() Model {
	return Model{snap: Snapshot{Current: -1}}
}

// SetSize sets the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.Frame.SetSize(width, height)
	m.ensureVisible()
}

// Cursor returns the highlighted index.
func (m Model) Cursor() int {
	return m.cursor
}

// SetSnapshot replaces the displayed queue. The cursor follows the current
// track when it moves.
func (m *Model) SetSnapshot(s Snapshot) {
	follow := m.snap.Current != s.Current
	m.snap = s
	if follow && s.Current >= 0 {
		m.cursor = s.Current
	}
	m.clamp()
}

// Update handles list keys when focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.IsFocused() {
		return m, nil
	}
	n := len(m.snap.Tracks)

	switch {
	case key.Matches(keyMsg, Keys.Down):
		m.move(1)
	case key.Matches(keyMsg, Keys.Up):
		m.move(-1)
	case key.Matches(keyMsg, Keys.Top):
		m.cursor = 0
		m.ensureVisible()
	case key.Matches(keyMsg, Keys.Bottom):
		m.cursor = max(n-1, 0)
		m.ensureVisible()
	case key.Matches(keyMsg, Keys.Play):
		if n > 0 {
			idx := m.cursor
			return m, func() tea.Msg { return JumpToTrackMsg{Index: idx} }
		}
	case key.Matches(keyMsg, Keys.Remove):
		if n > 0 {
			idx := m.cursor
			return m, func() tea.Msg { return RemoveTrackMsg{Index: idx} }
		}
	case key.Matches(keyMsg, Keys.MoveDown):
		if m.cursor < n-1 {
			from := m.cursor
			m.move(1)
			return m, func() tea.Msg { return MoveTrackMsg{From: from, To: from + 1} }
		}
	case key.Matches(keyMsg, Keys.MoveUp):
		if m.cursor > 0 && n > 0 {
			from := m.cursor
			m.move(-1)
			return m, func() tea.Msg { return MoveTrackMsg{From: from, To: from - 1} }
		}
	}
	return m, nil
}

func (m *Model) move(delta int) {
	m.cursor += delta
	m.clamp()
}

func (m *Model) clamp() {
	n := len(m.snap.Tracks)
	m.cursor = min(max(m.cursor, 0), max(n-1, 0))
	m.ensureVisible()
}

func (m Model) listHeight() int {
	return m.Rows()
}

// ensureVisible keeps scrollMargin rows around the cursor in view.
func (m *Model) ensureVisible() {
	h := m.listHeight()
	if h <= 0 {
		return
	}
	margin := min(ui.ScrollMargin, (h-1)/2)
	if m.cursor < m.offset+margin {
		m.offset = m.cursor - margin
	}
	if m.cursor >= m.offset+h-margin {
		m.offset = m.cursor - h + margin + 1
	}
	m.offset = min(max(m.offset, 0), max(len(m.snap.Tracks)-h, 0))
}
