package queuepanel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/tides/internal/playlist"
	"github.com/llehouerou/tides/internal/ui/render"
	"github.com/llehouerou/tides/internal/ui/styles"
)

const playingSymbol = "▶"

// View renders the queue panel.
func (m Model) View() string {
	if m.Empty() {
		return ""
	}
	innerWidth := m.InnerWidth()

	lines := []string{m.renderHeader(innerWidth), render.Separator(innerWidth)}
	for i := range max(m.listHeight(), 0) {
		idx := m.offset + i
		if idx >= len(m.snap.Tracks) {
			lines = append(lines, strings.Repeat(" ", innerWidth))
			continue
		}
		lines = append(lines, m.renderTrackLine(m.snap.Tracks[idx], idx, innerWidth))
	}

	return styles.Panel(m.IsFocused()).Width(innerWidth).Render(strings.Join(lines, "\n"))
}

func (m Model) renderHeader(width int) string {
	title := fmt.Sprintf("Queue (%d/%d)", m.snap.Current+1, len(m.snap.Tracks))

	var modes []string
	if m.snap.Shuffle {
		modes = append(modes, "shuffle")
	}
	if m.snap.Repeat != "" && m.snap.Repeat != "off" {
		modes = append(modes, "repeat "+m.snap.Repeat)
	}
	return render.Row(
		styles.T().S().Title.Render(title),
		styles.T().S().Muted.Render(strings.Join(modes, "  ")),
		width,
	)
}

func (m Model) renderTrackLine(t playlist.Track, idx, width int) string {
	prefix := "  "
	if idx == m.snap.Current {
		prefix = playingSymbol + " "
	}
	contentWidth := width - 2
	titleWidth := contentWidth / 2
	line := prefix +
		render.TruncateAndPad(t.Name, titleWidth) +
		render.TruncateAndPad(t.ArtistName, contentWidth-titleWidth)
	return m.lineStyle(idx).Render(line)
}

func (m Model) lineStyle(idx int) lipgloss.Style {
	s := styles.T().S()
	isCursor := idx == m.cursor && m.IsFocused()
	isPlaying := idx == m.snap.Current
	isPlayed := idx < m.snap.Current

	switch {
	case isCursor && isPlaying:
		return s.Cursor.Inherit(s.Playing)
	case isCursor && isPlayed:
		return s.Cursor.Inherit(s.Subtle)
	case isCursor:
		return s.Cursor
	case isPlaying:
		return s.Playing
	case isPlayed:
		return s.Subtle
	default:
		return s.Base
	}
}
