package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/tides/internal/ui"
	"github.com/llehouerou/tides/internal/ui/overlay"
	"github.com/llehouerou/tides/internal/ui/playerbar"
	"github.com/llehouerou/tides/internal/ui/render"
	"github.com/llehouerou/tides/internal/ui/styles"
)

const headerHeight = 1

// resize hands the space left by the header, player bar and command line to
// the queue panel.
func (m *Model) resize() {
	h := m.Height - headerHeight - ui.CommandBarHeight
	if m.Playback.State().CurrentTrack != nil {
		h -= playerbar.Height
	}
	m.Queue.SetSize(m.Width, max(h, 0))
	m.input.Width = max(m.Width-2, 0)
	m.help.Width = m.Width
}

// View renders the full screen.
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}
	m.resize()

	parts := []string{m.renderHeader(), m.Queue.View()}
	if bar := playerbar.Render(playerbar.NewState(m.Playback.State(), m.now()), m.Width); bar != "" {
		parts = append(parts, bar)
	}
	parts = append(parts, m.renderCommandBar())
	screen := strings.Join(parts, "\n")
	if m.showHelp {
		screen = overlay.Center(screen, m.renderHelp(), m.Width, m.Height)
	}
	return screen
}

func (m Model) renderHelp() string {
	h := m.help
	h.ShowAll = true
	h.Width = max(m.Width-4, 0)
	title := styles.T().S().Title.Render("Keys")
	return styles.Panel(true).Padding(0, 1).Render(title + "\n\n" + h.View(m.keys))
}

func (m Model) renderHeader() string {
	t := styles.T()
	title := styles.Gradient("tides", t.Primary, t.Secondary, true)
	h := m.help
	h.Width = max(m.Width-lipgloss.Width(title)-2, 0)
	return render.Row(title, h.View(m.keys), m.Width)
}

func (m Model) renderCommandBar() string {
	if m.input.Focused() {
		return m.input.View()
	}
	s := styles.T().S()
	msg := render.Truncate(m.message, m.Width)
	if m.isError {
		return s.Error.Render(msg)
	}
	return s.Muted.Render(msg)
}
