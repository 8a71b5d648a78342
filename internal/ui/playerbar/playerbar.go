// Package playerbar renders the now-playing bar at the bottom of the TUI.
package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/llehouerou/tides/internal/playback"
	"github.com/llehouerou/tides/internal/ui/render"
	"github.com/llehouerou/tides/internal/ui/styles"
)

// Height is the rendered height: two content rows inside a border.
const Height = 4

const (
	playSymbol    = "▶"
	pauseSymbol   = "⏸"
	loadingSymbol = "…"
	errorSymbol   = "✗"
	minBarWidth   = 5
)

// State holds everything needed to render the player bar.
type State struct {
	Title    string
	Artist   string
	Album    string
	Status   playback.Status
	Position time.Duration
	Duration time.Duration
	Volume   float64
	Shuffle  bool
	Repeat   playback.RepeatMode
	SleepAt  time.Time // zero when no sleep timer is set
	Now      time.Time
}

// NewState derives the bar state from the engine snapshot.
func NewState(st playback.PlayerState, now time.Time) State {
	s := State{
		Status:   st.Status,
		Position: seconds(st.Progress),
		Duration: seconds(st.Duration),
		Volume:   st.Volume,
		Shuffle:  st.Shuffle,
		Repeat:   st.Repeat,
		Now:      now,
	}
	if t := st.CurrentTrack; t != nil {
		s.Title, s.Artist, s.Album = t.Name, t.ArtistName, t.AlbumName
		if s.Duration == 0 {
			s.Duration = time.Duration(t.Duration) * time.Second
		}
	}
	if st.SleepMinutes != nil {
		s.SleepAt = now.Add(time.Duration(*st.SleepMinutes) * time.Minute)
	}
	return s
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

// Render returns the player bar for the given width, or "" with no track.
func Render(s State, width int) string {
	if s.Title == "" && s.Status.Kind == playback.StatusIdle {
		return ""
	}
	inner := max(width-6, 0)
	content := renderTrackLine(s, inner) + "\n" + renderInfoLine(s, inner)
	return styles.Panel(false).Padding(0, 2).Width(width - 2).Render(content)
}

func renderTrackLine(s State, width int) string {
	st := styles.T().S()

	status := statusSymbol(s.Status)
	timeStr := fmt.Sprintf("%s / %s", FormatDuration(s.Position), FormatDuration(s.Duration))

	title := s.Title
	if title == "" {
		title = "Unknown Track"
	}
	info := strings.Join(nonEmpty(s.Artist, s.Album), " · ")
	text := title
	if info != "" {
		text += "   " + info
	}

	fixed := lipgloss.Width(status) + 2 + lipgloss.Width(timeStr) + 3*2
	textWidth := min(lipgloss.Width(text), max(width-fixed-minBarWidth, 10))
	barWidth := max(width-fixed-textWidth, minBarWidth)

	return st.Title.Render(render.Truncate(text, textWidth)) + "   " +
		status + "  " + ProgressBar(s.Position, s.Duration, barWidth) + "   " +
		st.Muted.Render(timeStr)
}

func renderInfoLine(s State, width int) string {
	st := styles.T().S()

	var left string
	switch s.Status.Kind {
	case playback.StatusErrored:
		left = st.Error.Render(render.Truncate(s.Status.Message, width/2) + "  (R to retry)")
	case playback.StatusLoading, playback.StatusBuffering:
		left = st.Muted.Render(s.Status.Kind.String() + "…")
	default:
		left = st.Muted.Render(s.Status.Kind.String())
	}

	var right []string
	if !s.SleepAt.IsZero() {
		right = append(right, st.Warning.Render("sleep "+humanize.RelTime(s.SleepAt, s.Now, "ago", "from now")))
	}
	if s.Shuffle {
		right = append(right, "shuffle")
	}
	if s.Repeat != playback.RepeatOff {
		right = append(right, "repeat "+s.Repeat.String())
	}
	right = append(right, fmt.Sprintf("vol %3d%%", int(s.Volume*100+0.5)))

	return render.Row(left, st.Muted.Render(strings.Join(right, "  ")), width)
}

func statusSymbol(s playback.Status) string {
	switch s.Kind {
	case playback.StatusPlaying:
		return styles.T().S().Playing.Render(playSymbol)
	case playback.StatusLoading, playback.StatusBuffering:
		return loadingSymbol
	case playback.StatusErrored:
		return styles.T().S().Error.Render(errorSymbol)
	case playback.StatusIdle, playback.StatusPaused:
	}
	return pauseSymbol
}

// ProgressBar renders a width-cell bar with the elapsed part as a gradient.
func ProgressBar(position, duration time.Duration, width int) string {
	var ratio float64
	if duration > 0 {
		ratio = float64(position) / float64(duration)
	}
	filled := min(max(int(float64(width)*ratio), 0), width)
	bar := styles.Gradient(strings.Repeat("━", filled), styles.T().Primary, styles.T().Secondary, false)
	return bar + styles.T().S().Subtle.Render(strings.Repeat("─", width-filled))
}

// FormatDuration formats d as m:ss.
func FormatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
