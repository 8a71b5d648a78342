package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	seekStep   = 5.0  // seconds
	volumeStep = 0.05 // fraction of full volume
)

// sleepPresets is the z key cycle, in minutes; past the last one the timer is cleared.
var sleepPresets = []int{15, 30, 60}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.input.Focused() {
		return m.handleInputKey(msg)
	}
	if m.showHelp {
		// Any key closes the help overlay.
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Command):
		m.Queue.SetFocused(false)
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Toggle):
		m.Playback.Toggle()
	case key.Matches(msg, m.keys.Next):
		m.Playback.Next()
	case key.Matches(msg, m.keys.Prev):
		m.Playback.Previous()
	case key.Matches(msg, m.keys.SeekBack):
		m.Playback.Seek(m.Playback.State().Progress - seekStep)
	case key.Matches(msg, m.keys.SeekFwd):
		m.Playback.Seek(m.Playback.State().Progress + seekStep)
	case key.Matches(msg, m.keys.Shuffle):
		if m.Playback.ToggleShuffle() {
			m.setMessage("Shuffle on")
		} else {
			m.setMessage("Shuffle off")
		}
	case key.Matches(msg, m.keys.Repeat):
		m.setMessage("Repeat " + m.Playback.ToggleRepeat().String())
	case key.Matches(msg, m.keys.VolUp):
		m.Playback.SetVolume(m.Playback.State().Volume + volumeStep)
	case key.Matches(msg, m.keys.VolDown):
		m.Playback.SetVolume(m.Playback.State().Volume - volumeStep)
	case key.Matches(msg, m.keys.Sleep):
		m.cycleSleepTimer()
	case key.Matches(msg, m.keys.Retry):
		m.Playback.RetryPlayback()
	case key.Matches(msg, m.keys.Restore):
		m.restoreQueue(1)
	case key.Matches(msg, m.keys.Clear):
		m.Playback.ClearQueue()
	default:
		var cmd tea.Cmd
		m.Queue, cmd = m.Queue.Update(msg)
		return m, cmd
	}
	m.syncQueue()
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type { //nolint:exhaustive // only keys that leave the input
	case tea.KeyEsc:
		m.blurInput()
		return m, nil
	case tea.KeyEnter:
		line := m.input.Value()
		m.blurInput()
		m.runCommand(line)
		m.syncQueue()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) blurInput() {
	m.input.Blur()
	m.input.Reset()
	m.Queue.SetFocused(true)
}

// cycleSleepTimer moves to the first preset above the remaining time.
func (m *Model) cycleSleepTimer() {
	current := m.Playback.State().SleepMinutes
	for _, p := range sleepPresets {
		if current == nil || *current < p {
			m.Playback.SetSleepTimer(&p)
			m.setMessage(fmt.Sprintf("Sleep in %d min", p))
			return
		}
	}
	m.Playback.SetSleepTimer(nil)
	m.setMessage("Sleep timer off")
}

// restoreQueue swaps in the n-th most recent saved queue (1-based).
func (m *Model) restoreQueue(n int) {
	history := m.Playback.QueueHistory()
	if n < 1 || n > len(history) {
		m.setError(fmt.Sprintf("No saved queue #%d", n))
		return
	}
	if !m.Playback.RestoreQueue(history[n-1].ID) {
		m.setError(fmt.Sprintf("No saved queue #%d", n))
		return
	}
	m.setMessage(fmt.Sprintf("Restored queue #%d (%d tracks)", n, len(history[n-1].Tracks)))
}
