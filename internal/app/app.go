package app

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tides/internal/playback"
	"github.com/llehouerou/tides/internal/ui/queuepanel"
)

// Model is the root bubbletea model.
type Model struct {
	Playback playback.Service
	sub      *playback.Subscription
	log      logrus.FieldLogger

	Queue    queuepanel.Model
	input    textinput.Model
	keys     keyMap
	help     help.Model
	showHelp bool
	message  string
	isError  bool

	Width  int
	Height int

	now func() time.Time
}

// New creates the UI model on top of a running engine. The model subscribes
// to engine events; Close releases nothing since the engine owns the channels.
func New(svc playback.Service, log logrus.FieldLogger) Model {
	ti := textinput.New()
	ti.Prompt = ":"
	ti.Placeholder = "sleep 30 · vol 80 · seek 1:30 · fade 3 · norm on · restore 1 · retry"
	ti.CharLimit = 64

	q := queuepanel.New()
	q.SetFocused(true)

	m := Model{
		Playback: svc,
		sub:      svc.Subscribe(),
		log:      log,
		Queue:    q,
		input:    ti,
		keys:     newKeyMap(),
		help:     help.New(),
		now:      time.Now,
	}
	m.syncQueue()
	return m
}

// Init starts the event watcher and the clock.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.WatchServiceEvents(), TickCmd())
}

// Update routes messages to the input, the queue panel or the engine.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case PlaybackMessage:
		return m.handlePlaybackMsg(msg)
	case queuepanel.JumpToTrackMsg:
		m.Playback.PlayAt(msg.Index)
	case queuepanel.RemoveTrackMsg:
		m.Playback.RemoveFromQueue(msg.Index)
	case queuepanel.MoveTrackMsg:
		m.Playback.ReorderQueue(msg.From, msg.To)
	}
	return m, nil
}

func (m Model) handlePlaybackMsg(msg PlaybackMessage) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		return m, TickCmd()
	case ServiceClosedMsg:
		return m, tea.Quit
	case ServiceErrorMsg:
		m.log.WithFields(logrus.Fields{
			"op":    msg.Operation,
			"track": msg.TrackID,
		}).Debug("playback error shown")
		m.setError(msg.Message)
	case ServiceTrackChangedMsg:
		m.clearMessage()
	}
	m.syncQueue()
	return m, m.WatchServiceEvents()
}

// syncQueue copies the engine queue into the panel.
func (m *Model) syncQueue() {
	st := m.Playback.State()
	m.Queue.SetSnapshot(queuepanel.Snapshot{
		Tracks:  st.Queue,
		Current: st.QueueIndex,
		Shuffle: st.Shuffle,
		Repeat:  st.Repeat.String(),
	})
}

func (m *Model) setMessage(s string) {
	m.message, m.isError = s, false
}

func (m *Model) setError(s string) {
	m.message, m.isError = s, true
}

func (m *Model) clearMessage() {
	m.message, m.isError = "", false
}
