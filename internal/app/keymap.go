package app

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/llehouerou/tides/internal/ui/queuepanel"
)

// keyMap holds the global bindings. It implements help.KeyMap.
type keyMap struct {
	Toggle   key.Binding
	Next     key.Binding
	Prev     key.Binding
	SeekBack key.Binding
	SeekFwd  key.Binding
	Shuffle  key.Binding
	Repeat   key.Binding
	VolUp    key.Binding
	VolDown  key.Binding
	Sleep    key.Binding
	Retry    key.Binding
	Restore  key.Binding
	Clear    key.Binding
	Command  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		Prev:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		SeekBack: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "back 5s")),
		SeekFwd:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "forward 5s")),
		Shuffle:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		Repeat:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		VolUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		VolDown:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		Sleep:    key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "sleep 15/30/60/off")),
		Retry:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "retry")),
		Restore:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "restore last queue")),
		Clear:    key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear queue")),
		Command:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Next, k.Prev, k.Command, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Next, k.Prev, k.SeekBack, k.SeekFwd, k.Retry},
		{k.Shuffle, k.Repeat, k.VolUp, k.VolDown, k.Sleep},
		queuepanel.Keys.Bindings(),
		{k.Restore, k.Clear, k.Command, k.Help, k.Quit},
	}
}
