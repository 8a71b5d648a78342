package queuepanel

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the queue list bindings.
type KeyMap struct {
	Down     key.Binding
	Up       key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Play     key.Binding
	Remove   key.Binding
	MoveDown key.Binding
	MoveUp   key.Binding
}

// Keys are the bindings the panel reacts to.
var Keys = KeyMap{
	Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Play:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
	Remove:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
	MoveDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
	MoveUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
}

// Bindings lists the keys in help order.
func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Top, k.Bottom, k.Play, k.Remove, k.MoveDown, k.MoveUp}
}
