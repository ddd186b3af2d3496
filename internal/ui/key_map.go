package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
//
// Letter keys other than those below are typed into the guess input, so bindings active while typing use
// arrows, tab and ctrl chords.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	complete key.Binding
	enter    key.Binding
	back     key.Binding
	open     key.Binding
	restart  key.Binding
	history  key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "prev suggestion")),
		down:     key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next suggestion")),
		complete: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "guess")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open preview")),
		restart:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "new guess")),
		history:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "history")),
		quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.complete, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.complete},
		{k.enter, k.back, k.open},
		{k.restart, k.history, k.quit},
	}
}
