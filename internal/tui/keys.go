package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the global key bindings.
type keyMap struct {
	Start    key.Binding
	Stop     key.Binding
	NextTab  key.Binding
	Editor   key.Binding
	Activity key.Binding
	Sessions key.Binding
	Palette  key.Binding
	Refresh  key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Start:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Stop:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		NextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Editor:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "editor")),
		Activity: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "activity")),
		Sessions: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "sessions")),
		Palette:  key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "commands")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// footerBindings is the subset shown on the footer hint line.
func (k keyMap) footerBindings() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.NextTab, k.Palette, k.Quit}
}
