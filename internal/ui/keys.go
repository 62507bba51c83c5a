package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Pause  key.Binding
	Clear  key.Binding
	AllTab key.Binding
	Help   key.Binding
	Quit   key.Binding
	Watch1 key.Binding
	Watch2 key.Binding
	Watch3 key.Binding
	Watch4 key.Binding
	Watch5 key.Binding
	Watch6 key.Binding
	Watch7 key.Binding
	Watch8 key.Binding
	Watch9 key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "oldest"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "newest"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p", "pause feed"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear feed"),
		),
		AllTab: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "all watches"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Watch1: key.NewBinding(key.WithKeys("1")),
		Watch2: key.NewBinding(key.WithKeys("2")),
		Watch3: key.NewBinding(key.WithKeys("3")),
		Watch4: key.NewBinding(key.WithKeys("4")),
		Watch5: key.NewBinding(key.WithKeys("5")),
		Watch6: key.NewBinding(key.WithKeys("6")),
		Watch7: key.NewBinding(key.WithKeys("7")),
		Watch8: key.NewBinding(key.WithKeys("8")),
		Watch9: key.NewBinding(key.WithKeys("9")),
	}
}

// ShortHelp returns a brief help string
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Pause, k.Clear, k.Quit}
}

// FullHelp returns all help bindings
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Pause, k.Clear, k.AllTab},
		{k.Help, k.Quit},
	}
}
