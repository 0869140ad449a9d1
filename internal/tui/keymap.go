package tui

import "github.com/charmbracelet/bubbles/key"

// PageStep is the cursor distance of PageUp and PageDown.
const PageStep = 10

// KeyMap lists the browser's bindings. It implements help.KeyMap.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "+"),
			key.WithHelp("↑/k", "next index"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "-"),
			key.WithHelp("↓/j", "previous index"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "right", "l"),
			key.WithHelp("pgup", "+10"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "left", "h"),
			key.WithHelp("pgdn", "-10"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home", "index 0"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end", "max index"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings of the one-line help.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Help, k.Quit}
}

// FullHelp returns the bindings of the expanded help.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Home, k.End, k.Help, k.Quit},
	}
}
