package tui

import "github.com/charmbracelet/bubbles/v2/key"

type keyMap struct {
	Help      key.Binding
	Quit      key.Binding
	Newline   key.Binding
	FocusPrev key.Binding
	FocusNext key.Binding
	Copy      key.Binding
	Toggle    key.Binding
	Cancel    key.Binding
	Sessions  key.Binding
	Record    key.Binding
}

// dynamicKeyMap adapts the help line to focus and stream state.
type dynamicKeyMap struct {
	km            keyMap
	inputFocused  bool
	cancelVisible bool
}

func (d dynamicKeyMap) ShortHelp() []key.Binding {
	var keys []key.Binding
	if d.cancelVisible {
		keys = append(keys, d.km.Cancel)
	}
	keys = append(keys, d.km.Sessions)
	if d.inputFocused {
		keys = append(keys, d.km.Newline, d.km.Toggle, d.km.Help, d.km.Quit)
		return keys
	}
	keys = append(keys, d.km.FocusPrev, d.km.FocusNext, d.km.Copy, d.km.Toggle, d.km.Quit)
	return keys
}

func (d dynamicKeyMap) FullHelp() [][]key.Binding {
	first := []key.Binding{d.km.Sessions, d.km.Newline, d.km.Record, d.km.Toggle}
	second := []key.Binding{d.km.FocusPrev, d.km.FocusNext, d.km.Copy}
	third := []key.Binding{d.km.Help, d.km.Quit}
	if d.cancelVisible {
		third = append([]key.Binding{d.km.Cancel}, third...)
	}
	return [][]key.Binding{first, second, third}
}

var defaultKeys = keyMap{
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Newline: key.NewBinding(
		key.WithKeys("ctrl+j"),
		key.WithHelp("ctrl+j", "new line"),
	),
	FocusPrev: key.NewBinding(
		key.WithKeys("k", "ctrl+up"),
		key.WithHelp("k", "focus prev msg"),
	),
	FocusNext: key.NewBinding(
		key.WithKeys("j", "ctrl+down"),
		key.WithHelp("j", "focus next msg"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c", "y"),
		key.WithHelp("c/y", "copy content"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "toggle focus"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Sessions: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "sessions"),
	),
	Record: key.NewBinding(
		key.WithKeys("alt+M"),
		key.WithHelp("alt+shift+m", "voice note"),
	),
}
