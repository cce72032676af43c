package tui

import (
	tea "github.com/charmbracelet/bubbletea/v2"
)

func batchCmds(cmds []tea.Cmd) tea.Cmd {
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	default:
		return tea.Batch(cmds...)
	}
}

func keyString(msg tea.Msg) (string, bool) {
	switch v := msg.(type) {
	case tea.KeyMsg:
		return v.String(), true
	case tea.KeyPressMsg:
		return v.String(), true
	default:
		return "", false
	}
}

func (m *Model) refreshHeaderMeta() {
	m.header.SetMeta(m.title, m.cfg.Model)
}

// refreshHelp swaps the status bar's key map to match what the user can
// actually do right now.
func (m *Model) refreshHelp() {
	if m.ui.active() {
		m.status.SetKeyMap(permissionHelpKeyMap{})
		return
	}
	m.status.SetKeyMap(dynamicKeyMap{
		km:            m.keys,
		inputFocused:  m.input.IsFocused(),
		cancelVisible: m.engine.Processing(m.sessionID),
	})
}
