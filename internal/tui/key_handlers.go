package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tandem/internal/message"
	"tandem/internal/permission"
	cmpconversations "tandem/internal/tui/components/conversations"
	"tandem/internal/tui/shortcut"
)

type keyEventContext struct {
	key  string
	busy bool
}

type keyHandler func(*Model, keyEventContext) (tea.Cmd, bool)

func defaultKeyHandlers() map[string]keyHandler {
	return map[string]keyHandler{
		"ctrl+c":    handleQuitKey,
		"?":         handleHelpToggleKey,
		"tab":       handleTabKey,
		"ctrl+up":   handleFocusPrevKey,
		"ctrl+down": handleFocusNextKey,
		"k":         handlePrevMessageKey,
		"j":         handleNextMessageKey,
		"c":         handleCopyKey,
		"y":         handleCopyKey,
		"up":        handleHistoryPrevKey,
		"down":      handleHistoryNextKey,
		"esc":       handleEscapeKey,
		"ctrl+j":    handleNewlineKey,
		"ctrl+s":    handleSessionsKey,
		"enter":     handleEnterKey,
	}
}

var keyHandlers = defaultKeyHandlers()

// uiState snapshots model state for the shortcut dispatcher.
func (m *Model) uiState() shortcut.UIState {
	return shortcut.UIState{
		PendingPermission: m.ui.active(),
		Recording:         m.recording,
		Processing:        m.engine.Processing(m.sessionID),
		Input:             m.input.Value(),
	}
}

// parseShortcutEvent normalizes a bubbletea key string ("alt+M",
// "ctrl+c") into the dispatcher's event shape.
func parseShortcutEvent(keyStr string) shortcut.KeyEvent {
	ev := shortcut.KeyEvent{}
	parts := strings.Split(keyStr, "+")
	key := parts[len(parts)-1]
	for _, mod := range parts[:len(parts)-1] {
		switch mod {
		case "ctrl":
			ev.Ctrl = true
		case "alt", "meta":
			ev.Meta = true
		case "shift":
			ev.Shift = true
		}
	}
	if len(key) == 1 && key >= "A" && key <= "Z" {
		ev.Shift = true
		key = strings.ToLower(key)
	}
	ev.Key = key
	return ev
}

func (m *Model) handleKeyEvent(msg tea.Msg) (tea.Cmd, bool) {
	keyStr, ok := keyString(msg)
	if !ok {
		return nil, false
	}

	action := shortcut.Dispatch(parseShortcutEvent(keyStr), m.uiState())
	if action != shortcut.PassThrough {
		return m.applyShortcut(action)
	}

	if m.input.CommandPickerIsOpen() {
		switch keyStr {
		case "up", "ctrl+k":
			m.input.CommandPickerMove(-1)
			return nil, true
		case "down", "ctrl+j":
			m.input.CommandPickerMove(1)
			return nil, true
		}
	}

	busy := m.engine.Processing(m.sessionID)
	if handler, ok := keyHandlers[keyStr]; ok {
		return handler(m, keyEventContext{key: keyStr, busy: busy})
	}
	return nil, false
}

func (m *Model) applyShortcut(action shortcut.Action) (tea.Cmd, bool) {
	switch action {
	case shortcut.ResolvePermission:
		return m.resolvePermissionEscape(), true
	case shortcut.CancelRecording:
		_ = m.recorder.Cancel()
		m.setRecording(false)
		return m.status.Info("recording discarded"), true
	case shortcut.AcceptRecording:
		return m.acceptRecording(), true
	case shortcut.ClearInput:
		m.input.SetValue("")
		return nil, true
	case shortcut.CancelPrompt:
		m.engine.Cancel(m.sessionID)
		return m.status.Info("canceling…"), true
	case shortcut.ToggleRecording:
		if m.recording {
			return m.acceptRecording(), true
		}
		return m.startRecording(), true
	}
	return nil, false
}

// startRecording flips the flag only after the capture process started;
// a failed start leaves the composer in its normal state.
func (m *Model) startRecording() tea.Cmd {
	if err := m.recorder.Start(); err != nil {
		return m.status.Error(err)
	}
	m.setRecording(true)
	return nil
}

func (m *Model) acceptRecording() tea.Cmd {
	path, err := m.recorder.Stop()
	m.setRecording(false)
	if err != nil {
		return m.status.Error(err)
	}
	m.input.AddAttachment(message.Attachment{Path: path, MimeType: "audio/wav"})
	return m.status.Info("voice note attached")
}

func (m *Model) setRecording(on bool) {
	m.recording = on
	m.input.SetRecording(on)
	m.layout()
	m.refreshHelp()
}

// resolvePermissionEscape answers the active permission request the way
// escape means: the first negative option, else the last one. Without an
// active request only the local overlay state is dropped.
func (m *Model) resolvePermissionEscape() tea.Cmd {
	req, ok := m.ui.currentRequest()
	if !ok {
		return m.ui.ensureCleared()
	}
	if m.engine.Processing(req.SessionID) {
		m.engine.Cancel(req.SessionID)
	}
	if opt, found := permission.ChooseEscapeOption(req.Options); found {
		m.permissions.Resolve(req, opt)
	} else {
		m.permissions.Deny(req)
	}
	return m.ui.ensureCleared()
}

func handleQuitKey(m *Model, _ keyEventContext) (tea.Cmd, bool) {
	return tea.Quit, true
}

func handleHelpToggleKey(m *Model, _ keyEventContext) (tea.Cmd, bool) {
	if m.input.IsFocused() {
		return nil, false
	}
	m.status.ToggleFullHelp()
	m.refreshHelp()
	m.layout()
	return nil, true
}

func handleTabKey(m *Model, _ keyEventContext) (tea.Cmd, bool) {
	if m.messages.HasFocus() {
		m.messages.ClearFocus()
		cmd := m.input.Focus()
		m.refreshHelp()
		return cmd, true
	}
	if m.messages.FocusLast() {
		cmd := m.input.Blur()
		m.refreshHelp()
		return cmd, true
	}
	cmd := m.input.Focus()
	m.refreshHelp()
	return cmd, true
}

func handleFocusPrevKey(m *Model, _ keyEventContext) (tea.Cmd, bool) {
	if m.messages.FocusPrev() {
		cmd := m.input.Blur()
		m.refreshHelp()
		return cmd, true
	}
	return nil, false
}

func handleFocusNextKey(m *Model, _ keyEventContext) (tea.Cmd, bool) {
	if m.messages.FocusNext() {
		cmd := m.input.Blur()
		m.refreshHelp()
		return cmd, true
	}
	return nil, false
}

func handlePrevMessageKey(m *Model, ctx keyEventContext) (tea.Cmd, bool) {
	if m.input.IsFocused() {
		return nil, false
	}
	m.messages.FocusPrev()
	return nil, true
}

func handleNextMessageKey(m *Model, ctx keyEventContext) (tea.Cmd, bool) {
	if m.input.IsFocused() {
		return nil, false
	}
	m.messages.FocusNext()
	return nil, true
}

func handleCopyKey(m *Model, _ keyEventContext) (tea.Cmd, bool) {
	if m.input.IsFocused() || !m.messages.HasFocus() {
		return nil, false
	}
	if err := m.messages.CopyFocused(); err != nil {
		return m.status.Error(err), true
	}
	return m.status.Info("copied to clipboard"), true
}

func handleHistoryPrevKey(m *Model, _ keyEventContext) (tea.Cmd, bool) {
	if !m.input.IsFocused() {
		m.messages.FocusPrev()
		return nil, true
	}
	if m.input.CommandPickerIsOpen() {
		return nil, false
	}
	val := m.input.Value()
	if val != "" && m.historyIdx >= len(m.history) {
		return nil, false
	}
	if m.historyIdx > 0 {
		m.historyIdx--
		m.input.SetValue(m.history[m.historyIdx])
	}
	return nil, true
}

func handleHistoryNextKey(m *Model, _ keyEventContext) (tea.Cmd, bool) {
	if !m.input.IsFocused() {
		m.messages.FocusNext()
		return nil, true
	}
	if m.input.CommandPickerIsOpen() {
		return nil, false
	}
	val := m.input.Value()
	if val != "" && m.historyIdx >= len(m.history) {
		return nil, false
	}
	switch {
	case m.historyIdx < len(m.history)-1:
		m.historyIdx++
		m.input.SetValue(m.history[m.historyIdx])
	case m.historyIdx == len(m.history)-1:
		m.historyIdx = len(m.history)
		m.input.SetValue("")
	}
	return nil, true
}

func handleEscapeKey(m *Model, ctx keyEventContext) (tea.Cmd, bool) {
	// The dispatcher already claimed esc for permission, recording,
	// cancel, and clear. What reaches here is focus release.
	m.messages.ClearFocus()
	m.refreshHelp()
	return m.input.Focus(), true
}

func handleNewlineKey(m *Model, _ keyEventContext) (tea.Cmd, bool) {
	if m.input.IsFocused() && !m.input.CommandPickerIsOpen() {
		m.input.InsertNewline()
		return nil, true
	}
	return nil, false
}

func handleSessionsKey(m *Model, _ keyEventContext) (tea.Cmd, bool) {
	return m.OpenSessionList(), true
}

func handleEnterKey(m *Model, ctx keyEventContext) (tea.Cmd, bool) {
	if m.input.CommandPickerIsOpen() {
		cmd, ok := m.input.SelectCommand()
		if ok && !cmd.RequiresArgument {
			return m.submitInput(strings.TrimSpace(m.input.Value())), true
		}
		return nil, true
	}
	if !m.input.IsFocused() {
		if call, result, ok := m.messages.FocusedToolEntry(); ok {
			return m.openToolDetail(call, result), true
		}
		return nil, true
	}
	if ctx.busy {
		return m.status.Warn("still responding, esc to cancel"), true
	}
	return m.submitInput(strings.TrimSpace(m.input.Value())), true
}

// OpenSessionList is part of the commands.Context interface.
func (m *Model) OpenSessionList() tea.Cmd {
	convs, err := m.convStore.List(context.Background())
	if err != nil {
		return m.status.Error(err)
	}
	m.convModal = cmpconversations.New(convs, m.sessionID)
	initCmd := m.convModal.Init()
	var sizeCmd tea.Cmd
	if m.w > 0 && m.h > 0 {
		_, sizeCmd = m.convModal.Update(tea.WindowSizeMsg{Width: m.w, Height: m.h})
	}
	return tea.Batch(initCmd, sizeCmd, m.input.Blur())
}
