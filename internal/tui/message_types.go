package tui

import (
	tea "github.com/charmbracelet/bubbletea/v2"

	"tandem/config"
	"tandem/internal/permission"
	"tandem/internal/pubsub"
)

// agentEventMsg wraps one engine event for the update loop.
type agentEventMsg struct {
	SessionID string
	Event     any
}

type permissionRequestEventMsg struct {
	Event pubsub.Event[permission.Request]
}

type permissionNotificationEventMsg struct {
	Event pubsub.Event[permission.Notification]
}

type configReloadedMsg struct {
	Event pubsub.Event[config.Config]
}

// Event waiters: each blocks on its channel and re-arms from the handler.

func (m *Model) waitAgentEvent() tea.Cmd {
	ch := m.eventCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *Model) waitPermissionRequestEvent() tea.Cmd {
	if m.permissionReqCh == nil {
		return nil
	}
	return func() tea.Msg {
		evt, ok := <-m.permissionReqCh
		if !ok {
			return nil
		}
		return permissionRequestEventMsg{Event: evt}
	}
}

func (m *Model) waitPermissionNotificationEvent() tea.Cmd {
	if m.permissionNotifCh == nil {
		return nil
	}
	return func() tea.Msg {
		evt, ok := <-m.permissionNotifCh
		if !ok {
			return nil
		}
		return permissionNotificationEventMsg{Event: evt}
	}
}

func (m *Model) waitConfigEvent() tea.Cmd {
	if m.configCh == nil {
		return nil
	}
	return func() tea.Msg {
		evt, ok := <-m.configCh
		if !ok {
			return nil
		}
		return configReloadedMsg{Event: evt}
	}
}
