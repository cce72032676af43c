package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tandem/internal/agent"
	"tandem/internal/message"
	cmptermpreview "tandem/internal/tui/components/terminalpreview"
)

const canceledNotice = "Request has been cancelled."

// requestAgent starts a prompt run. Engine events arrive on eventCh; the
// channel closes when the run ends, which clears it for the next turn.
func (m *Model) requestAgent(sessionID, prompt string, attachments []message.Attachment) tea.Cmd {
	if m.eventCh != nil {
		return m.status.Warn("a prompt is already running")
	}
	ch := make(chan tea.Msg, 32)
	m.eventCh = ch

	go func() {
		defer close(ch)
		m.engine.Run(context.Background(), sessionID, prompt, attachments, func(ev any) {
			ch <- agentEventMsg{SessionID: sessionID, Event: ev}
		})
	}()

	return m.waitAgentEvent()
}

func (m *Model) handleAgentEvent(msg agentEventMsg) tea.Cmd {
	if msg.SessionID != m.sessionID {
		// A run for a session the user switched away from; keep draining.
		if _, done := msg.Event.(agent.StreamDoneEvent); done {
			m.eventCh = nil
			m.refreshHelp()
			return nil
		}
		return m.waitAgentEvent()
	}

	var cmds []tea.Cmd
	switch ev := msg.Event.(type) {
	case agent.StreamStartedEvent:
		m.messages.AddAssistantStart(m.cfg.Model)

	case agent.StreamDeltaEvent:
		m.messages.StopLoading()
		m.messages.AppendAssistant(ev.Text)

	case agent.ToolCallStartedEvent:
		m.messages.EnsureToolCall(ev.Call)

	case agent.ToolCallFinishedEvent:
		m.messages.FinishTool(ev.Result.ToolCallID, ev.Result)

	case agent.TerminalLaunchedEvent:
		cmds = append(cmds, m.addTerminalPreview(ev.TerminalID, ev.Command))

	case agent.StreamDoneEvent:
		m.messages.StopLoading()
		switch {
		case ev.Canceled || errors.Is(ev.Err, context.Canceled):
			m.messages.SetAssistantError(canceledNotice)
		case ev.Err != nil:
			slog.Error("prompt failed", "session", ev.SessionID, "err", ev.Err)
			m.messages.SetAssistantError(ev.Err.Error())
			cmds = append(cmds, m.status.Error(ev.Err))
		default:
			m.messages.EndAssistant()
		}
		m.eventCh = nil
		m.refreshHelp()
		return batchCmds(cmds)
	}

	cmds = append(cmds, m.waitAgentEvent())
	return batchCmds(cmds)
}

func (m *Model) addTerminalPreview(terminalID, command string) tea.Cmd {
	for _, p := range m.previews {
		if p.ID() == terminalID {
			return nil
		}
	}
	preview := cmptermpreview.New(terminalID, command, m.terminals)
	m.previews = append(m.previews, preview)
	m.layout()
	return preview.Start()
}
