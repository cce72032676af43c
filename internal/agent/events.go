package agent

import "tandem/internal/message"

// Events emitted by the engine while a prompt runs. The TUI forwards them
// into its update loop as messages.
type (
	StreamStartedEvent struct{ SessionID string }

	// StreamDeltaEvent carries one chunk of assistant text.
	StreamDeltaEvent struct {
		SessionID string
		Text      string
	}

	ToolCallStartedEvent struct {
		SessionID string
		Call      message.ToolCall
	}

	ToolCallFinishedEvent struct {
		SessionID string
		Result    message.ToolResult
	}

	// TerminalLaunchedEvent reports a background process started by the
	// run_terminal tool. The UI starts an output poller for it.
	TerminalLaunchedEvent struct {
		SessionID  string
		TerminalID string
		Command    string
	}

	// StreamDoneEvent ends the turn. Canceled is set when the user aborted.
	StreamDoneEvent struct {
		SessionID string
		Err       error
		Canceled  bool
	}
)
