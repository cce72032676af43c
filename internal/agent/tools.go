package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"tandem/internal/permission"
	"tandem/internal/terminal"
)

// toolOutcome is what executing one tool call produced.
type toolOutcome struct {
	content string
	isError bool
	// terminalID is set by run_terminal so the UI can attach a poller.
	terminalID string
	command    string
}

func toolSpecs() []ToolSpec {
	return []ToolSpec{
		{
			Type: "function",
			Function: FunctionSpec{
				Name:        "run_terminal",
				Description: "Start a shell command in a background terminal session. Returns the session id; output streams into the terminal preview.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"command": map[string]any{
							"type":        "string",
							"description": "Shell command to run",
						},
					},
					"required": []string{"command"},
				},
			},
		},
		{
			Type: "function",
			Function: FunctionSpec{
				Name:        "read_file",
				Description: "Read a local file and return its contents.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"path": map[string]any{
							"type":        "string",
							"description": "Path of the file to read",
						},
					},
					"required": []string{"path"},
				},
			},
		},
	}
}

// maxReadFileBytes keeps a single tool result from flooding the context.
const maxReadFileBytes = 64 * 1024

func (e *Engine) executeTool(ctx context.Context, sessionID string, call WireToolCall) toolOutcome {
	var params map[string]any
	if err := json.Unmarshal([]byte(call.Function.Arguments), &params); err != nil {
		return toolOutcome{content: fmt.Sprintf("invalid tool arguments: %v", err), isError: true}
	}

	switch call.Function.Name {
	case "run_terminal":
		command, _ := params["command"].(string)
		if command == "" {
			return toolOutcome{content: "run_terminal requires a command", isError: true}
		}
		if !e.requestPermission(sessionID, call, "launch", command, params) {
			return toolOutcome{content: permission.ErrPermissionDenied.Error(), isError: true}
		}
		id, err := e.terminals.Launch(ctx, command)
		if err != nil {
			return toolOutcome{content: err.Error(), isError: true}
		}
		return toolOutcome{
			content:    fmt.Sprintf("started terminal session %s", id),
			terminalID: id,
			command:    command,
		}

	case "read_file":
		path, _ := params["path"].(string)
		if path == "" {
			return toolOutcome{content: "read_file requires a path", isError: true}
		}
		if !e.requestPermission(sessionID, call, "open", path, params) {
			return toolOutcome{content: permission.ErrPermissionDenied.Error(), isError: true}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return toolOutcome{content: err.Error(), isError: true}
		}
		if len(data) > maxReadFileBytes {
			data = data[:maxReadFileBytes]
		}
		return toolOutcome{content: string(data)}

	default:
		return toolOutcome{content: fmt.Sprintf("unknown tool %q", call.Function.Name), isError: true}
	}
}

func (e *Engine) requestPermission(sessionID string, call WireToolCall, action, path string, params map[string]any) bool {
	return e.permissions.Request(permission.CreateRequest{
		SessionID:   sessionID,
		ToolCallID:  call.ID,
		ToolName:    call.Function.Name,
		Description: fmt.Sprintf("%s wants to %s", call.Function.Name, action),
		Action:      action,
		Params:      params,
		Path:        path,
	})
}

// Terminals is the slice of the terminal manager the engine needs.
type Terminals interface {
	Launch(ctx context.Context, command string) (string, error)
}

var _ Terminals = (*terminal.Manager)(nil)
