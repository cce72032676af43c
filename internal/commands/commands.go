// Package commands implements the slash commands handled client-side. A
// handled command never reaches the agent.
package commands

import (
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea/v2"
)

type Command struct {
	Name             string
	Description      string
	RequiresArgument bool
	ArgumentHint     string
	Action           func(Context, string) tea.Cmd
}

// Context exposes what commands need from the application model.
type Context interface {
	ClearConversation()
	NewConversation() tea.Cmd
	OpenSessionList() tea.Cmd
	// AttachFile stages a file for the next prompt. The returned command
	// carries user feedback, success or failure.
	AttachFile(path string) tea.Cmd
	ShowHelp()
	Quit() tea.Cmd
}

var registry = []Command{
	{
		Name:        "/clear",
		Description: "delete all messages in the current conversation",
		Action: func(ctx Context, _ string) tea.Cmd {
			ctx.ClearConversation()
			return nil
		},
	},
	{
		Name:        "/new",
		Description: "start a new conversation",
		Action: func(ctx Context, _ string) tea.Cmd {
			return ctx.NewConversation()
		},
	},
	{
		Name:        "/sessions",
		Description: "browse and switch conversations",
		Action: func(ctx Context, _ string) tea.Cmd {
			return ctx.OpenSessionList()
		},
	},
	{
		Name:             "/attach",
		Description:      "attach a file to the next prompt",
		RequiresArgument: true,
		ArgumentHint:     "path",
		Action: func(ctx Context, args string) tea.Cmd {
			if args == "" {
				return nil
			}
			return ctx.AttachFile(args)
		},
	},
	{
		Name:        "/help",
		Description: "show key bindings and commands",
		Action: func(ctx Context, _ string) tea.Cmd {
			ctx.ShowHelp()
			return nil
		},
	},
	{
		Name:        "/quit",
		Description: "exit tandem",
		Action: func(ctx Context, _ string) tea.Cmd {
			return ctx.Quit()
		},
	},
}

// List returns every registered command, for the composer's picker.
func List() []Command {
	out := make([]Command, len(registry))
	copy(out, registry)
	return out
}

// Execute runs text as a command if it names one. The bool reports whether
// the input was consumed; false means the text should go to the agent.
func Execute(text string, ctx Context) (bool, tea.Cmd) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return false, nil
	}
	for _, c := range registry {
		if !strings.HasPrefix(trimmed, c.Name) {
			continue
		}
		// "/clearx" must not match "/clear".
		if len(trimmed) > len(c.Name) && !unicode.IsSpace(rune(trimmed[len(c.Name)])) {
			continue
		}
		args := strings.TrimSpace(trimmed[len(c.Name):])
		if c.Action == nil {
			return true, nil
		}
		return true, c.Action(ctx, args)
	}
	return false, nil
}
