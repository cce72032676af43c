package commands

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
)

type fakeContext struct {
	cleared   bool
	newConv   bool
	sessions  bool
	attached  []string
	attachCmd tea.Cmd
	help      bool
	quit      bool
}

func (f *fakeContext) ClearConversation() { f.cleared = true }
func (f *fakeContext) NewConversation() tea.Cmd {
	f.newConv = true
	return nil
}
func (f *fakeContext) OpenSessionList() tea.Cmd {
	f.sessions = true
	return nil
}
func (f *fakeContext) AttachFile(path string) tea.Cmd {
	f.attached = append(f.attached, path)
	return f.attachCmd
}
func (f *fakeContext) ShowHelp() { f.help = true }
func (f *fakeContext) Quit() tea.Cmd {
	f.quit = true
	return tea.Quit
}

func TestExecuteDispatch(t *testing.T) {
	cases := []struct {
		name        string
		input       string
		wantHandled bool
		check       func(t *testing.T, f *fakeContext)
	}{
		{
			name:        "clear",
			input:       "/clear",
			wantHandled: true,
			check: func(t *testing.T, f *fakeContext) {
				if !f.cleared {
					t.Error("ClearConversation not called")
				}
			},
		},
		{
			name:        "sessions",
			input:       "  /sessions  ",
			wantHandled: true,
			check: func(t *testing.T, f *fakeContext) {
				if !f.sessions {
					t.Error("OpenSessionList not called")
				}
			},
		},
		{
			name:        "attach with argument",
			input:       "/attach notes/todo.md",
			wantHandled: true,
			check: func(t *testing.T, f *fakeContext) {
				if len(f.attached) != 1 || f.attached[0] != "notes/todo.md" {
					t.Errorf("attached = %v", f.attached)
				}
			},
		},
		{
			name:        "attach without argument is a no-op but consumed",
			input:       "/attach",
			wantHandled: true,
			check: func(t *testing.T, f *fakeContext) {
				if len(f.attached) != 0 {
					t.Errorf("attached = %v", f.attached)
				}
			},
		},
		{
			name:        "prefix of a command name is not that command",
			input:       "/clearly not a command",
			wantHandled: false,
		},
		{
			name:        "plain prompt goes to the agent",
			input:       "explain this stack trace",
			wantHandled: false,
		},
		{
			name:        "unknown slash command is forwarded",
			input:       "/frobnicate",
			wantHandled: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeContext{}
			handled, _ := Execute(tc.input, f)
			if handled != tc.wantHandled {
				t.Fatalf("Execute(%q) handled = %v, want %v", tc.input, handled, tc.wantHandled)
			}
			if tc.check != nil {
				tc.check(t, f)
			}
		})
	}
}

func TestAttachFeedbackCmdIsReturned(t *testing.T) {
	// A bad path must produce visible feedback, not vanish.
	feedback := func() tea.Msg { return "no such file" }
	f := &fakeContext{attachCmd: feedback}
	handled, cmd := Execute("/attach missing.txt", f)
	if !handled {
		t.Fatal("attach not dispatched")
	}
	if cmd == nil {
		t.Fatal("attach dropped the feedback command")
	}
}

func TestQuitReturnsCmd(t *testing.T) {
	f := &fakeContext{}
	handled, cmd := Execute("/quit", f)
	if !handled || !f.quit {
		t.Fatal("quit not dispatched")
	}
	if cmd == nil {
		t.Fatal("quit returned no tea.Cmd")
	}
}

func TestListCoversRegistry(t *testing.T) {
	cmds := List()
	if len(cmds) == 0 {
		t.Fatal("no commands registered")
	}
	for _, c := range cmds {
		if c.Name == "" || c.Description == "" {
			t.Errorf("command %+v missing name or description", c)
		}
	}
}
