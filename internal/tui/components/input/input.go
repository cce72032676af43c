// Package input is the prompt composer: a textarea plus the slash-command
// picker, pending attachment chips, and the voice-recording status line.
package input

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textarea"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tandem/internal/commands"
	"tandem/internal/message"
	"tandem/internal/tui/styles"
)

type Input struct {
	w, h int
	ta   *textarea.Model
	f    bool // focused

	inited bool
	picker commandPicker

	attachments []message.Attachment
	recording   bool
}

func (c *Input) initIfNeeded() {
	if c.inited {
		return
	}
	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 100000
	ta.ShowLineNumbers = false

	t := styles.CurrentTheme()
	ta.SetStyles(t.S().TextArea)

	c.ta = ta
	c.f = true
	c.inited = true
	c.picker = commandPicker{}
}

func (c *Input) Init() tea.Cmd {
	c.initIfNeeded()
	return nil
}

func (c *Input) Update(msg tea.Msg) tea.Cmd {
	c.initIfNeeded()
	if _, isKey := msg.(tea.KeyPressMsg); isKey && !c.f {
		return nil
	}
	var cmd tea.Cmd
	c.ta, cmd = c.ta.Update(msg)
	c.refreshPickerState()
	return cmd
}

func (c *Input) SetSize(w, h int) {
	c.w, c.h = w, h
	c.initIfNeeded()
	if w > 0 {
		c.ta.SetWidth(w)
		maxWidth := w - c.CommandPickerXOffset()
		if maxWidth <= 0 {
			maxWidth = w
		}
		c.picker.SetMaxWidth(maxWidth)
	}
	if h > 0 {
		c.ta.SetHeight(h)
	}
}

func (c *Input) View() string {
	c.initIfNeeded()
	t := styles.CurrentTheme()
	parts := []string{}
	if c.recording {
		dot := lipgloss.NewStyle().Foreground(t.Error).Render("●")
		hint := lipgloss.NewStyle().Foreground(t.FgMuted).Render(" recording · enter to accept, esc to discard")
		parts = append(parts, dot+hint)
	}
	if len(c.attachments) > 0 {
		chips := make([]string, len(c.attachments))
		chipStyle := lipgloss.NewStyle().
			Foreground(t.FgSelected).
			Background(t.Secondary).
			Padding(0, 1)
		for i, a := range c.attachments {
			chips[i] = chipStyle.Render("📎 " + filepath.Base(a.Path))
		}
		parts = append(parts, strings.Join(chips, " "))
	}
	parts = append(parts, c.ta.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// ExtraHeight reports the rows above the textarea (chips, recording line),
// so layout can reserve them.
func (c *Input) ExtraHeight() int {
	n := 0
	if c.recording {
		n++
	}
	if len(c.attachments) > 0 {
		n++
	}
	return n
}

func (c *Input) InsertNewline() {
	c.initIfNeeded()
	c.ta.InsertString("\n")
}

func (c *Input) Value() string {
	c.initIfNeeded()
	return c.ta.Value()
}

func (c *Input) SetValue(v string) {
	c.initIfNeeded()
	c.ta.SetValue(v)
	c.refreshPickerState()
}

func (c *Input) Focus() tea.Cmd {
	c.initIfNeeded()
	c.f = true
	return c.ta.Focus()
}

func (c *Input) Blur() tea.Cmd {
	c.initIfNeeded()
	c.f = false
	c.ta.Blur()
	c.picker.Close()
	return nil
}

func (c *Input) IsFocused() bool { c.initIfNeeded(); return c.f }

func (c *Input) SetRecording(on bool) { c.recording = on }

func (c *Input) Recording() bool { return c.recording }

func (c *Input) AddAttachment(a message.Attachment) {
	c.attachments = append(c.attachments, a)
}

func (c *Input) Attachments() []message.Attachment {
	out := make([]message.Attachment, len(c.attachments))
	copy(out, c.attachments)
	return out
}

func (c *Input) ClearAttachments() { c.attachments = nil }

// refreshPickerState opens or closes the dropdown based on the current
// value: open only while the value is a single "/"-prefixed word.
func (c *Input) refreshPickerState() {
	value := c.ta.Value()
	if value == "" || !strings.HasPrefix(value, "/") || strings.ContainsAny(value, " \n\t") {
		c.picker.Close()
		return
	}
	if !c.picker.IsOpen() {
		maxWidth := c.w - c.CommandPickerXOffset()
		if maxWidth <= 0 {
			maxWidth = c.w
		}
		c.picker.Open(commands.List(), maxWidth)
	}
	c.picker.Filter(strings.TrimPrefix(value, "/"))
}

func (c *Input) CommandPickerIsOpen() bool { return c.picker.IsActive() }

func (c *Input) CommandPickerView() string {
	if !c.picker.IsActive() {
		return ""
	}
	return c.picker.View()
}

func (c *Input) CommandPickerHeight() int { return c.picker.Height() }

func (c *Input) CommandPickerXOffset() int {
	c.initIfNeeded()
	return lipgloss.Width(c.ta.Prompt)
}

func (c *Input) CommandPickerMove(delta int) {
	if delta > 0 {
		c.picker.MoveNext()
	} else {
		c.picker.MovePrev()
	}
}

// SelectCommand applies the highlighted picker entry to the textarea and
// closes the dropdown. The caller decides whether to submit.
func (c *Input) SelectCommand() (commands.Command, bool) {
	cmd, ok := c.picker.Selected()
	if !ok {
		return commands.Command{}, false
	}
	value := cmd.Name
	if cmd.RequiresArgument {
		value += " "
	}
	c.ta.SetValue(value)
	c.picker.Close()
	return cmd, true
}
