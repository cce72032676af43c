package tui

import (
	"encoding/json"
	"strings"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tandem/internal/message"
	"tandem/internal/tui/highlight"
	"tandem/internal/tui/styles"
)

// toolDetailOverlay shows the full parameters and result of one tool call
// in a scrollable pane over the conversation.
type toolDetailOverlay struct {
	call   message.ToolCall
	result message.ToolResult
	vp     viewport.Model
	w, h   int
	inited bool
}

func newToolDetailOverlay(call message.ToolCall, result message.ToolResult) *toolDetailOverlay {
	return &toolDetailOverlay{call: call, result: result}
}

func (o *toolDetailOverlay) SetSize(w, h int) {
	if !o.inited {
		o.vp = viewport.New()
		o.inited = true
	}
	o.w = w
	o.h = h

	boxW, boxH := o.boxSize()
	o.vp.SetWidth(boxW - 4)
	o.vp.SetHeight(boxH - 6)
	o.vp.SetContent(o.content(boxW - 4))
}

func (o *toolDetailOverlay) boxSize() (int, int) {
	w := o.w - 8
	if w > 100 {
		w = 100
	}
	if w < 40 {
		w = 40
	}
	h := o.h - 4
	if h > 40 {
		h = 40
	}
	if h < 10 {
		h = 10
	}
	return w, h
}

func (o *toolDetailOverlay) content(width int) string {
	t := styles.CurrentTheme()
	var b strings.Builder

	b.WriteString(t.S().Subtitle.Render("Parameters"))
	b.WriteString("\n")
	b.WriteString(o.renderParams(width))

	b.WriteString("\n\n")
	b.WriteString(t.S().Subtitle.Render("Result"))
	b.WriteString("\n")
	switch {
	case o.result.Pending:
		b.WriteString(t.S().Muted.Render("still running"))
	case o.result.Content == "":
		b.WriteString(t.S().Muted.Render("no output"))
	case o.result.IsError:
		b.WriteString(lipgloss.NewStyle().Foreground(t.Error).Width(width).Render(o.result.Content))
	default:
		b.WriteString(t.S().Text.Width(width).Render(o.result.Content))
	}
	return b.String()
}

func (o *toolDetailOverlay) renderParams(width int) string {
	t := styles.CurrentTheme()
	raw := o.call.Input
	if raw == "" {
		return t.S().Muted.Render("none")
	}
	var parsed any
	pretty := raw
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		if out, err := json.MarshalIndent(parsed, "", "  "); err == nil {
			pretty = string(out)
		}
	}
	if hl, err := highlight.SyntaxHighlight(pretty, "params.json"); err == nil {
		return hl
	}
	return t.S().Text.Width(width).Render(pretty)
}

func (o *toolDetailOverlay) Update(msg tea.Msg) tea.Cmd {
	if !o.inited {
		return nil
	}
	var cmd tea.Cmd
	o.vp, cmd = o.vp.Update(msg)
	return cmd
}

func (o *toolDetailOverlay) View() string {
	t := styles.CurrentTheme()
	boxW, _ := o.boxSize()

	title := t.S().Title.Render(o.call.Name)
	hint := t.S().Subtle.Render("esc to close · scroll with mouse or arrows")

	body := strings.Join([]string{title, "", o.vp.View(), "", hint}, "\n")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1).
		Width(boxW).
		Render(body)
}

func (m *Model) openToolDetail(call message.ToolCall, result message.ToolResult) tea.Cmd {
	m.toolDetail = newToolDetailOverlay(call, result)
	m.toolDetail.SetSize(m.w, m.h)
	return m.input.Blur()
}
