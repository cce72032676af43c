package messages

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/rivo/uniseg"

	"tandem/internal/message"
	"tandem/internal/tui/styles"
)

type toolStatus int

const (
	toolPending toolStatus = iota
	toolAwaitingPermission
	toolRunning
	toolDone
	toolError
	toolDenied
)

// toolItem is a tool invocation row: name, a one-line argument summary,
// and a status glyph. Enter on a focused row opens the detail overlay.
type toolItem struct {
	call   message.ToolCall
	result *message.ToolResult
	status toolStatus
}

func (ti *toolItem) focusable() bool { return true }

func (ti *toolItem) plain() string {
	if ti.result != nil {
		return ti.result.Content
	}
	return ti.call.Input
}

func (ti *toolItem) setResult(res message.ToolResult) {
	ti.result = &res
	if res.IsError {
		ti.status = toolError
	} else {
		ti.status = toolDone
	}
}

func (ti *toolItem) statusGlyph() (string, lipgloss.Style) {
	t := styles.CurrentTheme()
	switch ti.status {
	case toolAwaitingPermission:
		return "?", lipgloss.NewStyle().Foreground(t.Warning)
	case toolRunning:
		return "…", lipgloss.NewStyle().Foreground(t.Info)
	case toolDone:
		return "✓", lipgloss.NewStyle().Foreground(t.Success)
	case toolError:
		return "✗", lipgloss.NewStyle().Foreground(t.Error)
	case toolDenied:
		return "⊘", lipgloss.NewStyle().Foreground(t.Error)
	default:
		return "·", lipgloss.NewStyle().Foreground(t.FgMuted)
	}
}

func (ti *toolItem) render(width int, focused bool) string {
	t := styles.CurrentTheme()
	glyph, glyphStyle := ti.statusGlyph()

	name := lipgloss.NewStyle().Foreground(t.Secondary).Bold(true).Render(ti.call.Name)
	summary := argSummary(ti.call.Input, width-lipgloss.Width(ti.call.Name)-8)
	line := glyphStyle.Render(glyph) + " " + name
	if summary != "" {
		line += lipgloss.NewStyle().Foreground(t.FgMuted).Render(" " + summary)
	}
	if focused {
		line += lipgloss.NewStyle().Foreground(t.FgSubtle).Render("  (enter: details)")
	}

	border := lipgloss.Border{Left: "▌"}
	style := t.S().Base.
		BorderLeft(true).
		BorderStyle(border).
		BorderForeground(t.Border).
		PaddingLeft(1).
		Width(width)
	if focused {
		style = style.BorderForeground(t.Primary)
	}
	return style.Render(line)
}

// argSummary flattens raw JSON input to a single line truncated on
// grapheme boundaries so combined characters never split.
func argSummary(input string, max int) string {
	s := strings.Join(strings.Fields(input), " ")
	if max < 8 {
		max = 8
	}
	if uniseg.GraphemeClusterCount(s) <= max {
		return s
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	n := 0
	for g.Next() && n < max-1 {
		b.WriteString(g.Str())
		n++
	}
	return b.String() + "…"
}
