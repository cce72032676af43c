package messages

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"tandem/internal/message"
	"tandem/internal/tui/styles"
)

// timelineItem is one rendered row group in the conversation.
type timelineItem interface {
	render(width int, focused bool) string
	// plain is what copy-to-clipboard yields.
	plain() string
	focusable() bool
}

type userItem struct {
	text        string
	attachments []message.Attachment
}

func (u *userItem) focusable() bool { return true }

func (u *userItem) plain() string { return u.text }

func (u *userItem) render(width int, focused bool) string {
	t := styles.CurrentTheme()
	border := lipgloss.Border{Left: "▌"}
	style := t.S().Base.
		BorderLeft(true).
		BorderStyle(border).
		BorderForeground(t.Secondary).
		PaddingLeft(1).
		Width(width)
	if focused {
		style = style.BorderForeground(t.Primary)
	}
	body := u.text
	if len(u.attachments) > 0 {
		names := make([]string, len(u.attachments))
		for i, a := range u.attachments {
			names[i] = filepath.Base(a.Path)
		}
		body += "\n" + lipgloss.NewStyle().Foreground(t.FgMuted).Render("📎 "+strings.Join(names, ", "))
	}
	return style.Render(body)
}

type assistantItem struct {
	model     string
	text      string
	streaming bool
	errText   string

	// cached render, invalidated on every append
	cachedWidth int
	cached      string
	cachedDirty bool
}

func (a *assistantItem) focusable() bool { return true }

func (a *assistantItem) plain() string { return a.text }

func (a *assistantItem) append(delta string) {
	a.text += delta
	a.cachedDirty = true
}

func (a *assistantItem) render(width int, focused bool) string {
	t := styles.CurrentTheme()
	if a.cachedDirty || a.cachedWidth != width || a.cached == "" {
		a.cached = renderMarkdown(width-2, a.text)
		a.cachedWidth = width
		a.cachedDirty = false
	}
	body := a.cached
	if a.errText != "" {
		errLine := lipgloss.NewStyle().Foreground(t.Error).Render(a.errText)
		if body == "" {
			body = errLine
		} else {
			body += "\n" + errLine
		}
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
	if a.model != "" {
		header := lipgloss.NewStyle().Foreground(t.FgSubtle).Render(a.model)
		return style.Render(header + "\n" + body)
	}
	return style.Render(body)
}
