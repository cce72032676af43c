// Package header renders the one-line banner: app name, version, a
// gradient pattern, and the current conversation title and model.
package header

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"tandem/internal/tui/styles"
	"tandem/version"
)

type Header struct {
	width int

	title string
	model string
}

func New() *Header { return &Header{} }

func (h *Header) SetWidth(w int) { h.width = w }

// SetMeta updates the conversation title and model name shown on the right.
func (h *Header) SetMeta(title, model string) {
	h.title, h.model = title, model
}

func (h *Header) View() string {
	if h.width <= 0 {
		return ""
	}
	t := styles.CurrentTheme()

	label := "Tandem"
	versionStr := " " + version.Get()

	var right string
	if h.title != "" || h.model != "" {
		parts := make([]string, 0, 2)
		if h.title != "" {
			parts = append(parts, h.title)
		}
		if h.model != "" {
			parts = append(parts, h.model)
		}
		right = " " + strings.Join(parts, " · ")
	}

	available := h.width - lipgloss.Width(label) - lipgloss.Width(versionStr) - lipgloss.Width(right)

	line := ""
	if available > 2 {
		repeat := (available - 2) / 2
		if repeat > 0 {
			line = " " + strings.Repeat("⁘⁙", repeat) + "⁘"
		}
	}

	line = styles.ApplyBoldForegroundGrad(line, t.Primary, t.BgSubtle)
	styledLabel := t.S().Title.Bold(true).Render(label)
	styledVersion := lipgloss.NewStyle().Foreground(t.Primary).Render(versionStr)
	styledRight := lipgloss.NewStyle().Foreground(t.FgMuted).Render(right)

	row := lipgloss.JoinHorizontal(lipgloss.Top, styledLabel, styledVersion, line, styledRight)
	return t.S().Base.Width(h.width).Render(row)
}
