package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"tandem/internal/tui/styles"
)

func (m *Model) View() string {
	if m == nil || m.w == 0 || m.h == 0 {
		return ""
	}

	if m.toolDetail != nil {
		return lipgloss.Place(m.w, m.h, lipgloss.Center, lipgloss.Center, m.toolDetail.View())
	}

	if m.convModal != nil {
		return lipgloss.Place(m.w, m.h, lipgloss.Center, lipgloss.Center, m.convModal.View())
	}

	base := m.renderBaseView()

	if m.ui.active() {
		overlay := m.ui.render(m.w, m.h)
		x := (m.w - lipgloss.Width(overlay)) / 2
		if x < 0 {
			x = 0
		}
		headerH := lipgloss.Height(m.header.View())
		bodyH := lipgloss.Height(m.messages.View())
		y := headerH + bodyH - lipgloss.Height(overlay)
		if y < headerH {
			y = headerH
		}
		base = overlayString(base, overlay, x, y)
	}

	return base
}

func (m *Model) renderBaseView() string {
	headerView := m.header.View()
	messagesView := m.messages.View()

	sections := []string{headerView, messagesView}

	for _, p := range m.visiblePreviews() {
		view := lipgloss.NewStyle().PaddingLeft(composerPadding).Render(p.View())
		sections = append(sections, view)
	}

	inputView := lipgloss.NewStyle().
		PaddingLeft(composerPadding).
		PaddingRight(composerPadding).
		Render(m.input.View())
	sections = append(sections, inputView)

	statusView := lipgloss.NewStyle().
		Width(m.w).
		MaxWidth(m.w).
		Render(m.status.View())
	sections = append(sections, statusView)

	t := styles.CurrentTheme()
	base := t.S().Base.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))

	if overlay := m.input.CommandPickerView(); overlay != "" {
		headerH := lipgloss.Height(headerView)
		overlayY := headerH + lipgloss.Height(messagesView) - m.input.CommandPickerHeight()
		if overlayY < 0 {
			overlayY = 0
		}
		x := composerPadding + m.input.CommandPickerXOffset()
		base = overlayString(base, overlay, x, overlayY)
	}

	return base
}

// overlayString paints overlay on top of base at column x, row y, keeping
// the base's styling outside the covered cells.
func overlayString(base, overlay string, x, y int) string {
	if overlay == "" {
		return base
	}

	baseLines := strings.Split(base, "\n")
	overlayLines := strings.Split(overlay, "\n")

	required := y + len(overlayLines)
	for len(baseLines) < required {
		baseLines = append(baseLines, "")
	}

	for i, line := range overlayLines {
		idx := y + i
		if idx < 0 || idx >= len(baseLines) {
			continue
		}

		baseLine := baseLines[idx]

		left := ansi.Truncate(baseLine, x, "")
		leftWidth := lipgloss.Width(left)
		if leftWidth < x {
			left += strings.Repeat(" ", x-leftWidth)
		}

		overlayWidth := lipgloss.Width(line)
		right := ansi.TruncateLeft(baseLine, x+overlayWidth, "")

		baseLines[idx] = left + line + right
	}

	return strings.Join(baseLines, "\n")
}
