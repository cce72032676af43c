package tui

import (
	"github.com/charmbracelet/lipgloss/v2"

	cmptermpreview "tandem/internal/tui/components/terminalpreview"
)

const (
	composerMinHeight = 3
	composerPadding   = 1
	previewMaxHeight  = 8
)

// layout recomputes component sizes from the window. The timeline gets
// whatever is left after the fixed-height rows.
func (m *Model) layout() {
	if m.w <= 0 || m.h <= 0 {
		return
	}

	m.header.SetWidth(m.w)
	m.status.SetWidth(m.w)
	m.input.SetSize(m.w-2*composerPadding, composerMinHeight+m.input.ExtraHeight())

	headerH := lipgloss.Height(m.header.View())
	m.statusH = m.status.Height()
	inputH := composerMinHeight + m.input.ExtraHeight()

	previewH := 0
	for _, p := range m.visiblePreviews() {
		p.SetWidth(m.w - 2*composerPadding)
		p.SetMaxHeight(previewMaxHeight)
		previewH += lipgloss.Height(p.View())
	}

	bodyH := m.h - headerH - previewH - inputH - m.statusH
	if bodyH < 1 {
		bodyH = 1
	}
	m.messages.SetSize(m.w, bodyH)
}

// visiblePreviews returns the newest previews that fit above the composer.
func (m *Model) visiblePreviews() []*cmptermpreview.Model {
	if len(m.previews) <= maxVisiblePreviews {
		return m.previews
	}
	return m.previews[len(m.previews)-maxVisiblePreviews:]
}
