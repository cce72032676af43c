package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tandem/internal/permission"
	"tandem/internal/tui/styles"
)

// permissionCallbacks is how the overlay talks back to the model without
// holding a reference to it.
type permissionCallbacks struct {
	resolve    func(permission.Request, permission.Option)
	escape     func() tea.Cmd
	focusInput func() tea.Cmd
	blurInput  func() tea.Cmd
}

type permissionOverlay struct {
	req     permission.Request
	focused int
}

type permissionUI struct {
	overlay   *permissionOverlay
	width     int
	callbacks permissionCallbacks
}

func newPermissionUI(cb permissionCallbacks) *permissionUI {
	return &permissionUI{callbacks: cb}
}

func (u *permissionUI) active() bool { return u.overlay != nil }

func (u *permissionUI) currentRequest() (permission.Request, bool) {
	if u.overlay == nil {
		return permission.Request{}, false
	}
	return u.overlay.req, true
}

func (u *permissionUI) present(req permission.Request) tea.Cmd {
	u.overlay = &permissionOverlay{req: req}
	return u.callbacks.blurInput()
}

// ensureCleared drops the overlay if present and gives the composer focus
// back. Safe to call when nothing is showing.
func (u *permissionUI) ensureCleared() tea.Cmd {
	if u.overlay == nil {
		return nil
	}
	u.overlay = nil
	return u.callbacks.focusInput()
}

func (u *permissionUI) clearIfMatches(toolCallID string) tea.Cmd {
	if u.overlay == nil || u.overlay.req.ToolCallID != toolCallID {
		return nil
	}
	return u.ensureCleared()
}

func (u *permissionUI) resolveFocused() tea.Cmd {
	o := u.overlay
	if o == nil || len(o.req.Options) == 0 {
		return u.ensureCleared()
	}
	opt := o.req.Options[o.focused]
	u.callbacks.resolve(o.req, opt)
	return u.ensureCleared()
}

func (u *permissionUI) resolveKind(match func(string) bool) tea.Cmd {
	o := u.overlay
	if o == nil {
		return nil
	}
	for _, opt := range o.req.Options {
		if match(strings.ToLower(opt.Kind)) {
			u.callbacks.resolve(o.req, opt)
			return u.ensureCleared()
		}
	}
	return nil
}

func (u *permissionUI) handleKey(keyStr string) (tea.Cmd, bool) {
	o := u.overlay
	if o == nil {
		return nil, false
	}
	switch keyStr {
	case "esc":
		return u.callbacks.escape(), true
	case "left", "shift+tab", "h":
		if n := len(o.req.Options); n > 0 {
			o.focused = (o.focused - 1 + n) % n
		}
		return nil, true
	case "right", "tab", "l":
		if n := len(o.req.Options); n > 0 {
			o.focused = (o.focused + 1) % n
		}
		return nil, true
	case "enter", "space":
		return u.resolveFocused(), true
	case "y":
		return u.resolveKind(func(k string) bool {
			return strings.Contains(k, "allow") && !strings.Contains(k, "always")
		}), true
	case "a":
		return u.resolveKind(func(k string) bool {
			return strings.Contains(k, "always")
		}), true
	case "n", "d":
		return u.callbacks.escape(), true
	}
	// Swallow everything else; the prompt is modal.
	return nil, true
}

func (u *permissionUI) render(maxWidth, maxHeight int) string {
	o := u.overlay
	if o == nil {
		return ""
	}
	t := styles.CurrentTheme()

	w := maxWidth - 8
	if w > 76 {
		w = 76
	}
	if w < 30 {
		w = 30
	}
	inner := w - 4

	var b strings.Builder
	b.WriteString(t.S().Title.Render("Permission required"))
	b.WriteString("\n\n")
	b.WriteString(t.S().Text.Render(fmt.Sprintf("%s wants to %s", o.req.ToolName, o.req.Action)))
	if o.req.Description != "" {
		b.WriteString("\n")
		b.WriteString(t.S().Muted.Width(inner).Render(o.req.Description))
	}
	if o.req.Path != "" {
		b.WriteString("\n")
		b.WriteString(t.S().Subtle.Render(o.req.Path))
	}
	if params := formatParams(o.req.Params, inner); params != "" {
		b.WriteString("\n\n")
		b.WriteString(params)
	}
	b.WriteString("\n\n")
	b.WriteString(renderOptionRow(o.req.Options, o.focused, inner))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Padding(1, 2).
		Width(w)
	return box.Render(b.String())
}

func renderOptionRow(opts []permission.Option, focused, width int) string {
	t := styles.CurrentTheme()
	sel := lipgloss.NewStyle().
		Background(t.Primary).
		Foreground(t.FgSelected).
		Padding(0, 1)
	plain := lipgloss.NewStyle().
		Foreground(t.FgMuted).
		Padding(0, 1)

	parts := make([]string, 0, len(opts))
	for i, opt := range opts {
		label := opt.Label
		if label == "" {
			label = opt.ID
		}
		if i == focused {
			parts = append(parts, sel.Render(label))
		} else {
			parts = append(parts, plain.Render(label))
		}
	}
	row := strings.Join(parts, "  ")
	if lipgloss.Width(row) > width {
		row = strings.Join(parts, "\n")
	}
	return row
}

// formatParams renders the request parameters as indented JSON, truncated
// so the overlay never dwarfs the conversation behind it.
func formatParams(params any, width int) string {
	if params == nil {
		return ""
	}
	raw, err := json.MarshalIndent(params, "", "  ")
	if err != nil || string(raw) == "null" || string(raw) == "{}" {
		return ""
	}
	lines := strings.Split(string(raw), "\n")
	const maxLines = 8
	if len(lines) > maxLines {
		lines = append(lines[:maxLines], "…")
	}
	t := styles.CurrentTheme()
	style := t.S().Subtle.Width(width)
	return style.Render(strings.Join(lines, "\n"))
}

// permissionHelpKeyMap replaces the normal help while a prompt is modal.
type permissionHelpKeyMap struct{}

func (permissionHelpKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "allow")),
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "always allow")),
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "deny")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
	}
}

func (k permissionHelpKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func (m *Model) handlePermissionOverlayMsg(msg tea.Msg) (tea.Cmd, bool) {
	if !m.ui.active() {
		return nil, false
	}
	keyStr, ok := keyString(msg)
	if !ok {
		return nil, false
	}
	cmd, handled := m.ui.handleKey(keyStr)
	if handled && !m.ui.active() {
		m.refreshHelp()
	}
	return cmd, handled
}

func (m *Model) handlePermissionRequestEvent(msg permissionRequestEventMsg) tea.Cmd {
	req := msg.Event.Payload
	m.messages.MarkToolPermissionRequested(req.ToolCallID)
	cmd := m.ui.present(req)
	m.refreshHelp()
	return tea.Batch(cmd, m.waitPermissionRequestEvent())
}

func (m *Model) handlePermissionNotificationEvent(msg permissionNotificationEventMsg) tea.Cmd {
	n := msg.Event.Payload
	var cmds []tea.Cmd
	switch {
	case n.Granted:
		m.messages.MarkToolPermissionGranted(n.ToolCallID)
		if cmd := m.ui.clearIfMatches(n.ToolCallID); cmd != nil {
			cmds = append(cmds, cmd)
			m.refreshHelp()
		}
	case n.Denied:
		m.messages.MarkToolPermissionDenied(n.ToolCallID)
		if cmd := m.ui.clearIfMatches(n.ToolCallID); cmd != nil {
			cmds = append(cmds, cmd)
			m.refreshHelp()
		}
	}
	cmds = append(cmds, m.waitPermissionNotificationEvent())
	return tea.Batch(cmds...)
}
