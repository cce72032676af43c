// Package terminalpreview shows live output of a background terminal
// session. Each preview owns at most one poller goroutine: Start is
// idempotent and teardown cancels the poller's context.
package terminalpreview

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tandem/internal/terminal"
	"tandem/internal/tui/styles"
)

// SnapshotMsg carries one emitted (output, running) snapshot.
type SnapshotMsg struct {
	TerminalID string
	Output     string
	Running    bool
}

// StoppedMsg reports that the poller for a terminal has terminated.
type StoppedMsg struct{ TerminalID string }

type Model struct {
	id      string
	command string
	acc     terminal.Accessor

	output  string
	running bool
	stopped bool

	started bool
	cancel  context.CancelFunc
	updates chan terminal.Update

	width     int
	maxHeight int
}

func New(id, command string, acc terminal.Accessor) *Model {
	return &Model{id: id, command: command, acc: acc, running: true, maxHeight: 12}
}

func (m *Model) ID() string { return m.id }

func (m *Model) SetWidth(w int) { m.width = w }

func (m *Model) SetMaxHeight(h int) {
	if h > 0 {
		m.maxHeight = h
	}
}

// Start launches the poller goroutine. Calling it again while the poller
// is alive is a no-op and returns no command.
func (m *Model) Start() tea.Cmd {
	if m.started {
		return nil
	}
	m.started = true

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.updates = make(chan terminal.Update, 8)

	p := &terminal.Poller{Accessor: m.acc}
	ch := m.updates
	go func() {
		defer close(ch)
		p.Run(ctx, m.id, func(u terminal.Update) { ch <- u })
	}()

	return m.waitUpdate()
}

// Stop cancels the poller. The goroutine closes its channel on the way
// out, which surfaces as a StoppedMsg.
func (m *Model) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *Model) waitUpdate() tea.Cmd {
	ch := m.updates
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return StoppedMsg{TerminalID: m.id}
		}
		return SnapshotMsg{TerminalID: u.ID, Output: u.Output, Running: u.Running}
	}
}

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch v := msg.(type) {
	case SnapshotMsg:
		if v.TerminalID != m.id {
			return nil
		}
		m.output = v.Output
		m.running = v.Running
		return m.waitUpdate()
	case StoppedMsg:
		if v.TerminalID != m.id {
			return nil
		}
		m.started = false
		m.stopped = true
		m.cancel = nil
		m.updates = nil
		return nil
	}
	return nil
}

func (m *Model) View() string {
	if m.width <= 0 {
		return ""
	}
	t := styles.CurrentTheme()

	status := "done"
	statusStyle := lipgloss.NewStyle().Foreground(t.FgMuted)
	if m.running {
		status = "running"
		statusStyle = statusStyle.Foreground(t.Success)
	}
	title := lipgloss.JoinHorizontal(
		lipgloss.Top,
		lipgloss.NewStyle().Foreground(t.Secondary).Render("$ "+m.command),
		statusStyle.Render("  ["+status+"]"),
	)

	// View-side cap only; the poller keeps comparing full output.
	body := terminal.Tail(m.output, terminal.MaxViewChars)
	body = strings.TrimRight(body, "\n")
	lines := strings.Split(body, "\n")
	if max := m.maxHeight - 3; max > 0 && len(lines) > max {
		hidden := len(lines) - max
		lines = append([]string{fmt.Sprintf("… %d earlier lines", hidden)}, lines[len(lines)-max:]...)
	}
	body = lipgloss.NewStyle().Foreground(t.FgBase).Render(strings.Join(lines, "\n"))

	box := t.S().Base.
		Border(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		Padding(0, 1).
		Width(m.width - 2)
	return box.Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}
