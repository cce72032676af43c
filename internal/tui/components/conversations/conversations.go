// Package conversations is the modal session list. The list is windowed:
// only a height-bounded slice of rows is rendered and the window slides to
// keep the selection visible.
package conversations

import (
	"fmt"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"tandem/internal/conversation"
	"tandem/internal/tui/styles"
)

type (
	SelectedMsg struct{ ID string }
	NewMsg      struct{}
	DeleteMsg   struct{ ID string }
	CloseMsg    struct{}
)

type Model struct {
	convs    []conversation.Conversation
	selected int
	// windowTop is the index of the first visible row.
	windowTop int
	width     int
	height    int
	keyMap    KeyMap
	help      help.Model
}

func New(convs []conversation.Conversation, currentID string) *Model {
	h := help.New()
	t := styles.CurrentTheme()
	h.Styles = t.S().Help
	m := &Model{convs: convs, width: 250, height: 60, keyMap: DefaultKeyMap(), help: h}
	for i, c := range convs {
		if c.ID == currentID {
			m.selected = i
			break
		}
	}
	m.clampWindow()
	return m
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) SetConversations(convs []conversation.Conversation) {
	m.convs = convs
	if m.selected >= len(convs) {
		m.selected = 0
	}
	m.clampWindow()
}

// windowSize is how many rows fit in the current box height.
func (m *Model) windowSize() int {
	// Box chrome: border, padding, title, blank lines, help.
	rows := m.boxHeight() - 8
	if rows < 3 {
		rows = 3
	}
	return rows
}

// clampWindow slides the visible window so the selection stays inside it.
func (m *Model) clampWindow() {
	size := m.windowSize()
	if m.selected < m.windowTop {
		m.windowTop = m.selected
	}
	if m.selected >= m.windowTop+size {
		m.windowTop = m.selected - size + 1
	}
	if m.windowTop < 0 {
		m.windowTop = 0
	}
	if max := len(m.convs) - size; max >= 0 && m.windowTop > max {
		m.windowTop = max
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		m.clampWindow()
	case tea.KeyMsg:
		return m.handleKey(v)
	case tea.KeyPressMsg:
		return m.handleKey(v)
	}
	return m, nil
}

func (m *Model) handleKey(k fmt.Stringer) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keyMap.Previous):
		if m.selected > 0 {
			m.selected--
			m.clampWindow()
		}
	case key.Matches(k, m.keyMap.Next):
		if m.selected < len(m.convs)-1 {
			m.selected++
			m.clampWindow()
		}
	case key.Matches(k, m.keyMap.Select):
		if len(m.convs) > 0 {
			id := m.convs[m.selected].ID
			return m, func() tea.Msg { return SelectedMsg{ID: id} }
		}
	case key.Matches(k, m.keyMap.New):
		return m, func() tea.Msg { return NewMsg{} }
	case key.Matches(k, m.keyMap.Delete):
		if len(m.convs) > 0 {
			id := m.convs[m.selected].ID
			return m, func() tea.Msg { return DeleteMsg{ID: id} }
		}
	case key.Matches(k, m.keyMap.Close):
		return m, func() tea.Msg { return CloseMsg{} }
	}
	return m, nil
}

func (m *Model) boxWidth() int {
	target := m.width / 2
	if target < 40 {
		target = 40
	}
	if target > 72 {
		target = 72
	}
	if target > m.width-6 {
		target = m.width - 6
	}
	return target
}

func (m *Model) boxHeight() int {
	target := m.height / 2
	if target < 12 {
		target = 12
	}
	if target > 24 {
		target = 24
	}
	if target > m.height-6 {
		target = m.height - 6
	}
	return target
}

func (m *Model) View() string {
	t := styles.CurrentTheme()
	s := t.S()
	leftOnly := lipgloss.Border{Left: "▌"}

	var list string
	if len(m.convs) == 0 {
		list = s.Base.PaddingLeft(1).Render("No conversations")
	} else {
		size := m.windowSize()
		end := m.windowTop + size
		if end > len(m.convs) {
			end = len(m.convs)
		}
		items := make([]string, 0, end-m.windowTop+2)
		if m.windowTop > 0 {
			items = append(items, s.Muted.PaddingLeft(2).Render(fmt.Sprintf("↑ %d more", m.windowTop)))
		}
		maxTitleW := m.boxWidth() - 8
		for i := m.windowTop; i < end; i++ {
			// Left border always reserved to avoid layout shift on move.
			itemStyle := s.Base.
				PaddingLeft(1).
				BorderLeft(true).
				BorderStyle(leftOnly)
			if i == m.selected {
				itemStyle = itemStyle.BorderForeground(t.Primary)
			} else {
				itemStyle = itemStyle.BorderForeground(t.FgMuted)
			}
			title := m.convs[i].Title
			if title == "" {
				title = "Untitled"
			}
			items = append(items, itemStyle.Render(runewidth.Truncate(title, maxTitleW, "…")))
		}
		if end < len(m.convs) {
			items = append(items, s.Muted.PaddingLeft(2).Render(fmt.Sprintf("↓ %d more", len(m.convs)-end)))
		}
		list = lipgloss.JoinVertical(lipgloss.Left, items...)
	}

	title := s.Title.PaddingLeft(1).Render("Session history")
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		list,
		"",
		s.Base.PaddingLeft(1).Render(m.help.View(m.keyMap)),
	)

	box := s.Base.Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Padding(1, 2)
	if w := m.boxWidth(); w > 0 {
		box = box.Width(w)
	}
	if h := m.boxHeight(); h > 0 {
		box = box.Height(h)
	}
	return box.Render(content)
}
