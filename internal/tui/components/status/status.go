// Package status renders the bottom help line plus transient notices.
package status

import (
	"time"

	"github.com/charmbracelet/bubbles/v2/help"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tandem/internal/tui/styles"
)

const noticeTTL = 5 * time.Second

type clearNoticeMsg struct{ seq int }

type noticeLevel int

const (
	levelInfo noticeLevel = iota
	levelWarn
	levelError
)

type StatusCmp struct {
	width  int
	help   help.Model
	keyMap help.KeyMap

	notice    string
	level     noticeLevel
	noticeSeq int
}

func New() *StatusCmp {
	h := help.New()
	t := styles.CurrentTheme()
	h.Styles = t.S().Help
	return &StatusCmp{help: h}
}

func (s *StatusCmp) Init() tea.Cmd { return nil }

func (s *StatusCmp) Update(msg tea.Msg) tea.Cmd {
	if v, ok := msg.(clearNoticeMsg); ok && v.seq == s.noticeSeq {
		s.notice = ""
	}
	return nil
}

func (s *StatusCmp) SetWidth(w int) { s.width = w }

// SetKeyMap swaps the bindings the help line renders; the model calls this
// whenever focus or overlay state changes.
func (s *StatusCmp) SetKeyMap(km help.KeyMap) { s.keyMap = km }

func (s *StatusCmp) ToggleFullHelp() { s.help.ShowAll = !s.help.ShowAll }

func (s *StatusCmp) FullHelpShown() bool { return s.help.ShowAll }

// Height reports how many rows the current view occupies, for layout.
func (s *StatusCmp) Height() int {
	v := s.View()
	if v == "" {
		return 0
	}
	return lipgloss.Height(v)
}

func (s *StatusCmp) Info(text string) tea.Cmd { return s.setNotice(text, levelInfo) }
func (s *StatusCmp) Warn(text string) tea.Cmd { return s.setNotice(text, levelWarn) }

func (s *StatusCmp) Error(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	return s.setNotice(err.Error(), levelError)
}

func (s *StatusCmp) setNotice(text string, level noticeLevel) tea.Cmd {
	s.notice = text
	s.level = level
	s.noticeSeq++
	seq := s.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })
}

func (s *StatusCmp) View() string {
	t := styles.CurrentTheme()
	var lines []string
	if s.notice != "" {
		style := lipgloss.NewStyle().Foreground(t.Info)
		switch s.level {
		case levelWarn:
			style = style.Foreground(t.Warning)
		case levelError:
			style = style.Foreground(t.Error)
		}
		lines = append(lines, style.MaxWidth(s.width).Render(s.notice))
	}
	if s.keyMap != nil {
		s.help.Width = s.width
		lines = append(lines, s.help.View(s.keyMap))
	}
	if len(lines) == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
