package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
)

var lastScrollEventTime time.Time

// scrollEventFilter caps wheel events at roughly 120 per second so a fast
// trackpad cannot flood the update loop.
func scrollEventFilter(_ tea.Model, msg tea.Msg) tea.Msg {
	if _, ok := msg.(tea.MouseWheelMsg); ok {
		now := time.Now()
		if !lastScrollEventTime.IsZero() && now.Sub(lastScrollEventTime) < 8*time.Millisecond {
			return nil
		}
		lastScrollEventTime = now
	}
	return msg
}

// Start runs the chat interface until the user quits.
func Start() error {
	model, err := New()
	if err != nil {
		return err
	}
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithFilter(scrollEventFilter),
	)
	_, runErr := p.Run()
	model.Shutdown()
	return runErr
}
