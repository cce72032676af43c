// Package messages renders the conversation timeline inside a viewport:
// user and assistant entries, markdown output, and tool-call rows with
// their status.
package messages

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tandem/internal/message"
	"tandem/internal/tui/styles"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 120 * time.Millisecond

type spinnerTickMsg struct{ seq int }

type Messages struct {
	w, h   int
	vp     viewport.Model
	inited bool

	items []timelineItem
	focus int // -1 when none

	toolIndex map[string]int

	loading    bool
	loadingSeq int
	frame      int
}

func (c *Messages) initIfNeeded() {
	if c.inited {
		return
	}
	c.vp = viewport.New()
	c.focus = -1
	c.toolIndex = make(map[string]int)
	c.inited = true
}

func (c *Messages) SetSize(w, h int) {
	c.initIfNeeded()
	c.w, c.h = w, h
	c.vp.SetWidth(w)
	c.vp.SetHeight(h)
	c.refresh(true)
}

// LoadConversation replaces the timeline with a stored transcript.
func (c *Messages) LoadConversation(msgs []message.Message) {
	c.initIfNeeded()
	c.items = nil
	c.focus = -1
	c.toolIndex = make(map[string]int)
	c.loading = false

	// Tool results live on later tool messages; index them for pairing.
	results := make(map[string]message.ToolResult)
	for _, m := range msgs {
		for _, res := range m.ToolResults() {
			results[res.ToolCallID] = res
		}
	}

	for _, m := range msgs {
		switch m.Role {
		case message.User:
			text := m.Content().Text
			if strings.TrimSpace(text) == "" && len(m.Attachments()) == 0 {
				continue
			}
			c.items = append(c.items, &userItem{text: text, attachments: m.Attachments()})
		case message.Assistant:
			if text := m.Content().Text; strings.TrimSpace(text) != "" {
				c.items = append(c.items, &assistantItem{text: text})
			}
			for _, call := range m.ToolCalls() {
				ti := &toolItem{call: call, status: toolRunning}
				if res, ok := results[call.ID]; ok {
					ti.setResult(res)
				}
				c.toolIndex[call.ID] = len(c.items)
				c.items = append(c.items, ti)
			}
		}
	}
	c.refresh(true)
}

func (c *Messages) AddUser(text string, attachments []message.Attachment) {
	c.initIfNeeded()
	c.items = append(c.items, &userItem{text: text, attachments: attachments})
	c.refresh(true)
}

// AddAssistantStart opens a streaming assistant entry.
func (c *Messages) AddAssistantStart(model string) {
	c.initIfNeeded()
	c.items = append(c.items, &assistantItem{model: model, streaming: true})
	c.refresh(true)
}

func (c *Messages) activeAssistant() *assistantItem {
	for i := len(c.items) - 1; i >= 0; i-- {
		if a, ok := c.items[i].(*assistantItem); ok {
			if a.streaming {
				return a
			}
			return nil
		}
	}
	return nil
}

func (c *Messages) AppendAssistant(delta string) {
	c.initIfNeeded()
	a := c.activeAssistant()
	if a == nil {
		a = &assistantItem{streaming: true}
		c.items = append(c.items, a)
	}
	a.append(delta)
	c.refresh(true)
}

func (c *Messages) EndAssistant() {
	if a := c.activeAssistant(); a != nil {
		a.streaming = false
		// Drop an entry that never produced anything.
		if strings.TrimSpace(a.text) == "" && a.errText == "" {
			for i := len(c.items) - 1; i >= 0; i-- {
				if c.items[i] == timelineItem(a) {
					c.items = append(c.items[:i], c.items[i+1:]...)
					c.reindexTools()
					break
				}
			}
		}
	}
	c.loading = false
	c.refresh(false)
}

// SetAssistantError attaches an error line to the active assistant entry.
func (c *Messages) SetAssistantError(text string) {
	a := c.activeAssistant()
	if a == nil {
		a = &assistantItem{}
		c.items = append(c.items, a)
	}
	a.errText = text
	c.refresh(true)
}

func (c *Messages) reindexTools() {
	c.toolIndex = make(map[string]int)
	for i, it := range c.items {
		if ti, ok := it.(*toolItem); ok {
			c.toolIndex[ti.call.ID] = i
		}
	}
}

// EnsureToolCall adds a tool row if the call is not yet shown.
func (c *Messages) EnsureToolCall(call message.ToolCall) {
	c.initIfNeeded()
	if idx, ok := c.toolIndex[call.ID]; ok {
		if ti, ok := c.items[idx].(*toolItem); ok && call.Input != "" {
			ti.call.Input = call.Input
		}
		c.refresh(false)
		return
	}
	c.toolIndex[call.ID] = len(c.items)
	c.items = append(c.items, &toolItem{call: call, status: toolRunning})
	c.refresh(true)
}

func (c *Messages) toolByID(id string) *toolItem {
	idx, ok := c.toolIndex[id]
	if !ok || idx < 0 || idx >= len(c.items) {
		return nil
	}
	ti, _ := c.items[idx].(*toolItem)
	return ti
}

func (c *Messages) FinishTool(id string, res message.ToolResult) {
	if ti := c.toolByID(id); ti != nil {
		ti.setResult(res)
		c.refresh(false)
	}
}

func (c *Messages) MarkToolPermissionRequested(id string) {
	if ti := c.toolByID(id); ti != nil {
		ti.status = toolAwaitingPermission
		c.refresh(false)
	}
}

func (c *Messages) MarkToolPermissionGranted(id string) {
	if ti := c.toolByID(id); ti != nil {
		ti.status = toolRunning
		c.refresh(false)
	}
}

func (c *Messages) MarkToolPermissionDenied(id string) {
	if ti := c.toolByID(id); ti != nil {
		ti.status = toolDenied
		c.refresh(false)
	}
}

// StartLoading shows the thinking spinner until output arrives.
func (c *Messages) StartLoading() tea.Cmd {
	c.initIfNeeded()
	c.loading = true
	c.loadingSeq++
	seq := c.loadingSeq
	return tea.Tick(spinnerInterval, func(time.Time) tea.Msg { return spinnerTickMsg{seq: seq} })
}

func (c *Messages) StopLoading() {
	c.loading = false
	c.refresh(false)
}

func (c *Messages) Update(msg tea.Msg) tea.Cmd {
	c.initIfNeeded()
	switch v := msg.(type) {
	case spinnerTickMsg:
		if !c.loading || v.seq != c.loadingSeq {
			return nil
		}
		c.frame = (c.frame + 1) % len(spinnerFrames)
		c.refresh(false)
		seq := c.loadingSeq
		return tea.Tick(spinnerInterval, func(time.Time) tea.Msg { return spinnerTickMsg{seq: seq} })
	}
	var cmd tea.Cmd
	c.vp, cmd = c.vp.Update(msg)
	return cmd
}

// Focus navigation

func (c *Messages) HasFocus() bool { return c.focus >= 0 }

func (c *Messages) ClearFocus() { c.focus = -1; c.refresh(false) }

func (c *Messages) FocusLast() bool {
	for i := len(c.items) - 1; i >= 0; i-- {
		if c.items[i].focusable() {
			c.focus = i
			c.refresh(false)
			return true
		}
	}
	return false
}

func (c *Messages) FocusPrev() bool {
	start := c.focus
	if start < 0 {
		return c.FocusLast()
	}
	for i := start - 1; i >= 0; i-- {
		if c.items[i].focusable() {
			c.focus = i
			c.refresh(false)
			return true
		}
	}
	return false
}

func (c *Messages) FocusNext() bool {
	if c.focus < 0 {
		return false
	}
	for i := c.focus + 1; i < len(c.items); i++ {
		if c.items[i].focusable() {
			c.focus = i
			c.refresh(false)
			return true
		}
	}
	return false
}

// FocusedToolEntry returns the focused tool row, if any, for the detail
// overlay.
func (c *Messages) FocusedToolEntry() (message.ToolCall, message.ToolResult, bool) {
	if c.focus < 0 || c.focus >= len(c.items) {
		return message.ToolCall{}, message.ToolResult{}, false
	}
	ti, ok := c.items[c.focus].(*toolItem)
	if !ok {
		return message.ToolCall{}, message.ToolResult{}, false
	}
	var res message.ToolResult
	if ti.result != nil {
		res = *ti.result
	}
	return ti.call, res, true
}

// CopyFocused puts the focused entry's text on the system clipboard.
func (c *Messages) CopyFocused() error {
	if c.focus < 0 || c.focus >= len(c.items) {
		return nil
	}
	return clipboard.WriteAll(c.items[c.focus].plain())
}

func (c *Messages) refresh(scrollToBottom bool) {
	if !c.inited || c.w <= 0 {
		return
	}
	atBottom := c.vp.AtBottom()
	var b strings.Builder
	for i, it := range c.items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(it.render(c.w, i == c.focus))
	}
	if c.loading {
		t := styles.CurrentTheme()
		spinner := lipgloss.NewStyle().Foreground(t.Primary).Render(spinnerFrames[c.frame] + " thinking")
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(spinner)
	}
	c.vp.SetContent(b.String())
	if scrollToBottom || atBottom {
		c.vp.GotoBottom()
	}
}

func (c *Messages) View() string {
	c.initIfNeeded()
	if len(c.items) == 0 && !c.loading {
		t := styles.CurrentTheme()
		empty := lipgloss.NewStyle().
			Foreground(t.FgSubtle).
			Width(c.w).
			Height(c.h).
			Align(lipgloss.Center, lipgloss.Center).
			Render("Start a conversation, or type / for commands.")
		return empty
	}
	return c.vp.View()
}
