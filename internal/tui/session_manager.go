package tui

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tandem/internal/commands"
	"tandem/internal/message"
	cmpconversations "tandem/internal/tui/components/conversations"
)

const maxTitleLen = 60

// setSession switches the active conversation, parking the outgoing draft
// and restoring the incoming one.
func (m *Model) setSession(id string) tea.Cmd {
	if id == m.sessionID {
		return m.input.Focus()
	}
	ctx := context.Background()

	_ = m.convStore.SaveDraft(ctx, m.sessionID, m.input.Value())

	for _, p := range m.previews {
		p.Stop()
	}
	m.previews = nil

	if err := m.loadConversation(id); err != nil {
		return tea.Batch(m.status.Error(err), m.input.Focus())
	}

	if draft, err := m.convStore.Draft(ctx, id); err == nil {
		m.input.SetValue(draft)
	} else {
		m.input.SetValue("")
	}
	m.input.ClearAttachments()

	m.refreshHeaderMeta()
	m.refreshHelp()
	m.layout()
	return m.input.Focus()
}

// loadConversation replaces timeline, history, and title with session id's.
func (m *Model) loadConversation(id string) error {
	ctx := context.Background()

	msgs, err := m.msgStore.List(ctx, id)
	if err != nil {
		return err
	}
	m.sessionID = id
	m.messages.LoadConversation(msgs)

	if hist, err := m.inputStore.List(ctx, id); err == nil {
		m.history = hist
	} else {
		m.history = nil
	}
	m.historyIdx = len(m.history)

	if conv, err := m.convStore.Get(ctx, id); err == nil {
		m.title = conv.Title
	} else {
		m.title = ""
	}
	return nil
}

func (m *Model) deleteSession(id string) tea.Cmd {
	ctx := context.Background()
	if err := m.convStore.Delete(ctx, id); err != nil {
		return m.status.Error(err)
	}

	var switchCmd tea.Cmd
	if id == m.sessionID {
		newID, err := m.initialSession()
		if err != nil {
			return m.status.Error(err)
		}
		m.sessionID = "" // force the reload
		switchCmd = m.setSession(newID)
	}

	convs, err := m.convStore.List(ctx)
	if err != nil {
		return tea.Batch(switchCmd, m.status.Error(err))
	}
	if m.convModal != nil {
		m.convModal = cmpconversations.New(convs, m.sessionID)
		if m.w > 0 && m.h > 0 {
			m.convModal.Update(tea.WindowSizeMsg{Width: m.w, Height: m.h})
		}
	}
	return switchCmd
}

// submitInput sends the composer content: slash commands run locally,
// anything else becomes a prompt for the agent.
func (m *Model) submitInput(text string) tea.Cmd {
	if text == "" && len(m.input.Attachments()) == 0 {
		return nil
	}

	if handled, cmd := commands.Execute(text, m); handled {
		m.input.SetValue("")
		return cmd
	}

	attachments := m.input.Attachments()
	m.messages.AddUser(text, attachments)

	ctx := context.Background()
	_ = m.inputStore.Add(ctx, m.sessionID, text)
	m.history = append(m.history, text)
	m.historyIdx = len(m.history)

	m.input.SetValue("")
	m.input.ClearAttachments()
	_ = m.convStore.SaveDraft(ctx, m.sessionID, "")

	titleCmd := m.maybeUpdateTitle(text)
	m.layout()
	m.refreshHelp()

	return tea.Batch(
		m.messages.StartLoading(),
		m.requestAgent(m.sessionID, text, attachments),
		titleCmd,
	)
}

// maybeUpdateTitle names an untitled conversation after its first prompt.
func (m *Model) maybeUpdateTitle(prompt string) tea.Cmd {
	if m.title != "" {
		return nil
	}
	title := strings.TrimSpace(prompt)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen-1] + "…"
	}
	if title == "" {
		return nil
	}
	if err := m.convStore.UpdateTitle(context.Background(), m.sessionID, title); err != nil {
		return m.status.Error(err)
	}
	m.title = title
	m.refreshHeaderMeta()
	return nil
}

// commands.Context implementation.

func (m *Model) ClearConversation() {
	ctx := context.Background()
	_ = m.msgStore.DeleteBySession(ctx, m.sessionID)
	m.messages.LoadConversation(nil)
}

func (m *Model) NewConversation() tea.Cmd {
	conv, err := m.convStore.Create(context.Background(), "")
	if err != nil {
		return m.status.Error(err)
	}
	return m.setSession(conv.ID)
}

func (m *Model) AttachFile(path string) tea.Cmd {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		return m.status.Error(err)
	}
	if info.IsDir() {
		return m.status.Error(fmt.Errorf("%s is a directory", path))
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	m.input.AddAttachment(message.Attachment{Path: path, MimeType: mimeType})
	return m.status.Info("attached " + filepath.Base(path))
}

func (m *Model) ShowHelp() {
	m.status.ToggleFullHelp()
	m.refreshHelp()
	m.layout()
}

func (m *Model) Quit() tea.Cmd {
	return tea.Quit
}
