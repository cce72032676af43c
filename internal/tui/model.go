// Package tui is the terminal chat interface: a conversation timeline, a
// prompt composer, permission prompts for tool calls, and live previews of
// background terminals the agent launches.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tandem/config"
	"tandem/internal/agent"
	"tandem/internal/audio"
	"tandem/internal/conversation"
	"tandem/internal/credentials"
	"tandem/internal/inputhistory"
	"tandem/internal/message"
	"tandem/internal/permission"
	"tandem/internal/pubsub"
	"tandem/internal/terminal"
	cmpconversations "tandem/internal/tui/components/conversations"
	cmpheader "tandem/internal/tui/components/header"
	cmpinput "tandem/internal/tui/components/input"
	cmpmessages "tandem/internal/tui/components/messages"
	cmpstatus "tandem/internal/tui/components/status"
	cmptermpreview "tandem/internal/tui/components/terminalpreview"
)

// maxVisiblePreviews bounds how many terminal previews stack above the
// composer at once. Older previews keep polling; they just aren't drawn.
const maxVisiblePreviews = 2

type UIComponents struct {
	header     *cmpheader.Header
	messages   *cmpmessages.Messages
	input      *cmpinput.Input
	status     *cmpstatus.StatusCmp
	convModal  *cmpconversations.Model
	toolDetail *toolDetailOverlay
	keys       keyMap
	statusH    int
}

type SessionState struct {
	convStore  *conversation.Store
	msgStore   message.Service
	inputStore inputhistory.Service
	sessionID  string
	title      string

	history    []string
	historyIdx int
}

type PermissionController struct {
	permissions       permission.Service
	permissionReqCh   <-chan pubsub.Event[permission.Request]
	permissionNotifCh <-chan pubsub.Event[permission.Notification]
	permissionStop    context.CancelFunc
	ui                *permissionUI
}

// promptEngine is the slice of the agent engine the model drives. An
// interface so tests can stand in a fake.
type promptEngine interface {
	Run(ctx context.Context, sessionID, prompt string, attachments []message.Attachment, emit func(any))
	Cancel(sessionID string)
	Processing(sessionID string) bool
	SetModel(model string)
}

type Model struct {
	w, h int

	UIComponents
	SessionState
	PermissionController

	cfg        config.Config
	engine     promptEngine
	terminals  *terminal.Manager
	recorder   *audio.Recorder
	recording  bool
	workingDir string

	eventCh chan tea.Msg

	configWatcher *config.Watcher
	configCh      <-chan pubsub.Event[config.Config]
	configStop    context.CancelFunc

	previews []*cmptermpreview.Model
}

func New() (*Model, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	apiKey, err := credentials.GetAPIKey()
	if err != nil {
		return nil, fmt.Errorf("no API key: run `tandem secret set` first (%w)", err)
	}

	dbPath, err := config.DatabasePath()
	if err != nil {
		return nil, err
	}
	convStore, err := conversation.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open conversation store: %w", err)
	}
	msgStore := message.NewSQLiteService(convStore.DB())
	inputStore := inputhistory.NewSQLiteService(convStore.DB())

	workingDir, err := os.Getwd()
	if err != nil {
		workingDir = "."
	}

	permissions := permission.NewService(workingDir, cfg.SkipPermissions, cfg.AllowedTools)
	terminals := terminal.NewManager()

	var debugLog string
	if cfg.Debug {
		if logsDir, err := config.LogsDir(); err == nil {
			debugLog = filepath.Join(logsDir, "api.log")
			logPath := filepath.Join(logsDir, "tandem.log")
			if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				slog.SetDefault(slog.New(slog.NewTextHandler(f, nil)))
			}
		}
	}
	engine := agent.NewEngine(agent.Config{
		Client:       agent.NewClient(apiKey, agent.WithBaseURL(cfg.BaseURL)),
		Model:        cfg.Model,
		Messages:     msgStore,
		Permissions:  permissions,
		Terminals:    terminals,
		DebugLogPath: debugLog,
	})

	m := &Model{
		UIComponents: UIComponents{
			header:   cmpheader.New(),
			messages: &cmpmessages.Messages{},
			input:    &cmpinput.Input{},
			status:   cmpstatus.New(),
			keys:     defaultKeys,
		},
		SessionState: SessionState{
			convStore:  convStore,
			msgStore:   msgStore,
			inputStore: inputStore,
		},
		PermissionController: PermissionController{
			permissions: permissions,
		},
		cfg:        cfg,
		engine:     engine,
		terminals:  terminals,
		recorder:   &audio.Recorder{Command: cfg.RecorderCommand},
		workingDir: workingDir,
	}

	permCtx, permStop := context.WithCancel(context.Background())
	m.permissionStop = permStop
	m.permissionReqCh = permissions.Subscribe(permCtx)
	m.permissionNotifCh = permissions.SubscribeNotifications(permCtx)

	cfgCtx, cfgStop := context.WithCancel(context.Background())
	if watcher, err := config.Watch(cfgCtx); err == nil {
		m.configWatcher = watcher
		m.configStop = cfgStop
		m.configCh = watcher.Subscribe(cfgCtx)
	} else {
		slog.Warn("config watcher unavailable", "err", err)
		cfgStop()
	}

	m.ui = newPermissionUI(permissionCallbacks{
		resolve: func(req permission.Request, opt permission.Option) {
			permissions.Resolve(req, opt)
		},
		escape: m.resolvePermissionEscape,
		focusInput: func() tea.Cmd {
			return m.input.Focus()
		},
		blurInput: func() tea.Cmd {
			return m.input.Blur()
		},
	})

	sessionID, err := m.initialSession()
	if err != nil {
		return nil, err
	}
	if err := m.loadConversation(sessionID); err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}

	return m, nil
}

// initialSession resumes the most recent conversation or creates one.
func (m *Model) initialSession() (string, error) {
	ctx := context.Background()
	convs, err := m.convStore.List(ctx)
	if err != nil {
		return "", err
	}
	if len(convs) > 0 {
		return convs[0].ID, nil
	}
	conv, err := m.convStore.Create(ctx, "")
	if err != nil {
		return "", err
	}
	return conv.ID, nil
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.input.Init(),
		m.status.Init(),
		tea.EnableMouseAllMotion,
	}
	if cmd := m.waitPermissionRequestEvent(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := m.waitPermissionNotificationEvent(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := m.waitConfigEvent(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	m.refreshHeaderMeta()
	m.refreshHelp()
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	statusCmd := m.status.Update(msg)

	if cmd, handled := m.handlePermissionOverlayMsg(msg); handled {
		return m, tea.Batch(cmd, statusCmd)
	}

	if cmd, handled := m.handleToolDetailMsg(msg); handled {
		return m, tea.Batch(cmd, statusCmd)
	}

	if cmd, handled := m.handleConvModalMsg(msg); handled {
		return m, tea.Batch(cmd, statusCmd)
	}

	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.handleWindowSizeMsg(ws)
	}

	if cmd, handled := m.handleKeyEvent(msg); handled {
		return m, tea.Batch(cmd, statusCmd)
	}

	componentCmd := m.updateComponents(msg)
	eventCmd := m.handleMessage(msg)

	return m, tea.Batch(componentCmd, eventCmd, statusCmd)
}

func (m *Model) handleWindowSizeMsg(ws tea.WindowSizeMsg) {
	m.w, m.h = ws.Width, ws.Height
	m.layout()
}

// updateComponents forwards non-key messages to the composer, timeline,
// and previews.
func (m *Model) updateComponents(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.input.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := m.messages.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	switch msg.(type) {
	case cmptermpreview.SnapshotMsg, cmptermpreview.StoppedMsg:
		for _, p := range m.previews {
			if cmd := p.Update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		m.layout()
	}
	return batchCmds(cmds)
}

func (m *Model) handleMessage(msg tea.Msg) tea.Cmd {
	switch v := msg.(type) {
	case agentEventMsg:
		return m.handleAgentEvent(v)
	case permissionRequestEventMsg:
		return m.handlePermissionRequestEvent(v)
	case permissionNotificationEventMsg:
		return m.handlePermissionNotificationEvent(v)
	case configReloadedMsg:
		return m.handleConfigReloaded(v)
	default:
		return nil
	}
}

func (m *Model) handleConfigReloaded(msg configReloadedMsg) tea.Cmd {
	cfg := msg.Event.Payload
	m.cfg = cfg
	m.engine.SetModel(cfg.Model)
	m.permissions.SetSkipRequests(cfg.SkipPermissions)
	m.recorder.Command = cfg.RecorderCommand
	m.refreshHeaderMeta()
	return tea.Batch(m.status.Info("configuration reloaded"), m.waitConfigEvent())
}

func (m *Model) handleConvModalMsg(msg tea.Msg) (tea.Cmd, bool) {
	if m.convModal == nil {
		return nil, false
	}
	switch v := msg.(type) {
	case cmpconversations.SelectedMsg:
		m.convModal = nil
		return m.setSession(v.ID), true
	case cmpconversations.NewMsg:
		m.convModal = nil
		return m.NewConversation(), true
	case cmpconversations.DeleteMsg:
		return m.deleteSession(v.ID), true
	case cmpconversations.CloseMsg:
		m.convModal = nil
		return m.input.Focus(), true
	case tea.KeyMsg, tea.KeyPressMsg, tea.WindowSizeMsg:
		_, cmd := m.convModal.Update(msg)
		return cmd, true
	}
	return nil, false
}

func (m *Model) handleToolDetailMsg(msg tea.Msg) (tea.Cmd, bool) {
	if m.toolDetail == nil {
		return nil, false
	}
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSizeMsg(v)
		m.toolDetail.SetSize(v.Width, v.Height)
		return nil, false
	case tea.KeyMsg, tea.KeyPressMsg:
		keyStr, _ := keyString(msg)
		if keyStr == "esc" || keyStr == "q" {
			m.toolDetail = nil
			return m.input.Focus(), true
		}
		return m.toolDetail.Update(msg), true
	case tea.MouseMsg:
		return m.toolDetail.Update(msg), true
	}
	return nil, false
}

// Shutdown releases background resources; called after the program exits.
func (m *Model) Shutdown() {
	if m.permissionStop != nil {
		m.permissionStop()
	}
	if m.configStop != nil {
		m.configStop()
	}
	for _, p := range m.previews {
		p.Stop()
	}
	m.terminals.Shutdown()
	if m.recorder.Recording() {
		_ = m.recorder.Cancel()
	}
	_ = m.convStore.SaveDraft(context.Background(), m.sessionID, m.input.Value())
	_ = m.convStore.Close()
}
