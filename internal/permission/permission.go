// Package permission coordinates tool-use approval between the agent engine
// and the UI. The engine blocks in Request until the user answers through
// the permission overlay, an allowlist match, or session auto-approval.
package permission

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"tandem/internal/csync"
	"tandem/internal/pubsub"
)

// ErrPermissionDenied reports that the user rejected a permission request.
var ErrPermissionDenied = errors.New("permission denied")

// Option is one answer the user can give to a request. Kind is a stable
// machine name ("allow", "allow_always", "reject"); the overlay renders
// Label.
type Option struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

// DefaultOptions is the answer set attached to requests that do not bring
// their own. Order is what the overlay shows and what escape resolution
// scans.
func DefaultOptions() []Option {
	return []Option{
		{ID: "allow", Kind: "allow", Label: "Allow once"},
		{ID: "allow-always", Kind: "allow_always", Label: "Allow for this session"},
		{ID: "reject", Kind: "reject", Label: "Reject"},
	}
}

type CreateRequest struct {
	SessionID   string   `json:"session_id"`
	ToolCallID  string   `json:"tool_call_id"`
	ToolName    string   `json:"tool_name"`
	Description string   `json:"description"`
	Action      string   `json:"action"`
	Params      any      `json:"params"`
	Path        string   `json:"path"`
	Options     []Option `json:"options,omitempty"`
}

// Request is an in-flight permission question. At most one is active per
// service at a time; the engine serializes tool calls.
type Request struct {
	ID          string   `json:"id"`
	SessionID   string   `json:"session_id"`
	ToolCallID  string   `json:"tool_call_id"`
	ToolName    string   `json:"tool_name"`
	Description string   `json:"description"`
	Action      string   `json:"action"`
	Params      any      `json:"params"`
	Path        string   `json:"path"`
	Options     []Option `json:"options"`
}

// Notification carries status updates for a tool call's request.
type Notification struct {
	ToolCallID string `json:"tool_call_id"`
	Granted    bool   `json:"granted"`
	Denied     bool   `json:"denied"`
}

// Service coordinates permission requests between the engine and the UI.
type Service interface {
	pubsub.Subscriber[Request]
	Grant(req Request)
	GrantPersistent(req Request)
	Deny(req Request)
	Resolve(req Request, opt Option)
	Request(opts CreateRequest) bool
	AutoApproveSession(sessionID string)
	SetSkipRequests(skip bool)
	SkipRequests() bool
	SubscribeNotifications(ctx context.Context) <-chan pubsub.Event[Notification]
}

// NewService constructs a service rooted in workingDir. allowedTools holds
// doublestar patterns matched against "tool:action" keys and bare tool
// names.
func NewService(workingDir string, skip bool, allowedTools []string) Service {
	return &service{
		Broker:              pubsub.NewBroker[Request](),
		notifications:       pubsub.NewBroker[Notification](),
		workingDir:          workingDir,
		autoApproveSessions: make(map[string]bool),
		skip:                skip,
		allowedTools:        allowedTools,
		pending:             csync.NewMap[string, chan bool](),
	}
}

type service struct {
	*pubsub.Broker[Request]

	notifications *pubsub.Broker[Notification]
	workingDir    string
	allowedTools  []string
	pending       *csync.Map[string, chan bool]

	grantsMu      sync.RWMutex
	sessionGrants []Request

	autoApproveMu       sync.RWMutex
	autoApproveSessions map[string]bool

	skipMu sync.RWMutex
	skip   bool

	// requestMu serializes in-flight requests so at most one is active.
	requestMu sync.Mutex
}

func (s *service) Request(opts CreateRequest) bool {
	if s.SkipRequests() {
		return true
	}

	s.notifications.Publish(pubsub.CreatedEvent, Notification{ToolCallID: opts.ToolCallID})

	s.requestMu.Lock()
	defer s.requestMu.Unlock()

	if s.allowlisted(opts.ToolName, opts.Action) {
		return true
	}

	s.autoApproveMu.RLock()
	auto := s.autoApproveSessions[opts.SessionID]
	s.autoApproveMu.RUnlock()
	if auto {
		return true
	}

	options := opts.Options
	if len(options) == 0 {
		options = DefaultOptions()
	}
	req := Request{
		ID:          uuid.NewString(),
		SessionID:   opts.SessionID,
		ToolCallID:  opts.ToolCallID,
		ToolName:    opts.ToolName,
		Description: opts.Description,
		Action:      opts.Action,
		Params:      opts.Params,
		Path:        s.normalizePath(opts.Path),
		Options:     options,
	}

	if s.previouslyGranted(req) {
		return true
	}

	respCh := make(chan bool, 1)
	s.pending.Set(req.ID, respCh)
	defer s.pending.Del(req.ID)

	s.Publish(pubsub.CreatedEvent, req)

	return <-respCh
}

func (s *service) Grant(req Request) {
	s.answer(req, true)
}

func (s *service) GrantPersistent(req Request) {
	s.answer(req, true)

	s.grantsMu.Lock()
	already := false
	for _, g := range s.sessionGrants {
		if g.SessionID == req.SessionID && g.ToolName == req.ToolName {
			already = true
			break
		}
	}
	if !already {
		s.sessionGrants = append(s.sessionGrants, Request{
			SessionID: req.SessionID,
			ToolName:  req.ToolName,
		})
	}
	s.grantsMu.Unlock()
}

func (s *service) Deny(req Request) {
	s.answer(req, false)
}

// Resolve applies a chosen option to the request. Unknown kinds deny.
func (s *service) Resolve(req Request, opt Option) {
	switch strings.ToLower(opt.Kind) {
	case "allow", "accept", "approve":
		s.Grant(req)
	case "allow_always", "always":
		s.GrantPersistent(req)
	default:
		s.Deny(req)
	}
}

func (s *service) answer(req Request, granted bool) {
	s.notifications.Publish(pubsub.CreatedEvent, Notification{
		ToolCallID: req.ToolCallID,
		Granted:    granted,
		Denied:     !granted,
	})
	if ch, ok := s.pending.Get(req.ID); ok {
		ch <- granted
	}
}

func (s *service) allowlisted(tool, action string) bool {
	key := tool + ":" + action
	for _, pat := range s.allowedTools {
		if ok, err := doublestar.Match(pat, key); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pat, tool); err == nil && ok {
			return true
		}
	}
	return false
}

func (s *service) previouslyGranted(req Request) bool {
	s.grantsMu.RLock()
	defer s.grantsMu.RUnlock()
	for _, g := range s.sessionGrants {
		if g.SessionID == req.SessionID && g.ToolName == req.ToolName {
			return true
		}
	}
	return false
}

func (s *service) normalizePath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return s.workingDir
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	if s.workingDir == "" {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(s.workingDir, trimmed))
}

func (s *service) AutoApproveSession(sessionID string) {
	s.autoApproveMu.Lock()
	s.autoApproveSessions[sessionID] = true
	s.autoApproveMu.Unlock()
}

func (s *service) SubscribeNotifications(ctx context.Context) <-chan pubsub.Event[Notification] {
	return s.notifications.Subscribe(ctx)
}

func (s *service) SetSkipRequests(skip bool) {
	s.skipMu.Lock()
	s.skip = skip
	s.skipMu.Unlock()
}

func (s *service) SkipRequests() bool {
	s.skipMu.RLock()
	defer s.skipMu.RUnlock()
	return s.skip
}
