package tui

import (
	"context"
	"testing"

	"tandem/internal/message"
	"tandem/internal/permission"
	"tandem/internal/pubsub"
	cmpinput "tandem/internal/tui/components/input"
	"tandem/internal/tui/shortcut"
)

type fakeEngine struct {
	processing map[string]bool
	canceled   []string
}

func (f *fakeEngine) Run(context.Context, string, string, []message.Attachment, func(any)) {}

func (f *fakeEngine) Cancel(sessionID string) {
	f.canceled = append(f.canceled, sessionID)
	delete(f.processing, sessionID)
}

func (f *fakeEngine) Processing(sessionID string) bool { return f.processing[sessionID] }

func (f *fakeEngine) SetModel(string) {}

type recordingPermissions struct {
	resolved []permission.Option
	denied   int
}

func (r *recordingPermissions) Subscribe(context.Context) <-chan pubsub.Event[permission.Request] {
	return nil
}
func (r *recordingPermissions) SubscribeNotifications(context.Context) <-chan pubsub.Event[permission.Notification] {
	return nil
}
func (r *recordingPermissions) Grant(permission.Request)           {}
func (r *recordingPermissions) GrantPersistent(permission.Request) {}
func (r *recordingPermissions) Deny(permission.Request)            { r.denied++ }
func (r *recordingPermissions) Resolve(_ permission.Request, opt permission.Option) {
	r.resolved = append(r.resolved, opt)
}
func (r *recordingPermissions) Request(permission.CreateRequest) bool { return true }
func (r *recordingPermissions) AutoApproveSession(string)             {}
func (r *recordingPermissions) SetSkipRequests(bool)                  {}
func (r *recordingPermissions) SkipRequests() bool                    { return false }

func newEscapeTestModel(engine *fakeEngine, perms *recordingPermissions) *Model {
	m := &Model{
		UIComponents: UIComponents{input: &cmpinput.Input{}},
		engine:       engine,
	}
	m.permissions = perms
	m.ui = newPermissionUI(permissionCallbacks{
		resolve:    perms.Resolve,
		escape:     m.resolvePermissionEscape,
		focusInput: m.input.Focus,
		blurInput:  m.input.Blur,
	})
	return m
}

func TestEscapeWhileProcessingCancelsAndResolves(t *testing.T) {
	engine := &fakeEngine{processing: map[string]bool{"sess": true}}
	perms := &recordingPermissions{}
	m := newEscapeTestModel(engine, perms)
	m.sessionID = "sess"

	req := permission.Request{
		ID:        "req-1",
		SessionID: "sess",
		Options: []permission.Option{
			{ID: "allow", Kind: "allow"},
			{ID: "reject", Kind: "reject"},
		},
	}
	m.ui.present(req)

	if got := shortcut.Dispatch(parseShortcutEvent("esc"), m.uiState()); got != shortcut.ResolvePermission {
		t.Fatalf("dispatch = %v, want resolve-permission", got)
	}
	m.applyShortcut(shortcut.ResolvePermission)

	if len(engine.canceled) != 1 || engine.canceled[0] != "sess" {
		t.Fatalf("canceled = %v, want the request's session", engine.canceled)
	}
	if len(perms.resolved) != 1 || perms.resolved[0].Kind != "reject" {
		t.Fatalf("resolved = %+v, want the reject option", perms.resolved)
	}
	if m.ui.active() {
		t.Fatal("overlay still active after escape")
	}
}

func TestEscapeFallsBackToLastOption(t *testing.T) {
	engine := &fakeEngine{processing: map[string]bool{}}
	perms := &recordingPermissions{}
	m := newEscapeTestModel(engine, perms)
	m.sessionID = "sess"

	req := permission.Request{
		ID:        "req-2",
		SessionID: "sess",
		Options: []permission.Option{
			{ID: "allow", Kind: "allow"},
			{ID: "later", Kind: "postpone"},
		},
	}
	m.ui.present(req)
	m.resolvePermissionEscape()

	if len(engine.canceled) != 0 {
		t.Fatalf("canceled = %v, want no cancellations for an idle session", engine.canceled)
	}
	if len(perms.resolved) != 1 || perms.resolved[0].ID != "later" {
		t.Fatalf("resolved = %+v, want the last option", perms.resolved)
	}
}

func TestEscapeWithoutOptionsDenies(t *testing.T) {
	engine := &fakeEngine{processing: map[string]bool{}}
	perms := &recordingPermissions{}
	m := newEscapeTestModel(engine, perms)
	m.sessionID = "sess"

	m.ui.present(permission.Request{ID: "req-3", SessionID: "sess"})
	m.resolvePermissionEscape()

	if perms.denied != 1 {
		t.Fatalf("denied = %d, want 1", perms.denied)
	}
	if len(perms.resolved) != 0 {
		t.Fatalf("resolved = %+v, want none", perms.resolved)
	}
}

func TestEscapeWithoutActiveRequestOnlyClears(t *testing.T) {
	engine := &fakeEngine{processing: map[string]bool{"sess": true}}
	perms := &recordingPermissions{}
	m := newEscapeTestModel(engine, perms)
	m.sessionID = "sess"

	m.resolvePermissionEscape()

	if len(engine.canceled) != 0 || len(perms.resolved) != 0 || perms.denied != 0 {
		t.Fatal("escape without a pending request must not touch engine or service")
	}
}
