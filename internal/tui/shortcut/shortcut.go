// Package shortcut decides what a key press means given the current UI
// state. It is pure: the TUI model feeds it a key event and a state snapshot
// and acts on the returned action.
package shortcut

// KeyEvent is a normalized key press. Key is the lowercase key name
// ("esc", "enter", "c", "m"); modifiers are carried separately.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
}

// UIState is the snapshot of model state the dispatcher consults.
type UIState struct {
	PendingPermission bool
	Recording         bool
	Processing        bool
	Input             string
}

// Action is what the model should do with the key press.
type Action int

const (
	// PassThrough means no shortcut claimed the key; it goes to the focused
	// component (usually the textarea).
	PassThrough Action = iota
	ResolvePermission
	CancelRecording
	AcceptRecording
	ClearInput
	CancelPrompt
	ToggleRecording
)

func (a Action) String() string {
	switch a {
	case ResolvePermission:
		return "resolve-permission"
	case CancelRecording:
		return "cancel-recording"
	case AcceptRecording:
		return "accept-recording"
	case ClearInput:
		return "clear-input"
	case CancelPrompt:
		return "cancel-prompt"
	case ToggleRecording:
		return "toggle-recording"
	default:
		return "pass-through"
	}
}

// Dispatch maps a key event to an action. Order matters: a pending
// permission prompt owns escape outright, then recording mode claims
// escape and return, then the prompt-level escape and clear behaviors.
func Dispatch(ev KeyEvent, st UIState) Action {
	esc := ev.Key == "esc" && !ev.Ctrl && !ev.Meta
	enter := ev.Key == "enter" && !ev.Ctrl && !ev.Meta

	switch {
	case esc && st.PendingPermission:
		return ResolvePermission
	case st.Recording && esc:
		return CancelRecording
	case st.Recording && enter:
		return AcceptRecording
	case ev.Ctrl && !ev.Meta && ev.Key == "c" && st.Input != "":
		return ClearInput
	case esc && !st.Recording && st.Processing:
		return CancelPrompt
	case esc && !st.Recording && !st.Processing && st.Input != "":
		return ClearInput
	case ev.Meta && ev.Shift && ev.Key == "m":
		return ToggleRecording
	}
	return PassThrough
}
