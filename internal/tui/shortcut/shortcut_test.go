package shortcut

import "testing"

func TestDispatch(t *testing.T) {
	esc := KeyEvent{Key: "esc"}
	enter := KeyEvent{Key: "enter"}
	ctrlC := KeyEvent{Key: "c", Ctrl: true}
	voiceChord := KeyEvent{Key: "m", Meta: true, Shift: true}

	cases := []struct {
		name string
		ev   KeyEvent
		st   UIState
		want Action
	}{
		{
			name: "escape resolves pending permission",
			ev:   esc,
			st:   UIState{PendingPermission: true},
			want: ResolvePermission,
		},
		{
			name: "permission beats recording",
			ev:   esc,
			st:   UIState{PendingPermission: true, Recording: true},
			want: ResolvePermission,
		},
		{
			name: "permission beats processing",
			ev:   esc,
			st:   UIState{PendingPermission: true, Processing: true},
			want: ResolvePermission,
		},
		{
			name: "escape cancels recording",
			ev:   esc,
			st:   UIState{Recording: true},
			want: CancelRecording,
		},
		{
			name: "recording cancel beats prompt cancel",
			ev:   esc,
			st:   UIState{Recording: true, Processing: true},
			want: CancelRecording,
		},
		{
			name: "return accepts recording",
			ev:   enter,
			st:   UIState{Recording: true},
			want: AcceptRecording,
		},
		{
			name: "return passes through when idle",
			ev:   enter,
			st:   UIState{},
			want: PassThrough,
		},
		{
			name: "ctrl+c clears non-empty input",
			ev:   ctrlC,
			st:   UIState{Input: "draft"},
			want: ClearInput,
		},
		{
			name: "ctrl+c with empty input passes through",
			ev:   ctrlC,
			st:   UIState{},
			want: PassThrough,
		},
		{
			name: "ctrl+c clears input even while processing",
			ev:   ctrlC,
			st:   UIState{Input: "draft", Processing: true},
			want: ClearInput,
		},
		{
			name: "escape cancels an active prompt",
			ev:   esc,
			st:   UIState{Processing: true},
			want: CancelPrompt,
		},
		{
			name: "prompt cancel wins over input clear",
			ev:   esc,
			st:   UIState{Processing: true, Input: "draft"},
			want: CancelPrompt,
		},
		{
			name: "escape clears input when idle",
			ev:   esc,
			st:   UIState{Input: "draft"},
			want: ClearInput,
		},
		{
			name: "escape with nothing to do passes through",
			ev:   esc,
			st:   UIState{},
			want: PassThrough,
		},
		{
			name: "voice chord toggles recording",
			ev:   voiceChord,
			st:   UIState{},
			want: ToggleRecording,
		},
		{
			name: "voice chord works while processing",
			ev:   voiceChord,
			st:   UIState{Processing: true, Input: "draft"},
			want: ToggleRecording,
		},
		{
			name: "plain m passes through",
			ev:   KeyEvent{Key: "m"},
			st:   UIState{},
			want: PassThrough,
		},
		{
			name: "meta m without shift passes through",
			ev:   KeyEvent{Key: "m", Meta: true},
			st:   UIState{},
			want: PassThrough,
		},
		{
			name: "modified escape is not the escape shortcut",
			ev:   KeyEvent{Key: "esc", Ctrl: true},
			st:   UIState{PendingPermission: true},
			want: PassThrough,
		},
		{
			name: "plain letter passes through to the composer",
			ev:   KeyEvent{Key: "x"},
			st:   UIState{Processing: true, Input: "draft"},
			want: PassThrough,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Dispatch(tc.ev, tc.st); got != tc.want {
				t.Errorf("Dispatch(%+v, %+v) = %v, want %v", tc.ev, tc.st, got, tc.want)
			}
		})
	}
}
