package permission

import "testing"

func TestChooseEscapeOption(t *testing.T) {
	cases := []struct {
		name   string
		opts   []Option
		wantID string
		wantOK bool
	}{
		{
			name: "first negative kind wins",
			opts: []Option{
				{ID: "a", Kind: "allow"},
				{ID: "r", Kind: "reject"},
				{ID: "d", Kind: "deny"},
			},
			wantID: "r",
			wantOK: true,
		},
		{
			name: "kind match is case-insensitive substring",
			opts: []Option{
				{ID: "a", Kind: "allow"},
				{ID: "x", Kind: "Deny-Once"},
			},
			wantID: "x",
			wantOK: true,
		},
		{
			name: "cancel counts as negative",
			opts: []Option{
				{ID: "y", Kind: "cancel_request"},
				{ID: "a", Kind: "allow"},
			},
			wantID: "y",
			wantOK: true,
		},
		{
			name: "decline counts as negative",
			opts: []Option{
				{ID: "a", Kind: "allow"},
				{ID: "z", Kind: "politely_declines"},
			},
			wantID: "z",
			wantOK: true,
		},
		{
			name: "no negative kind falls back to last option",
			opts: []Option{
				{ID: "a", Kind: "allow"},
				{ID: "b", Kind: "allow_always"},
			},
			wantID: "b",
			wantOK: true,
		},
		{
			name:   "empty options report no choice",
			opts:   nil,
			wantOK: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ChooseEscapeOption(tc.opts)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && got.ID != tc.wantID {
				t.Errorf("chose option %q, want %q", got.ID, tc.wantID)
			}
		})
	}
}

func TestDefaultOptionsEscapeToReject(t *testing.T) {
	opt, ok := ChooseEscapeOption(DefaultOptions())
	if !ok || opt.Kind != "reject" {
		t.Fatalf("default options escaped to %+v, want the reject option", opt)
	}
}
