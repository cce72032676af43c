package permission

import "strings"

// negativeMarkers are substrings that identify a rejecting option kind.
var negativeMarkers = []string{"reject", "deny", "cancel", "decline"}

// ChooseEscapeOption picks the option that escape should trigger: the first
// option whose kind reads as negative, otherwise the last option. ok is
// false when there are no options at all, in which case the caller denies
// the request outright.
func ChooseEscapeOption(opts []Option) (Option, bool) {
	if len(opts) == 0 {
		return Option{}, false
	}
	for _, o := range opts {
		kind := strings.ToLower(o.Kind)
		for _, marker := range negativeMarkers {
			if strings.Contains(kind, marker) {
				return o, true
			}
		}
	}
	return opts[len(opts)-1], true
}
