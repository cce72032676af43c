package terminal

// MaxViewChars caps how much session output the preview renders. The full
// transcript stays in the session buffer; this is a display limit only.
const MaxViewChars = 20000

// Tail returns the trailing limit characters of s.
func Tail(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[len(r)-limit:])
}
