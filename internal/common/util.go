package common

// TruncateRunes shortens s to at most n runes, appending an ellipsis when
// anything was cut. Used for backup previews shown to the user.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
