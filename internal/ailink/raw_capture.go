package ailink

import "unicode/utf8"

// Preview returns s clipped to at most max bytes on a rune boundary, with an
// ellipsis when clipped. A non-positive max returns s unchanged.
func Preview(s string, max int) string {
	s = safeOneLine(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
