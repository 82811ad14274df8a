// Package textx provides small text utilities used across the project.
package textx

import (
	"strings"
	"unicode/utf8"
)

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	// strip control chars outside tab/newline/carriage return
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// CollapseSpace sanitizes s and collapses all whitespace runs to single
// spaces. Extracted document text goes through this before prompting so page
// breaks and layout artifacts do not bloat token usage.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(SanitizeText(s)), " ")
}

// Truncate caps s at maxLen bytes, marking the cut with an ellipsis. The cut
// point backs off to a rune boundary so truncated text stays valid UTF-8.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	marker := ""
	if maxLen > 3 {
		cut = maxLen - 3
		marker = "..."
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + marker
}
