package usecase

import "strings"

// extractFirstJSONObject locates the first balanced {...} span in s via naive
// brace matching. It is the bounded recovery step for LLM responses that wrap
// JSON in prose or markdown fences; it never backtracks, so adversarial input
// costs at most one linear scan.
func extractFirstJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}
	depth := 0
	for i := start; i < len(s); i++ {
		if s[i] == '{' {
			depth++
		}
		if s[i] == '}' {
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
