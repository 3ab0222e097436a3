package utils

import "strings"

// TruncateForLog collapses whitespace runs (response bodies are often
// pretty-printed) and cuts s to limit runes, appending an ellipsis when cut.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
