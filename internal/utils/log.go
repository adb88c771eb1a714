package utils

import "strings"

// TruncateForLog collapses whitespace runs to single spaces and shortens the
// result to limit runes, appending an ellipsis when truncated. Model output
// spans many lines; log entries should not.
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
