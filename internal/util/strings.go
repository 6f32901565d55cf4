package util

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// NormalizeKey lowercases and trims a string for use as a consistent lookup key.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Truncate shortens s to at most max terminal cells, marking the cut with "...".
// Escape sequences and wide runes are measured the way the terminal draws them.
func Truncate(s string, max int) string {
	if ansi.StringWidth(s) <= max {
		return s
	}
	if max <= 3 {
		return ansi.Truncate(s, max, "")
	}
	return ansi.Truncate(s, max, "...")
}
