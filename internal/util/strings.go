// Package util holds small string helpers shared by the CLI renderer.
package util

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Truncate shortens s to maxLen runes, appending "..." when it cuts.
// It ignores ANSI escapes and display width; for styled terminal text
// use TruncateANSI.
func Truncate(s string, maxLen int) string {
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// TruncateANSI shortens s to maxWidth visual columns, appending "..."
// when it cuts. Escape sequences and wide characters are measured
// correctly, so styled participant output can be clipped for the
// console without breaking colors.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "...")
}

// Snippet renders a multi-line response as a single console line:
// runs of whitespace collapse to one space and the result is clipped
// to maxWidth columns.
func Snippet(s string, maxWidth int) string {
	return TruncateANSI(strings.Join(strings.Fields(s), " "), maxWidth)
}
