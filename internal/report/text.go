package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// truncate shortens s to maxWidth columns, ending in "..." when cut.
// Escape sequences and wide characters are measured correctly.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "...")
}

// fit truncates s to width columns and pads it with spaces to exactly width.
func fit(s string, width int) string {
	s = truncate(s, width)
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// row joins cells that were already fitted to their columns.
func row(cells ...string) string {
	return strings.Join(cells, "  ")
}
