// Package styles provides shared lipgloss styles for CLI output.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Semantic colors used across command output.
var (
	ColorPrimary = lipgloss.Color("#7aa2f7")
	ColorMuted   = lipgloss.Color("#565f89")
	ColorSuccess = lipgloss.Color("#9ece6a")
	ColorWarning = lipgloss.Color("#e0af68")
	ColorError   = lipgloss.Color("#f7768e")
)

var (
	// Header renders section headings in the show/summary output.
	Header = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	// Muted renders secondary detail such as timestamps and URLs.
	Muted = lipgloss.NewStyle().Foreground(ColorMuted)

	// Success renders healthy source states.
	Success = lipgloss.NewStyle().Foreground(ColorSuccess)

	// Warning renders degraded states such as login-expired sources.
	Warning = lipgloss.NewStyle().Foreground(ColorWarning)

	// Error renders failed source states.
	Error = lipgloss.NewStyle().Foreground(ColorError)
)

// StatusChip renders a short labelled state marker for a source row.
func StatusChip(ok bool, degraded bool) string {
	switch {
	case ok && !degraded:
		return Success.Render("● ok")
	case degraded:
		return Warning.Render("◐ login expired")
	default:
		return Error.Render("○ failed")
	}
}
