// Package termview renders indicator views for the terminal.
package termview

import "github.com/charmbracelet/lipgloss"

var (
	Blue  = lipgloss.Color("#5FAFFF")
	Gray  = lipgloss.Color("#888888")
	Muted = lipgloss.Color("#555555")
	White = lipgloss.Color("#E2E2E2")
)

var (
	// Title is the main header text style.
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(White)

	// Label is used for field names in detail views.
	Label = lipgloss.NewStyle().
		Foreground(Gray).
		Bold(true)

	// MutedText is for hints and empty states.
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)

	// AccentText highlights the indicator code.
	AccentText = lipgloss.NewStyle().
			Foreground(Blue)
)
