package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Muted is for row numbers and ids.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold is for headings.
	Bold = lipgloss.NewStyle().Bold(true)
)
