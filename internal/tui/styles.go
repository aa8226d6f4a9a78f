package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Main application frame
	App = lipgloss.NewStyle().
		Padding(1, 2)

	// Title style for the menu header
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4F4FB7")).
			Padding(0, 1)

	// Status style for info messages
	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#959595"))

	// Error style for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	// Success style for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	// Warning style for dry runs and skipped counts
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D08770"))

	// Summary box around pass results
	SummaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Padding(0, 1)

	// Label column inside the summary box
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#81A1C1")).
			Width(12)

	// Help line under the menu
	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5A9"))
)
