package main

import (
	"github.com/charmbracelet/lipgloss"

	"filebot/internal/tui"
)

var (
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#81A1C1"))
	boldStyle = lipgloss.NewStyle().Bold(true)
)

func infoText(s string) string    { return infoStyle.Render(s) }
func successText(s string) string { return tui.SuccessStyle.Render(s) }
func warningText(s string) string { return tui.WarningStyle.Render(s) }
func errorText(s string) string   { return tui.ErrorStyle.Render(s) }
func boldText(s string) string    { return boldStyle.Render(s) }
