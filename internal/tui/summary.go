package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"filebot/pkg/types"
)

// CompletionLine is the one-line result of a pass, as written to the log.
func CompletionLine(s types.Summary) string {
	return fmt.Sprintf("Organization complete. Processed: %d, Skipped: %d", s.Processed, s.Skipped)
}

// RenderSummary formats a pass summary for the terminal. Zero counters are
// left out so a quiet pass stays short.
func RenderSummary(s types.Summary) string {
	var b strings.Builder

	header := SuccessStyle.Render(CompletionLine(s))
	if s.DryRun {
		header = WarningStyle.Render("[DRY RUN] ") + header
	}
	b.WriteString(header)

	rows := []struct {
		label string
		value int
		style lipgloss.Style
	}{
		{"Moved", s.Moved, SuccessStyle},
		{"Simulated", s.Simulated, WarningStyle},
		{"Renamed", s.Renamed, StatusStyle},
		{"Overwritten", s.Overwritten, WarningStyle},
		{"Unmatched", s.Unmatched, StatusStyle},
		{"Excluded", s.Excluded, StatusStyle},
		{"Locked", s.Locked, WarningStyle},
		{"Conflicts", s.Conflicts, WarningStyle},
		{"Failed", s.Failed, ErrorStyle},
	}
	for _, row := range rows {
		if row.value == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render(row.label))
		b.WriteString(row.style.Render(fmt.Sprintf("%d", row.value)))
	}
	if s.BytesMoved > 0 {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("Size"))
		b.WriteString(StatusStyle.Render(humanize.Bytes(uint64(s.BytesMoved))))
	}

	return SummaryBox.Render(b.String())
}
