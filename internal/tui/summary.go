package tui

import (
	"fmt"
	"strconv"
	"strings"

	"photosort/internal/triage"
)

type SummaryRow struct {
	Label string
	Value string
}

// SummaryRows lays out a session summary for RenderSummary.
func SummaryRows(sum triage.Summary, binDir string) []SummaryRow {
	rows := []SummaryRow{
		{Label: "Photos", Value: strconv.Itoa(sum.Total)},
		{Label: "Moved", Value: strconv.Itoa(sum.Moved)},
		{Label: "Deleted", Value: strconv.Itoa(sum.Deleted)},
		{Label: "Skipped", Value: strconv.Itoa(sum.Skipped)},
		{Label: "Crops", Value: strconv.Itoa(sum.Cropped)},
		{Label: "Left", Value: strconv.Itoa(sum.Remaining)},
	}
	if sum.Deleted > 0 && binDir != "" {
		rows = append(rows, SummaryRow{Label: "Bin", Value: binDir})
	}
	return rows
}

func RenderSummary(rows []SummaryRow) string {
	labelWidth := 0
	valueWidth := 0
	for _, row := range rows {
		labelWidth = max(labelWidth, len(row.Label))
		valueWidth = max(valueWidth, len(row.Value))
	}

	hline := dimStyle.Render(strings.Repeat("-", labelWidth+valueWidth+3))
	lines := []string{hline}

	for _, row := range rows {
		label := padRight(row.Label, labelWidth)
		value := padRight(row.Value, valueWidth)
		line := fmt.Sprintf("%s | %s", labelStyle.Render(label), valueStyle.Render(value))
		lines = append(lines, line)
	}

	lines = append(lines, hline)
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
