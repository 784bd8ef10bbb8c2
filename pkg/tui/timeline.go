package tui

import (
	"fmt"
	"strings"
)

// markerColumn maps seconds onto a track of width cells.
func markerColumn(seconds, duration float64, width int) int {
	if width < 1 || duration <= 0 || seconds <= 0 {
		return 0
	}
	col := int(seconds / duration * float64(width-1))
	if col > width-1 {
		col = width - 1
	}
	return col
}

// timeline draws the time track with the marker at seconds.
func timeline(seconds, duration float64, width int) string {
	if width < 1 {
		return ""
	}
	col := markerColumn(seconds, duration, width)

	var sb strings.Builder
	sb.WriteString(trackStyle.Render(strings.Repeat("─", col)))
	sb.WriteString(markerStyle.Render("┃"))
	sb.WriteString(trackStyle.Render(strings.Repeat("─", width-col-1)))
	sb.WriteString(labelStyle.Render(fmt.Sprintf(" %.2fs / %.2fs", seconds, duration)))
	return sb.String()
}
