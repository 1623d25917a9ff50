package live

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the run header line.
func renderHeader(state State, now time.Time, noColor bool) string {
	line := "Run " + state.RunID
	if !state.StartedAt.IsZero() {
		line += " | Elapsed: " + now.Sub(state.StartedAt).Round(100*time.Millisecond).String()
	}
	if state.Finished {
		line += " | finished"
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderSummary renders the producer and channel counters line.
func renderSummary(state State, noColor bool) string {
	line := "Active: " + fmtInt(state.Counts.Active) +
		" Done: " + fmtInt(state.Counts.Done) +
		" | out: " + fmtInt(state.Out.Operations) + " ops / " + formatBytes(state.Out.Bytes) +
		" err: " + fmtInt(state.Err.Operations) + " ops / " + formatBytes(state.Err.Bytes)
	if failed := state.Out.Failed + state.Err.Failed; failed > 0 {
		line += " Failed: " + fmtInt(failed)
	}
	return stylize(line, noColor, lipgloss.Color("242"))
}

// renderQueueLine renders current queue depths.
func renderQueueLine(state State, noColor bool) string {
	line := "Queue depth out: " + fmtInt(state.Out.Depth) + " (max " + fmtInt(state.Out.MaxDepth) + ")" +
		" err: " + fmtInt(state.Err.Depth) + " (max " + fmtInt(state.Err.MaxDepth) + ")"
	return stylize(line, noColor, lipgloss.Color("240"))
}

// renderFooter renders the last event line.
func renderFooter(state State, noColor bool) string {
	if state.LastEvent == "" {
		return ""
	}
	return stylize("Last event: "+state.LastEvent, noColor, lipgloss.Color("244"))
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
