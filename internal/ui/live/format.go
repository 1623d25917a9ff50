package live

import (
	"fmt"
	"strconv"
	"time"
)

// formatStatus renders the status cell for a producer row.
func formatStatus(row ProducerRow) string {
	if row.Active {
		return "active"
	}
	return "done"
}

// formatRowDuration renders elapsed time for a producer row.
func formatRowDuration(row ProducerRow, now time.Time) string {
	if row.RegisteredAt.IsZero() {
		return ""
	}
	end := now
	if !row.FinishedAt.IsZero() {
		end = row.FinishedAt
	}
	elapsed := end.Sub(row.RegisteredAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed.Round(100 * time.Millisecond).String()
}

// formatLabel truncates a label for narrow tables.
func formatLabel(label string, width int) string {
	if width <= 0 || len(label) <= width {
		return label
	}
	if width <= 1 {
		return label[:width]
	}
	return label[:width-1] + "…"
}

// formatBytes renders a byte count with a unit suffix.
func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return strconv.Itoa(n) + "B"
	}
}

// fmtInt renders an int for summary lines.
func fmtInt(n int) string {
	return strconv.Itoa(n)
}
