package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// defaultColumns returns the producer table layout.
func defaultColumns() []table.Column {
	return []table.Column{
		{Title: "Producer", Width: 28},
		{Title: "Priority", Width: 10},
		{Title: "Status", Width: 8},
		{Title: "Elapsed", Width: 10},
	}
}

// columnsForWidth adapts the column layout to the terminal width.
func columnsForWidth(width int) []table.Column {
	columns := defaultColumns()
	if width <= 0 {
		return columns
	}
	fixed := 0
	for _, col := range columns[1:] {
		fixed += col.Width
	}
	label := width - fixed - len(columns)*2
	if label < 12 {
		label = 12
	}
	columns[0].Width = label
	return columns
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, now time.Time, labelWidth int) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		rows = append(rows, table.Row{
			formatLabel(row.Label, labelWidth),
			string(row.Priority),
			formatStatus(row),
			formatRowDuration(row, now),
		})
	}
	return rows
}
