package console

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"syncrun/pkg/outputsync"
)

// styles renders captured lines for the terminal. The zero value renders
// plain text.
type styles struct {
	enabled bool
	label   lipgloss.Style
	errLine lipgloss.Style
	dim     lipgloss.Style
}

// newStyles builds the capture styles; disabled styles pass text through.
func newStyles(enabled bool) styles {
	if !enabled {
		return styles{}
	}
	return styles{
		enabled: true,
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		errLine: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		dim:     lipgloss.NewStyle().Faint(true),
	}
}

// line renders one captured line with its producer label prefix.
func (s styles) line(label, text string, source outputsync.Source) string {
	if !s.enabled {
		return fmt.Sprintf("[%s] %s", label, text)
	}
	if source == outputsync.SourceError {
		text = s.errLine.Render(text)
	}
	return fmt.Sprintf("%s %s", s.label.Render("["+label+"]"), text)
}

// repeat renders a deduplication summary line.
func (s styles) repeat(text string) string {
	if !s.enabled {
		return text
	}
	return s.dim.Render(text)
}
