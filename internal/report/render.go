package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// RenderMarkdown builds the Markdown report for one run.
func RenderMarkdown(results Results) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Run %s\n\n", results.RunID)
	fmt.Fprintf(&b, "Started %s, finished %s (%.2fs wall time).\n\n",
		results.StartedAt.Format("2006-01-02 15:04:05 MST"),
		results.FinishedAt.Format("2006-01-02 15:04:05 MST"),
		results.Summary.WallTimeSeconds)

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "- Producers: %d\n", results.Summary.Producers)
	if results.Summary.MonitoringEnabled {
		fmt.Fprintf(&b, "- Operations: %d\n", results.Summary.TotalOperations)
		fmt.Fprintf(&b, "- Average processing: %.3f ms\n", results.Summary.AvgProcessingMillis)
	}
	fmt.Fprintf(&b, "- Failed operations: %d\n\n", results.Summary.FailedOperations)

	fmt.Fprintf(&b, "## Channels\n\n")
	fmt.Fprintf(&b, "| Channel | Operations | Bytes |\n")
	fmt.Fprintf(&b, "|---|---|---|\n")
	for _, channel := range []string{"out", "err"} {
		summary := results.Channels[channel]
		fmt.Fprintf(&b, "| %s | %d | %d |\n", channel, summary.Operations, summary.Bytes)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Producers\n\n")
	fmt.Fprintf(&b, "| Label | Priority | Channel | Operations | Errors |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|\n")
	for _, producer := range results.Producers {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %d |\n",
			producer.Label, producer.Priority, producer.Channel, producer.Operations, producer.Errors)
	}
	return b.String()
}

// RenderHTML converts the Markdown report into a standalone HTML page.
func RenderHTML(results Results) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := md.Convert([]byte(RenderMarkdown(results)), &body); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	var page strings.Builder
	page.WriteString("<!doctype html>\n<html><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&page, "<title>Run %s</title>", results.RunID)
	page.WriteString("</head><body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body></html>\n")
	return page.String(), nil
}
