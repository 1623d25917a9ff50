package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// OutputPaths describes filesystem locations for run artifacts.
type OutputPaths struct {
	Root  string
	RunID string
}

// RunDir returns the directory for a specific run.
func (o OutputPaths) RunDir() string {
	return filepath.Join(o.Root, o.RunID)
}

// ResultsPath returns the path to results.json.
func (o OutputPaths) ResultsPath() string {
	return filepath.Join(o.RunDir(), "results.json")
}

// MarkdownPath returns the path to the Markdown report.
func (o OutputPaths) MarkdownPath() string {
	return filepath.Join(o.RunDir(), "report.md")
}

// HTMLPath returns the path to the HTML report.
func (o OutputPaths) HTMLPath() string {
	return filepath.Join(o.RunDir(), "report.html")
}

// WriteRunOutputs writes results.json, report.md, and report.html.
func WriteRunOutputs(results Results, outputDir string) (OutputPaths, error) {
	if outputDir == "" {
		return OutputPaths{}, fmt.Errorf("output directory is required")
	}
	paths := OutputPaths{Root: outputDir, RunID: results.RunID}
	if err := os.MkdirAll(paths.RunDir(), 0o755); err != nil {
		return OutputPaths{}, fmt.Errorf("create output dir: %w", err)
	}
	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return OutputPaths{}, fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(paths.ResultsPath(), payload, 0o644); err != nil {
		return OutputPaths{}, fmt.Errorf("write results.json: %w", err)
	}
	markdown := RenderMarkdown(results)
	if err := os.WriteFile(paths.MarkdownPath(), []byte(markdown), 0o644); err != nil {
		return OutputPaths{}, fmt.Errorf("write report.md: %w", err)
	}
	html, err := RenderHTML(results)
	if err != nil {
		return OutputPaths{}, err
	}
	if err := os.WriteFile(paths.HTMLPath(), []byte(html), 0o644); err != nil {
		return OutputPaths{}, fmt.Errorf("write report.html: %w", err)
	}
	return paths, nil
}
