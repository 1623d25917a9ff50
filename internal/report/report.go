// Package report assembles run results into JSON, Markdown, and HTML
// artifacts.
package report

import (
	"time"

	"syncrun/pkg/outputsync"
)

// Results is the full record of one run.
type Results struct {
	RunID      string                    `json:"run_id"`
	StartedAt  time.Time                 `json:"started_at"`
	FinishedAt time.Time                 `json:"finished_at"`
	Producers  []ProducerResult          `json:"producers"`
	Channels   map[string]ChannelSummary `json:"channels"`
	Summary    RunSummary                `json:"summary"`
}

// ProducerResult records one producer's contribution.
type ProducerResult struct {
	Label      string `json:"label"`
	Priority   string `json:"priority"`
	Channel    string `json:"channel"`
	Operations int    `json:"operations"`
	Errors     int    `json:"errors"`
}

// ChannelSummary aggregates drained output per channel.
type ChannelSummary struct {
	Operations int `json:"operations"`
	Bytes      int `json:"bytes"`
}

// RunSummary aggregates the run.
type RunSummary struct {
	Producers             int     `json:"producers"`
	TotalOperations       uint64  `json:"total_operations"`
	FailedOperations      int     `json:"failed_operations"`
	AvgProcessingMillis   float64 `json:"avg_processing_millis"`
	WallTimeSeconds       float64 `json:"wall_time_seconds"`
	MonitoringEnabled     bool    `json:"monitoring_enabled"`
	MaxObservedQueueDepth int     `json:"max_observed_queue_depth"`
}

// ApplyStats folds a final synchronizer snapshot into the summary.
func (r *Results) ApplyStats(stats outputsync.Stats) {
	if stats.Performance != nil {
		r.Summary.MonitoringEnabled = true
		r.Summary.TotalOperations = stats.Performance.TotalOperations
		r.Summary.AvgProcessingMillis = float64(stats.Performance.AvgProcessingTime.Microseconds()) / 1000
	}
}
