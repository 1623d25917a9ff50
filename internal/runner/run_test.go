package runner

import (
	"strings"
	"testing"
	"time"

	"syncrun/internal/config"
	"syncrun/internal/testutil"
	"syncrun/pkg/outputsync"
)

// workloadConfig builds a small normalized config for runner tests.
func workloadConfig(groups ...config.ProducerGroup) config.Config {
	cfg := config.Config{
		Version:  1,
		Workload: config.WorkloadConfig{Producers: groups},
	}
	config.Normalize(&cfg)
	return cfg
}

// TestRunProducesAllMessages verifies every configured message is written.
func TestRunProducesAllMessages(t *testing.T) {
	cfg := workloadConfig(config.ProducerGroup{
		LabelPrefix: "suite-a",
		Count:       3,
		Messages:    5,
		Priority:    "normal",
		Channel:     "out",
	})
	sink := outputsync.NewBufferSink()
	ctx := testutil.Context(t, 10*time.Second)

	results, err := Run(ctx, cfg, RunOptions{Sink: sink})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := sink.Lines(outputsync.ChannelOut)
	// One banner line plus 3 producers x 5 messages.
	if len(lines) != 16 {
		t.Fatalf("expected 16 lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "run "+results.RunID) {
		t.Fatalf("expected banner first, got %q", lines[0])
	}
	if results.Summary.Producers != 3 {
		t.Fatalf("expected 3 producers in summary, got %d", results.Summary.Producers)
	}
	if got := results.Channels["out"].Operations; got != 16 {
		t.Fatalf("expected 16 out operations, got %d", got)
	}
}

// TestRunRoutesErrChannel verifies err-channel groups land on err.
func TestRunRoutesErrChannel(t *testing.T) {
	cfg := workloadConfig(
		config.ProducerGroup{LabelPrefix: "ok", Count: 1, Messages: 2, Priority: "normal", Channel: "out"},
		config.ProducerGroup{LabelPrefix: "bad", Count: 1, Messages: 2, Priority: "high", Channel: "err"},
	)
	sink := outputsync.NewBufferSink()
	ctx := testutil.Context(t, 10*time.Second)

	results, err := Run(ctx, cfg, RunOptions{Sink: sink})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	errLines := sink.Lines(outputsync.ChannelErr)
	if len(errLines) != 2 {
		t.Fatalf("expected 2 err lines, got %v", errLines)
	}
	for _, line := range errLines {
		if !strings.Contains(line, "[bad-1]") {
			t.Fatalf("expected err lines attributed to bad-1, got %q", line)
		}
	}
	if got := results.Channels["err"].Operations; got != 2 {
		t.Fatalf("expected 2 err operations in report, got %d", got)
	}
}

// TestRunLeavesSynchronizerStatsInReport verifies monitoring flows through.
func TestRunLeavesSynchronizerStatsInReport(t *testing.T) {
	cfg := workloadConfig(config.ProducerGroup{
		LabelPrefix: "mon", Count: 2, Messages: 3, Priority: "normal", Channel: "out",
	})
	cfg.Sync.EnableMonitoring = true
	sink := outputsync.NewBufferSink()
	ctx := testutil.Context(t, 10*time.Second)

	results, err := Run(ctx, cfg, RunOptions{Sink: sink})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !results.Summary.MonitoringEnabled {
		t.Fatalf("expected monitoring in summary")
	}
	// Banner plus 2x3 messages.
	if results.Summary.TotalOperations != 7 {
		t.Fatalf("expected 7 total operations, got %d", results.Summary.TotalOperations)
	}
}

// TestRunIDFormat verifies the identifier shape is stable.
func TestRunIDFormat(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	id, err := NewRunIDWithRand(now, strings.NewReader("abcdefgh"))
	if err != nil {
		t.Fatalf("new run id: %v", err)
	}
	if !strings.HasPrefix(id, "20260314T092653Z-") {
		t.Fatalf("unexpected run id %q", id)
	}
	if len(id) != len("20260314T092653Z-")+runIDSuffixBytes*2 {
		t.Fatalf("unexpected run id length for %q", id)
	}
}
