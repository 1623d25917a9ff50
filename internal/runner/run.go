// Package runner drives a configured workload of concurrent producers
// through the output synchronizer and collects a run report.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"syncrun/internal/config"
	"syncrun/internal/console"
	"syncrun/internal/report"
	"syncrun/pkg/outputsync"
)

// RunOptions wires the run's collaborators.
type RunOptions struct {
	// Sink receives the serialized output. Required.
	Sink outputsync.Sink
	// Observer receives synchronizer events, e.g. for a live UI. Optional.
	Observer outputsync.Observer
	// Styled enables terminal styling on captured lines.
	Styled bool
	// RunID overrides the generated run identifier.
	RunID string
}

// Run executes the configured workload and returns the assembled results.
func Run(ctx context.Context, cfg config.Config, opts RunOptions) (report.Results, error) {
	runID := opts.RunID
	if runID == "" {
		generated, err := NewRunID()
		if err != nil {
			return report.Results{}, err
		}
		runID = generated
	}

	collected := newMetrics()
	observer := outputsync.Observer(collected)
	if opts.Observer != nil {
		observer = fanoutObserver{collected, opts.Observer}
	}
	s := outputsync.NewWithObserver(cfg.SyncOptions(), opts.Sink, observer)

	started := time.Now()
	banner := fmt.Sprintf("run %s: %d producer group(s)\n", runID, len(cfg.Workload.Producers))
	if err := s.WriteOutput(ctx, outputsync.NewSystemOperation(
		outputsync.Text(banner), outputsync.ChannelOut, outputsync.PriorityHigh)); err != nil {
		return report.Results{}, fmt.Errorf("write run banner: %w", err)
	}

	var mu sync.Mutex
	producers := make([]report.ProducerResult, 0)
	record := func(result report.ProducerResult) {
		mu.Lock()
		producers = append(producers, result)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, group := range cfg.Workload.Producers {
		for i := 0; i < group.Count; i++ {
			group := group
			label := fmt.Sprintf("%s-%d", group.LabelPrefix, i+1)
			g.Go(func() error {
				result, err := runProducer(gctx, s, group, label, opts.Styled)
				record(result)
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		return report.Results{}, err
	}

	stats := s.Stats()
	if err := s.Shutdown(ctx); err != nil {
		return report.Results{}, fmt.Errorf("shutdown synchronizer: %w", err)
	}
	finished := time.Now()

	totalsByChannel, maxDepth, failed := collected.snapshot()
	results := report.Results{
		RunID:      runID,
		StartedAt:  started,
		FinishedAt: finished,
		Producers:  producers,
		Channels: map[string]report.ChannelSummary{
			"out": channelSummary(totalsByChannel[outputsync.ChannelOut]),
			"err": channelSummary(totalsByChannel[outputsync.ChannelErr]),
		},
		Summary: report.RunSummary{
			Producers:             len(producers),
			FailedOperations:      failed,
			WallTimeSeconds:       finished.Sub(started).Seconds(),
			MaxObservedQueueDepth: maxDepth,
		},
	}
	results.ApplyStats(stats)
	return results, nil
}

// runProducer registers one producer, emits its scripted messages through a
// console capture, and unregisters.
func runProducer(ctx context.Context, s *outputsync.Synchronizer, group config.ProducerGroup, label string, styled bool) (report.ProducerResult, error) {
	result := report.ProducerResult{
		Label:    label,
		Priority: group.Priority,
		Channel:  group.Channel,
	}
	pc := outputsync.NewTestContext(label, outputsync.Priority(group.Priority))
	if err := s.RegisterTest(pc); err != nil {
		return result, fmt.Errorf("register %s: %w", label, err)
	}
	capture := console.New(s, pc, console.Config{Styled: styled})
	w := capture.Out()
	if outputsync.Channel(group.Channel) == outputsync.ChannelErr {
		w = capture.Err()
	}
	for j := 1; j <= group.Messages; j++ {
		if _, err := fmt.Fprintf(w, "message %d of %d\n", j, group.Messages); err != nil {
			result.Errors++
			continue
		}
		result.Operations++
	}
	if err := capture.Close(ctx); err != nil {
		result.Errors++
	}
	if err := s.UnregisterTest(ctx, pc); err != nil {
		return result, fmt.Errorf("unregister %s: %w", label, err)
	}
	return result, nil
}

// channelSummary converts collected totals into the report form.
func channelSummary(totals channelTotals) report.ChannelSummary {
	return report.ChannelSummary{Operations: totals.operations, Bytes: totals.bytes}
}
