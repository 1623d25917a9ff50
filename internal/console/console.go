// Package console adapts per-test diagnostic writes into synchronized
// output operations. It splits raw writes into lines, collapses repeated
// messages, and attributes everything to a registered producer.
package console

import (
	"context"
	"io"

	"syncrun/pkg/outputsync"
)

// Config controls capture behavior.
type Config struct {
	// Styled renders label prefixes and error lines with terminal styles.
	Styled bool
}

// Capture intercepts stdout/stderr-style writes for one producer and hands
// them to the synchronizer as attributed operations.
type Capture struct {
	sync *outputsync.Synchronizer
	pc   outputsync.ProducerContext
	out  *lineWriter
	err  *lineWriter
}

// New creates a Capture for a registered producer context.
func New(s *outputsync.Synchronizer, pc outputsync.ProducerContext, cfg Config) *Capture {
	c := &Capture{sync: s, pc: pc}
	styles := newStyles(cfg.Styled)
	c.out = &lineWriter{
		capture:  c,
		channel:  outputsync.ChannelOut,
		source:   outputsync.SourceTest,
		priority: pc.Priority,
		styles:   styles,
	}
	c.err = &lineWriter{
		capture:  c,
		channel:  outputsync.ChannelErr,
		source:   outputsync.SourceError,
		priority: outputsync.PriorityHigh,
		styles:   styles,
	}
	return c
}

// Out returns the writer for regular test output.
func (c *Capture) Out() io.Writer {
	return c.out
}

// Err returns the writer for error output. Lines submitted here carry high
// priority on the err channel.
func (c *Capture) Err() io.Writer {
	return c.err
}

// Close flushes buffered partial lines and pending repeat summaries.
func (c *Capture) Close(ctx context.Context) error {
	if err := c.out.close(ctx); err != nil {
		return err
	}
	return c.err.close(ctx)
}

// submit sends one finished line to the synchronizer.
func (c *Capture) submit(ctx context.Context, channel outputsync.Channel, source outputsync.Source, priority outputsync.Priority, text string) error {
	op := outputsync.NewOperation(outputsync.Text(text))
	op.Channel = channel
	op.Source = source
	op.Priority = priority
	op.Context = &c.pc
	return c.sync.WriteOutput(ctx, op)
}
