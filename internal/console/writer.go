package console

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"syncrun/pkg/outputsync"
)

// lineWriter buffers raw writes into complete lines, deduplicates repeated
// messages, and submits each emitted line as one operation.
type lineWriter struct {
	capture  *Capture
	channel  outputsync.Channel
	source   outputsync.Source
	priority outputsync.Priority
	styles   styles

	mu      sync.Mutex
	partial strings.Builder
	last    string
	repeats int
}

// Write implements io.Writer. Complete lines are emitted; a trailing partial
// line stays buffered until the next write or close.
func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	rest := string(p)
	for {
		idx := strings.IndexByte(rest, '\n')
		if idx < 0 {
			w.partial.WriteString(rest)
			break
		}
		line := w.partial.String() + rest[:idx]
		w.partial.Reset()
		rest = rest[idx+1:]
		if err := w.emitLocked(context.Background(), line); err != nil {
			return len(p), err
		}
	}
	return len(p), nil
}

// emitLocked runs a line through deduplication. Identical consecutive lines
// collapse into one line plus a repeat summary when the run ends.
func (w *lineWriter) emitLocked(ctx context.Context, line string) error {
	if line == w.last {
		w.repeats++
		return nil
	}
	if err := w.flushRepeatsLocked(ctx); err != nil {
		return err
	}
	w.last = line
	return w.submitLocked(ctx, line)
}

// flushRepeatsLocked emits the pending repeat summary, if any.
func (w *lineWriter) flushRepeatsLocked(ctx context.Context) error {
	if w.repeats == 0 {
		return nil
	}
	n := w.repeats
	w.repeats = 0
	text := w.styles.repeat(fmt.Sprintf("(last message repeated %d more times)", n)) + "\n"
	return w.capture.submit(ctx, w.channel, w.source, w.priority, text)
}

// submitLocked formats and sends one line to the synchronizer.
func (w *lineWriter) submitLocked(ctx context.Context, line string) error {
	text := w.styles.line(w.capture.pc.Label, line, w.source) + "\n"
	return w.capture.submit(ctx, w.channel, w.source, w.priority, text)
}

// close flushes the trailing partial line and any repeat summary.
func (w *lineWriter) close(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.partial.Len() > 0 {
		line := w.partial.String()
		w.partial.Reset()
		if err := w.emitLocked(ctx, line); err != nil {
			return err
		}
	}
	if err := w.flushRepeatsLocked(ctx); err != nil {
		return err
	}
	w.last = ""
	return nil
}
