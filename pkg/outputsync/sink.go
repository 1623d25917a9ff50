package outputsync

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Sink is the single point of contact with the physical environment. The
// synchronizer performs every raw write through it, so tests substitute a
// double here.
type Sink interface {
	// Write emits one drained payload to the given channel.
	Write(channel Channel, p []byte) error
}

// StdSink writes to the process's standard output and standard error.
type StdSink struct {
	out io.Writer
	err io.Writer
	tty bool
}

// NewStdSink creates a sink backed by os.Stdout and os.Stderr.
func NewStdSink() *StdSink {
	return &StdSink{
		out: os.Stdout,
		err: os.Stderr,
		tty: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// NewWriterSink creates a sink over arbitrary writers, for embedding the
// synchronizer behind pipes or files.
func NewWriterSink(out, err io.Writer) *StdSink {
	return &StdSink{out: out, err: err}
}

// Write emits p to the writer backing the channel.
func (s *StdSink) Write(channel Channel, p []byte) error {
	w := s.out
	if channel == ChannelErr {
		w = s.err
	}
	if w == nil {
		return fmt.Errorf("sink: no writer for channel %s", channel)
	}
	if _, err := w.Write(p); err != nil {
		return fmt.Errorf("sink write %s: %w", channel, err)
	}
	return nil
}

// Terminal reports whether standard output is a terminal.
func (s *StdSink) Terminal() bool {
	return s.tty
}

// BufferSink is an in-memory sink for tests. FailNext injects a write error
// for a single upcoming write.
type BufferSink struct {
	mu      sync.Mutex
	bufs    map[Channel]*bytes.Buffer
	nextErr error
}

// NewBufferSink creates an empty BufferSink.
func NewBufferSink() *BufferSink {
	return &BufferSink{bufs: map[Channel]*bytes.Buffer{
		ChannelOut: {},
		ChannelErr: {},
	}}
}

// Write records p against the channel, or returns the injected error.
func (b *BufferSink) Write(channel Channel, p []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.nextErr != nil {
		err := b.nextErr
		b.nextErr = nil
		return err
	}
	b.bufs[channel].Write(p)
	return nil
}

// FailNext makes the next write fail with err.
func (b *BufferSink) FailNext(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextErr = err
}

// String returns everything written to the channel.
func (b *BufferSink) String(channel Channel) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bufs[channel].String()
}

// Lines returns the non-empty lines written to the channel.
func (b *BufferSink) Lines(channel Channel) []string {
	var lines []string
	for _, line := range strings.Split(b.String(channel), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
