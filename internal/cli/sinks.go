package cli

import (
	"io"

	"syncrun/internal/ui/live"
	"syncrun/pkg/outputsync"
)

// newPlainSink streams synchronized output straight to the CLI writers.
func newPlainSink(stdout, stderr io.Writer) outputsync.Sink {
	return outputsync.NewWriterSink(stdout, stderr)
}

// liveUI abstracts the live controller so tests can substitute it.
type liveUI interface {
	outputsync.Observer
	RunStarted(runID string)
	RunFinished()
	Wait()
}

// startLiveUI launches the bubbletea controller; overridden in tests.
var startLiveUI = func(stdout io.Writer, opts live.Options) liveUI {
	return live.Start(stdout, opts)
}

// liveSink buffers synchronized output while the live UI owns the terminal,
// for replay after the UI exits.
type liveSink struct {
	buf *outputsync.BufferSink
}

func newLiveSink() *liveSink {
	return &liveSink{buf: outputsync.NewBufferSink()}
}

// Write implements outputsync.Sink.
func (s *liveSink) Write(channel outputsync.Channel, p []byte) error {
	return s.buf.Write(channel, p)
}

// replay writes the buffered channels to the CLI writers.
func (s *liveSink) replay(stdout, stderr io.Writer) error {
	if out := s.buf.String(outputsync.ChannelOut); out != "" {
		if _, err := io.WriteString(stdout, out); err != nil {
			return err
		}
	}
	if errOut := s.buf.String(outputsync.ChannelErr); errOut != "" {
		if _, err := io.WriteString(stderr, errOut); err != nil {
			return err
		}
	}
	return nil
}
