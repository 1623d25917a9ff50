package outputsync

import (
	"sync"
	"testing"
	"time"

	"syncrun/internal/testutil"
)

// runWithTimeout fails the test if fn does not complete within timeout.
func runWithTimeout(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()
	ctx := testutil.Context(t, timeout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-ctx.Done():
		t.Fatalf("test timed out")
	case <-done:
	}
}

// tickingSink advances a fake clock by a fixed step on every write, making
// processing-time accounting deterministic.
type tickingSink struct {
	inner *BufferSink
	clock *testutil.FakeClock
	step  time.Duration
}

// Write advances the clock and delegates.
func (s *tickingSink) Write(channel Channel, p []byte) error {
	s.clock.Advance(s.step)
	return s.inner.Write(channel, p)
}

// gatedSink blocks its first write until the gate is opened, so tests can
// pile up pending operations behind an in-progress drain.
type gatedSink struct {
	inner *BufferSink
	gate  chan struct{}
	mu    sync.Mutex
	held  bool
	stuck chan struct{}
}

func newGatedSink() *gatedSink {
	return &gatedSink{
		inner: NewBufferSink(),
		gate:  make(chan struct{}),
		stuck: make(chan struct{}),
	}
}

// Write blocks on the first call until the gate opens, then delegates.
func (g *gatedSink) Write(channel Channel, p []byte) error {
	g.mu.Lock()
	first := !g.held
	g.held = true
	g.mu.Unlock()
	if first {
		close(g.stuck)
		<-g.gate
	}
	return g.inner.Write(channel, p)
}

// open releases the first write.
func (g *gatedSink) open() {
	close(g.gate)
}

// waitStuck blocks until the first write is in progress.
func (g *gatedSink) waitStuck(t *testing.T) {
	t.Helper()
	select {
	case <-g.stuck:
	case <-time.After(time.Second):
		t.Fatalf("sink never received the gated write")
	}
}
