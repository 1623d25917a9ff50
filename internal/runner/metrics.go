package runner

import (
	"sync"

	"syncrun/pkg/outputsync"
)

// metrics aggregates synchronizer events into per-channel totals for the
// run report.
type metrics struct {
	mu       sync.Mutex
	channels map[outputsync.Channel]*channelTotals
	maxDepth int
	failed   int
}

type channelTotals struct {
	operations int
	bytes      int
}

func newMetrics() *metrics {
	return &metrics{channels: map[outputsync.Channel]*channelTotals{
		outputsync.ChannelOut: {},
		outputsync.ChannelErr: {},
	}}
}

// OnRegister implements outputsync.Observer.
func (m *metrics) OnRegister(outputsync.ProducerContext) {}

// OnUnregister implements outputsync.Observer.
func (m *metrics) OnUnregister(outputsync.ProducerContext) {}

// OnWrite accumulates channel totals and failures.
func (m *metrics) OnWrite(channel outputsync.Channel, _ outputsync.Priority, _ outputsync.Source, bytes int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	totals := m.channels[channel]
	if err != nil {
		m.failed++
		return
	}
	totals.operations++
	totals.bytes += bytes
}

// OnQueueDepth tracks the deepest backlog seen during the run.
func (m *metrics) OnQueueDepth(_ outputsync.Channel, depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if depth > m.maxDepth {
		m.maxDepth = depth
	}
}

// snapshot returns the aggregated totals.
func (m *metrics) snapshot() (map[outputsync.Channel]channelTotals, int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[outputsync.Channel]channelTotals, len(m.channels))
	for ch, totals := range m.channels {
		out[ch] = *totals
	}
	return out, m.maxDepth, m.failed
}

// fanoutObserver forwards every event to each wrapped observer.
type fanoutObserver []outputsync.Observer

func (f fanoutObserver) OnRegister(pc outputsync.ProducerContext) {
	for _, o := range f {
		o.OnRegister(pc)
	}
}

func (f fanoutObserver) OnUnregister(pc outputsync.ProducerContext) {
	for _, o := range f {
		o.OnUnregister(pc)
	}
}

func (f fanoutObserver) OnWrite(channel outputsync.Channel, priority outputsync.Priority, source outputsync.Source, bytes int, err error) {
	for _, o := range f {
		o.OnWrite(channel, priority, source, bytes, err)
	}
}

func (f fanoutObserver) OnQueueDepth(channel outputsync.Channel, depth int) {
	for _, o := range f {
		o.OnQueueDepth(channel, depth)
	}
}
