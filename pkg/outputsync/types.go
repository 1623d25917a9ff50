// Package outputsync serializes output from many concurrently-running
// producers into ordered out and err channels, honoring a priority ranking
// so urgent output is never starved behind low-priority chatter.
package outputsync

import (
	"time"

	"github.com/google/uuid"
)

// Channel identifies one of the two independent output targets.
type Channel string

const (
	// ChannelOut is the standard output channel.
	ChannelOut Channel = "out"
	// ChannelErr is the standard error channel.
	ChannelErr Channel = "err"
)

// channels lists every channel in a stable order.
var channels = []Channel{ChannelOut, ChannelErr}

// Priority ranks operations from most to least urgent.
type Priority string

const (
	// PriorityCritical is for output that must preempt everything pending.
	PriorityCritical Priority = "critical"
	// PriorityHigh is for errors and failures.
	PriorityHigh Priority = "high"
	// PriorityNormal is the default for test output.
	PriorityNormal Priority = "normal"
	// PriorityLow is for verbose diagnostics.
	PriorityLow Priority = "low"
	// PriorityDebug is for debug chatter drained last.
	PriorityDebug Priority = "debug"
)

// priorities lists every priority from most to least urgent.
var priorities = []Priority{PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow, PriorityDebug}

// rank returns the urgency rank of a priority; lower ranks drain first.
// Unknown values rank as normal.
func (p Priority) rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	case PriorityDebug:
		return 4
	default:
		return 2
	}
}

// Valid reports whether p is a known priority level.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow, PriorityDebug:
		return true
	default:
		return false
	}
}

// Source identifies what produced an operation.
type Source string

const (
	// SourceTest marks regular test output.
	SourceTest Source = "test"
	// SourceError marks output describing a failure.
	SourceError Source = "error"
	// SourceSystem marks unattributed output from the runner itself.
	SourceSystem Source = "system"
)

// Payload is the closed set of payload shapes an operation can carry:
// text or raw bytes, decided before the operation reaches the synchronizer.
type Payload struct {
	text    string
	raw     []byte
	isBytes bool
}

// Text wraps a string payload.
func Text(s string) Payload {
	return Payload{text: s}
}

// Bytes wraps a raw byte payload.
func Bytes(b []byte) Payload {
	return Payload{raw: b, isBytes: true}
}

// Data returns the payload as bytes for the sink write.
func (p Payload) Data() []byte {
	if p.isBytes {
		return p.raw
	}
	return []byte(p.text)
}

// Len returns the payload size in bytes.
func (p Payload) Len() int {
	if p.isBytes {
		return len(p.raw)
	}
	return len(p.text)
}

// ProducerContext identifies one logical producer, typically a running test
// case. Contexts are registered with the synchronizer before they may submit
// attributed output.
type ProducerContext struct {
	ID           string
	Label        string
	Priority     Priority
	RegisteredAt time.Time
}

// NewTestContext creates a producer context with a unique ID. An empty
// priority defaults to normal. The registry is not touched.
func NewTestContext(label string, priority Priority) ProducerContext {
	if priority == "" {
		priority = PriorityNormal
	}
	return ProducerContext{
		ID:           uuid.NewString(),
		Label:        label,
		Priority:     priority,
		RegisteredAt: time.Now(),
	}
}

// Operation is a single pending write. Immutable once constructed.
type Operation struct {
	Payload  Payload
	Channel  Channel
	Priority Priority
	Source   Source
	Context  *ProducerContext
}

// NewOperation creates an operation with the defaults channel=out,
// priority=normal, source=test. Callers adjust fields before submitting.
func NewOperation(payload Payload) Operation {
	return Operation{
		Payload:  payload,
		Channel:  ChannelOut,
		Priority: PriorityNormal,
		Source:   SourceTest,
	}
}

// NewSystemOperation creates an unattributed operation from the runner itself.
func NewSystemOperation(payload Payload, channel Channel, priority Priority) Operation {
	op := NewOperation(payload)
	op.Channel = channel
	op.Priority = priority
	op.Source = SourceSystem
	return op
}

// normalize fills zero-valued enum fields with their defaults.
func (op Operation) normalize() Operation {
	if op.Channel == "" {
		op.Channel = ChannelOut
	}
	if op.Priority == "" {
		op.Priority = PriorityNormal
	}
	if op.Source == "" {
		op.Source = SourceTest
	}
	return op
}
