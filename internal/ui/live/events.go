package live

import "syncrun/pkg/outputsync"

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventRunStart signals the start of a run.
	EventRunStart EventKind = iota
	// EventRegister signals a producer registration.
	EventRegister
	// EventUnregister signals a producer unregistration.
	EventUnregister
	// EventWrite delivers a completed output operation.
	EventWrite
	// EventQueueDepth delivers a queue depth sample.
	EventQueueDepth
	// EventRunEnd signals run completion.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind     EventKind
	RunID    string
	Producer outputsync.ProducerContext
	Channel  outputsync.Channel
	Priority outputsync.Priority
	Source   outputsync.Source
	Bytes    int
	Depth    int
	Err      error
}
