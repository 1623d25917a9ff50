package live

import (
	"time"

	"syncrun/pkg/outputsync"
)

// ProducerRow holds UI state for a single registered producer.
type ProducerRow struct {
	Index        int
	ID           string
	Label        string
	Priority     outputsync.Priority
	Active       bool
	RegisteredAt time.Time
	FinishedAt   time.Time
}

// ChannelCounts aggregates drained output for one channel.
type ChannelCounts struct {
	Operations int
	Bytes      int
	Failed     int
	Depth      int
	MaxDepth   int
}

// StatusCounts aggregates counts by producer status bucket.
type StatusCounts struct {
	Active int
	Done   int
}

// State captures the live UI state for a run.
type State struct {
	RunID     string
	StartedAt time.Time
	LastEvent string
	Rows      []ProducerRow
	Out       ChannelCounts
	Err       ChannelCounts
	Counts    StatusCounts
	Finished  bool
}
