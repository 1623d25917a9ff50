package live

import (
	"fmt"
	"time"

	"syncrun/pkg/outputsync"
)

// Reduce applies one event to the UI state.
func Reduce(state State, event Event, now time.Time) State {
	switch event.Kind {
	case EventRunStart:
		state.RunID = event.RunID
		if state.StartedAt.IsZero() {
			state.StartedAt = now
		}
	case EventRegister:
		state = registerRow(state, event.Producer, now)
		state.LastEvent = fmt.Sprintf("%s registered", event.Producer.Label)
	case EventUnregister:
		state = finishRow(state, event.Producer, now)
		state.LastEvent = fmt.Sprintf("%s done", event.Producer.Label)
	case EventWrite:
		counts := channelCounts(&state, event.Channel)
		if event.Err != nil {
			counts.Failed++
			state.LastEvent = fmt.Sprintf("%s write failed: %v", event.Channel, event.Err)
		} else {
			counts.Operations++
			counts.Bytes += event.Bytes
		}
	case EventQueueDepth:
		counts := channelCounts(&state, event.Channel)
		counts.Depth = event.Depth
		if event.Depth > counts.MaxDepth {
			counts.MaxDepth = event.Depth
		}
	case EventRunEnd:
		state.Finished = true
		state.LastEvent = "run complete"
	}
	state.Counts = recount(state.Rows)
	return state
}

// registerRow appends a row for a newly registered producer.
func registerRow(state State, pc outputsync.ProducerContext, now time.Time) State {
	for _, row := range state.Rows {
		if row.ID == pc.ID {
			return state
		}
	}
	state.Rows = append(state.Rows, ProducerRow{
		Index:        len(state.Rows),
		ID:           pc.ID,
		Label:        pc.Label,
		Priority:     pc.Priority,
		Active:       true,
		RegisteredAt: now,
	})
	return state
}

// finishRow marks a producer's row inactive.
func finishRow(state State, pc outputsync.ProducerContext, now time.Time) State {
	for i := range state.Rows {
		if state.Rows[i].ID == pc.ID {
			state.Rows[i].Active = false
			state.Rows[i].FinishedAt = now
			break
		}
	}
	return state
}

// channelCounts returns the mutable counters for a channel.
func channelCounts(state *State, channel outputsync.Channel) *ChannelCounts {
	if channel == outputsync.ChannelErr {
		return &state.Err
	}
	return &state.Out
}

// recount recomputes producer status counts for the current rows.
func recount(rows []ProducerRow) StatusCounts {
	var counts StatusCounts
	for _, row := range rows {
		if row.Active {
			counts.Active++
		} else {
			counts.Done++
		}
	}
	return counts
}
