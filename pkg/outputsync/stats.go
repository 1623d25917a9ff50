package outputsync

import (
	"time"

	"syncrun/pkg/locks"
)

// QueueStats describes one channel's pending backlog.
type QueueStats struct {
	Depth      int
	ByPriority map[Priority]int
}

// PerformanceStats aggregates drain timings. Populated only when monitoring
// is enabled.
type PerformanceStats struct {
	TotalOperations   uint64
	AvgProcessingTime time.Duration
}

// Stats is a point-in-time snapshot of the synchronizer.
type Stats struct {
	ActiveTests int
	Queues      map[Channel]QueueStats
	Locks       map[Channel]locks.MutexStats
	Performance *PerformanceStats
}

// Stats returns a snapshot of registry, queue, lock, and performance state.
func (s *Synchronizer) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := Stats{
		ActiveTests: len(s.registry),
		Queues:      make(map[Channel]QueueStats, len(channels)),
		Locks:       make(map[Channel]locks.MutexStats, len(channels)),
	}
	for _, ch := range channels {
		q := s.queues[ch]
		stats.Queues[ch] = QueueStats{Depth: q.len(), ByPriority: q.depthByPriority()}
		stats.Locks[ch] = s.chLocks[ch].Stats()
	}
	if s.cfg.EnableMonitoring {
		perf := PerformanceStats{TotalOperations: s.totalOps}
		if s.totalOps > 0 {
			perf.AvgProcessingTime = s.totalProc / time.Duration(s.totalOps)
		}
		stats.Performance = &perf
	}
	return stats
}

// IsIdle reports whether no producer is registered and both queues are empty.
func (s *Synchronizer) IsIdle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.registry) == 0 && s.queuesEmptyLocked()
}
