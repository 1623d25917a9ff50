package outputsync

import "syncrun/pkg/locks"

// DefaultMaxConcurrentTests bounds the producer registry when the
// configuration leaves it unset.
const DefaultMaxConcurrentTests = 100

// QueueConfig controls drain behavior.
type QueueConfig struct {
	// EnableBatching lets the drain loop coalesce consecutive
	// same-priority payloads into a single sink write.
	EnableBatching bool
}

// Config configures a Synchronizer.
type Config struct {
	// Locks configures the per-channel mutexes. The name is used as a
	// prefix; each channel appends its own suffix.
	Locks locks.Config
	// Queue configures drain behavior.
	Queue QueueConfig
	// MaxConcurrentTests bounds the producer registry.
	MaxConcurrentTests int
	// EnableMonitoring turns on performance accounting in Stats.
	EnableMonitoring bool
}

// withDefaults fills unset fields with defaults.
func (c Config) withDefaults() Config {
	if c.MaxConcurrentTests <= 0 {
		c.MaxConcurrentTests = DefaultMaxConcurrentTests
	}
	if c.Locks.Name == "" {
		c.Locks.Name = "outputsync"
	}
	return c
}
