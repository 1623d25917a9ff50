// Package locks provides mutual-exclusion, counting-semaphore, and
// reader/writer locks with FIFO waiter queues, bounded acquisition waits,
// and introspectable statistics.
package locks

import "time"

// DefaultTimeout bounds lock acquisition waits when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Config controls lock construction.
type Config struct {
	// Name identifies the lock in timeout diagnostics.
	Name string
	// Timeout bounds each acquisition wait. Zero selects DefaultTimeout.
	Timeout time.Duration
}

// withDefaults fills unset fields with defaults.
func (c Config) withDefaults(fallbackName string) Config {
	if c.Name == "" {
		c.Name = fallbackName
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
