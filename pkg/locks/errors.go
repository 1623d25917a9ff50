package locks

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotLocked is returned by Release when the lock is not held.
	ErrNotLocked = errors.New("lock is not held")
	// ErrNoPermitHeld is returned by Semaphore.Release when every permit is already available.
	ErrNoPermitHeld = errors.New("no permit held")
	// ErrNoReadLock is returned by RWMutex.ReleaseRead when no read lock is active.
	ErrNoReadLock = errors.New("no read lock held")
)

// TimeoutError reports an acquisition that exceeded the configured timeout.
// It carries the contention picture at the moment the wait was abandoned.
type TimeoutError struct {
	Name    string
	Holder  string
	Waiters int
	Timeout time.Duration
}

// Error renders the timeout with its diagnostic context.
func (e *TimeoutError) Error() string {
	holder := e.Holder
	if holder == "" {
		holder = "unknown"
	}
	return fmt.Sprintf("acquire %s: timed out after %s (held by %s, %d still waiting)",
		e.Name, e.Timeout, holder, e.Waiters)
}

// HolderMismatchError reports a Release by a caller that does not hold the lock.
type HolderMismatchError struct {
	Name   string
	Holder string
	Caller string
}

// Error renders the mismatch between the caller and the recorded holder.
func (e *HolderMismatchError) Error() string {
	return fmt.Sprintf("release %s: caller %s is not the holder (%s)", e.Name, e.Caller, e.Holder)
}
