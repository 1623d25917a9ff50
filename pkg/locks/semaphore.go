package locks

import (
	"context"
	"sync"
	"time"
)

// Semaphore is a counting semaphore with the same FIFO waiter queue and
// bounded-wait behavior as Mutex, generalized to a fixed number of permits.
type Semaphore struct {
	mu        sync.Mutex
	cfg       Config
	permits   int
	available int
	waiters   []*waiter
	total     uint64
}

// SemaphoreStats is a point-in-time snapshot of a Semaphore.
type SemaphoreStats struct {
	Name              string
	Permits           int
	Available         int
	WaiterCount       int
	TotalAcquisitions uint64
}

// NewSemaphore creates a Semaphore with the given number of permits.
// A non-positive permit count is treated as one.
func NewSemaphore(permits int, cfg Config) *Semaphore {
	if permits <= 0 {
		permits = 1
	}
	return &Semaphore{
		cfg:       cfg.withDefaults("semaphore"),
		permits:   permits,
		available: permits,
	}
}

// Acquire takes one permit for requesterID, waiting in FIFO order when none
// is available. The wait is bounded by the configured timeout and by ctx.
func (s *Semaphore) Acquire(ctx context.Context, requesterID string) error {
	s.mu.Lock()
	if s.available > 0 {
		s.available--
		s.total++
		s.mu.Unlock()
		return nil
	}
	w := newWaiter(requesterID)
	s.waiters = append(s.waiters, w)
	s.mu.Unlock()

	timer := time.NewTimer(s.cfg.Timeout)
	defer timer.Stop()
	select {
	case <-w.ready:
		return nil
	case <-timer.C:
		return s.abandonWait(w)
	case <-ctx.Done():
		if granted := s.cancelWait(w); granted {
			_ = s.Release()
		}
		return ctx.Err()
	}
}

// TryAcquire takes a permit without waiting, reporting whether it succeeded.
func (s *Semaphore) TryAcquire(requesterID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.available == 0 {
		return false
	}
	s.available--
	s.total++
	return true
}

// Release returns one permit. When waiters are queued the permit transfers
// directly to the head of the queue instead of becoming available.
func (s *Semaphore) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.waiters) > 0 {
		next := s.waiters[0]
		s.waiters = s.waiters[1:]
		next.granted = true
		s.total++
		close(next.ready)
		return nil
	}
	if s.available == s.permits {
		return ErrNoPermitHeld
	}
	s.available++
	return nil
}

// WithPermit runs fn while holding one permit, releasing on every exit path
// including panics.
func (s *Semaphore) WithPermit(ctx context.Context, requesterID string, fn func() error) error {
	if err := s.Acquire(ctx, requesterID); err != nil {
		return err
	}
	defer func() {
		_ = s.Release()
	}()
	return fn()
}

// Stats returns a snapshot of the semaphore state.
func (s *Semaphore) Stats() SemaphoreStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SemaphoreStats{
		Name:              s.cfg.Name,
		Permits:           s.permits,
		Available:         s.available,
		WaiterCount:       len(s.waiters),
		TotalAcquisitions: s.total,
	}
}

func (s *Semaphore) abandonWait(w *waiter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.granted {
		return nil
	}
	s.waiters = removeWaiter(s.waiters, w)
	return &TimeoutError{
		Name:    s.cfg.Name,
		Waiters: len(s.waiters),
		Timeout: s.cfg.Timeout,
	}
}

func (s *Semaphore) cancelWait(w *waiter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.granted {
		return true
	}
	s.waiters = removeWaiter(s.waiters, w)
	return false
}
