package locks

import (
	"context"
	"sync"
	"time"
)

// Mutex is a mutual-exclusion lock with a FIFO waiter queue, bounded
// acquisition waits, and introspectable statistics. The zero value is not
// usable; construct with NewMutex.
type Mutex struct {
	mu      sync.Mutex
	cfg     Config
	locked  bool
	holder  string
	waiters []*waiter
	total   uint64
}

// MutexStats is a point-in-time snapshot of a Mutex.
type MutexStats struct {
	Name              string
	Locked            bool
	Holder            string
	WaiterCount       int
	TotalAcquisitions uint64
}

// NewMutex creates an unlocked Mutex.
func NewMutex(cfg Config) *Mutex {
	return &Mutex{cfg: cfg.withDefaults("mutex")}
}

// Acquire obtains the lock for requesterID, waiting in FIFO order when it is
// held. The wait is bounded by the configured timeout and by ctx; on expiry
// the attempt fails with a *TimeoutError describing the contention.
func (m *Mutex) Acquire(ctx context.Context, requesterID string) error {
	m.mu.Lock()
	if !m.locked {
		m.locked = true
		m.holder = requesterID
		m.total++
		m.mu.Unlock()
		return nil
	}
	w := newWaiter(requesterID)
	m.waiters = append(m.waiters, w)
	m.mu.Unlock()

	timer := time.NewTimer(m.cfg.Timeout)
	defer timer.Stop()
	select {
	case <-w.ready:
		return nil
	case <-timer.C:
		return m.abandonWait(w)
	case <-ctx.Done():
		if granted := m.cancelWait(w); granted {
			// The grant won the race; hand the lock straight on.
			_ = m.Release(w.id)
		}
		return ctx.Err()
	}
}

// TryAcquire obtains the lock without waiting, reporting whether it succeeded.
func (m *Mutex) TryAcquire(requesterID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked {
		return false
	}
	m.locked = true
	m.holder = requesterID
	m.total++
	return true
}

// Release gives up the lock. A non-empty holderID must match the recorded
// holder. When waiters are queued, ownership transfers to the head of the
// queue; the waiter resumes on its own goroutine.
func (m *Mutex) Release(holderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.locked {
		return ErrNotLocked
	}
	if holderID != "" && holderID != m.holder {
		return &HolderMismatchError{Name: m.cfg.Name, Holder: m.holder, Caller: holderID}
	}
	if len(m.waiters) > 0 {
		next := m.waiters[0]
		m.waiters = m.waiters[1:]
		next.granted = true
		m.holder = next.id
		m.total++
		close(next.ready)
		return nil
	}
	m.locked = false
	m.holder = ""
	return nil
}

// WithLock runs fn under the lock, releasing on every exit path including
// panics.
func (m *Mutex) WithLock(ctx context.Context, requesterID string, fn func() error) error {
	if err := m.Acquire(ctx, requesterID); err != nil {
		return err
	}
	defer func() {
		_ = m.Release(requesterID)
	}()
	return fn()
}

// Stats returns a snapshot of the lock state.
func (m *Mutex) Stats() MutexStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MutexStats{
		Name:              m.cfg.Name,
		Locked:            m.locked,
		Holder:            m.holder,
		WaiterCount:       len(m.waiters),
		TotalAcquisitions: m.total,
	}
}

// abandonWait removes w from the queue after its timeout fired. When the
// grant raced ahead of the timer the acquisition stands and no error is
// reported.
func (m *Mutex) abandonWait(w *waiter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.granted {
		return nil
	}
	m.waiters = removeWaiter(m.waiters, w)
	return &TimeoutError{
		Name:    m.cfg.Name,
		Holder:  m.holder,
		Waiters: len(m.waiters),
		Timeout: m.cfg.Timeout,
	}
}

// cancelWait removes w from the queue on context cancellation and reports
// whether the lock had already been granted to it.
func (m *Mutex) cancelWait(w *waiter) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.granted {
		return true
	}
	m.waiters = removeWaiter(m.waiters, w)
	return false
}
