package locks

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RWMutex is a reader/writer lock with writer preference: while any writer
// is waiting, new read requests queue behind it even when no writer is
// active. This keeps a steady stream of short reads from starving a pending
// writer.
type RWMutex struct {
	mu           sync.Mutex
	cfg          Config
	readers      int
	writing      bool
	writerID     string
	readWaiters  []*waiter
	writeWaiters []*waiter
	readCount    uint64
	writeCount   uint64
}

// RWMutexStats is a point-in-time snapshot of an RWMutex.
type RWMutexStats struct {
	Name          string
	ActiveReaders int
	Writing       bool
	Writer        string
	ReadWaiters   int
	WriteWaiters  int
	ReadCount     uint64
	WriteCount    uint64
}

// NewRWMutex creates an unlocked RWMutex.
func NewRWMutex(cfg Config) *RWMutex {
	return &RWMutex{cfg: cfg.withDefaults("rwmutex")}
}

// AcquireRead obtains a shared read lock. The request queues whenever a
// writer is active or waiting.
func (rw *RWMutex) AcquireRead(ctx context.Context, requesterID string) error {
	rw.mu.Lock()
	if !rw.writing && len(rw.writeWaiters) == 0 {
		rw.readers++
		rw.readCount++
		rw.mu.Unlock()
		return nil
	}
	w := newWaiter(requesterID)
	rw.readWaiters = append(rw.readWaiters, w)
	rw.mu.Unlock()
	return rw.wait(ctx, w, &rw.readWaiters, func() {
		_ = rw.ReleaseRead()
	})
}

// AcquireWrite obtains the exclusive write lock. The request queues while
// any reader or writer is active.
func (rw *RWMutex) AcquireWrite(ctx context.Context, requesterID string) error {
	rw.mu.Lock()
	if !rw.writing && rw.readers == 0 {
		rw.writing = true
		rw.writerID = requesterID
		rw.writeCount++
		rw.mu.Unlock()
		return nil
	}
	w := newWaiter(requesterID)
	rw.writeWaiters = append(rw.writeWaiters, w)
	rw.mu.Unlock()
	return rw.wait(ctx, w, &rw.writeWaiters, func() {
		_ = rw.ReleaseWrite(w.id)
	})
}

// ReleaseRead gives up one read lock. When the last reader leaves and a
// writer is waiting, the head writer is granted.
func (rw *RWMutex) ReleaseRead() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.readers == 0 {
		return ErrNoReadLock
	}
	rw.readers--
	if rw.readers == 0 && len(rw.writeWaiters) > 0 {
		rw.grantHeadWriterLocked()
		return nil
	}
	rw.admitReadersLocked()
	return nil
}

// ReleaseWrite gives up the write lock. Waiting writers take precedence;
// when none is queued every waiting reader is admitted at once.
func (rw *RWMutex) ReleaseWrite(holderID string) error {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if !rw.writing {
		return ErrNotLocked
	}
	if holderID != "" && holderID != rw.writerID {
		return &HolderMismatchError{Name: rw.cfg.Name, Holder: rw.writerID, Caller: holderID}
	}
	rw.writing = false
	rw.writerID = ""
	if len(rw.writeWaiters) > 0 {
		rw.grantHeadWriterLocked()
		return nil
	}
	rw.admitReadersLocked()
	return nil
}

// WithReadLock runs fn under a read lock, releasing on every exit path.
func (rw *RWMutex) WithReadLock(ctx context.Context, requesterID string, fn func() error) error {
	if err := rw.AcquireRead(ctx, requesterID); err != nil {
		return err
	}
	defer func() {
		_ = rw.ReleaseRead()
	}()
	return fn()
}

// WithWriteLock runs fn under the write lock, releasing on every exit path.
func (rw *RWMutex) WithWriteLock(ctx context.Context, requesterID string, fn func() error) error {
	if err := rw.AcquireWrite(ctx, requesterID); err != nil {
		return err
	}
	defer func() {
		_ = rw.ReleaseWrite(requesterID)
	}()
	return fn()
}

// Stats returns a snapshot of the lock state.
func (rw *RWMutex) Stats() RWMutexStats {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return RWMutexStats{
		Name:          rw.cfg.Name,
		ActiveReaders: rw.readers,
		Writing:       rw.writing,
		Writer:        rw.writerID,
		ReadWaiters:   len(rw.readWaiters),
		WriteWaiters:  len(rw.writeWaiters),
		ReadCount:     rw.readCount,
		WriteCount:    rw.writeCount,
	}
}

// grantHeadWriterLocked transfers the write lock to the first queued writer.
// Callers must hold rw.mu.
func (rw *RWMutex) grantHeadWriterLocked() {
	next := rw.writeWaiters[0]
	rw.writeWaiters = rw.writeWaiters[1:]
	next.granted = true
	rw.writing = true
	rw.writerID = next.id
	rw.writeCount++
	close(next.ready)
}

// admitReadersLocked batches every queued reader in once no writer is active
// or waiting. Callers must hold rw.mu.
func (rw *RWMutex) admitReadersLocked() {
	if rw.writing || len(rw.writeWaiters) > 0 {
		return
	}
	for _, r := range rw.readWaiters {
		r.granted = true
		rw.readers++
		rw.readCount++
		close(r.ready)
	}
	rw.readWaiters = nil
}

// wait blocks until w is granted, the configured timeout fires, or ctx is
// canceled. giveBack undoes a grant that raced against cancellation. An
// abandoned wait re-evaluates reader admission: a write waiter leaving the
// queue may unblock readers parked behind it.
func (rw *RWMutex) wait(ctx context.Context, w *waiter, queue *[]*waiter, giveBack func()) error {
	timer := time.NewTimer(rw.cfg.Timeout)
	defer timer.Stop()
	select {
	case <-w.ready:
		return nil
	case <-timer.C:
		rw.mu.Lock()
		defer rw.mu.Unlock()
		if w.granted {
			return nil
		}
		*queue = removeWaiter(*queue, w)
		rw.admitReadersLocked()
		return &TimeoutError{
			Name:    rw.cfg.Name,
			Holder:  rw.holderLabelLocked(),
			Waiters: len(rw.readWaiters) + len(rw.writeWaiters),
			Timeout: rw.cfg.Timeout,
		}
	case <-ctx.Done():
		rw.mu.Lock()
		if w.granted {
			rw.mu.Unlock()
			giveBack()
			return ctx.Err()
		}
		*queue = removeWaiter(*queue, w)
		rw.admitReadersLocked()
		rw.mu.Unlock()
		return ctx.Err()
	}
}

// holderLabelLocked describes the current holder for timeout diagnostics.
// Callers must hold rw.mu.
func (rw *RWMutex) holderLabelLocked() string {
	if rw.writing {
		return rw.writerID
	}
	if rw.readers > 0 {
		return fmt.Sprintf("%d readers", rw.readers)
	}
	return ""
}
