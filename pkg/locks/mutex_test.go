package locks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"syncrun/internal/testutil"
)

// TestMutexAcquireRelease verifies the uncontended fast path.
func TestMutexAcquireRelease(t *testing.T) {
	m := NewMutex(Config{Name: "fast"})
	ctx := testutil.Context(t, time.Second)
	if err := m.Acquire(ctx, "a"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	stats := m.Stats()
	if !stats.Locked || stats.Holder != "a" {
		t.Fatalf("expected locked by a, got %+v", stats)
	}
	if err := m.Release("a"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if m.Stats().Locked {
		t.Fatalf("expected unlocked after release")
	}
}

// TestMutexMutualExclusion verifies at most one holder at any instant.
func TestMutexMutualExclusion(t *testing.T) {
	runWithTimeout(t, 5*time.Second, func() {
		m := NewMutex(Config{Name: "excl"})
		ctx := context.Background()
		var inCritical int
		var violations int
		var stateMu sync.Mutex
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			id := fmt.Sprintf("g%d", i)
			go func() {
				defer wg.Done()
				for j := 0; j < 25; j++ {
					err := m.WithLock(ctx, id, func() error {
						stateMu.Lock()
						inCritical++
						if inCritical > 1 {
							violations++
						}
						stateMu.Unlock()
						stateMu.Lock()
						inCritical--
						stateMu.Unlock()
						return nil
					})
					if err != nil {
						t.Errorf("withLock: %v", err)
						return
					}
				}
			}()
		}
		wg.Wait()
		stateMu.Lock()
		defer stateMu.Unlock()
		if violations > 0 {
			t.Fatalf("observed %d overlapping critical sections", violations)
		}
	})
}

// TestMutexFIFOOrder verifies waiters are granted in arrival order.
func TestMutexFIFOOrder(t *testing.T) {
	runWithTimeout(t, 5*time.Second, func() {
		m := NewMutex(Config{Name: "fifo"})
		ctx := context.Background()
		if err := m.Acquire(ctx, "holder"); err != nil {
			t.Fatalf("acquire: %v", err)
		}

		var order []string
		var orderMu sync.Mutex
		var wg sync.WaitGroup
		for _, id := range []string{"w1", "w2", "w3"} {
			wg.Add(1)
			id := id
			go func() {
				defer wg.Done()
				if err := m.Acquire(ctx, id); err != nil {
					t.Errorf("acquire %s: %v", id, err)
					return
				}
				orderMu.Lock()
				order = append(order, id)
				orderMu.Unlock()
				_ = m.Release(id)
			}()
			// Enqueue deterministically, one waiter at a time.
			testutil.Eventually(t, time.Second, time.Millisecond, func() bool {
				return m.Stats().WaiterCount >= expectedWaiters(id)
			}, "waiter did not enqueue")
		}

		if err := m.Release("holder"); err != nil {
			t.Fatalf("release: %v", err)
		}
		wg.Wait()

		orderMu.Lock()
		defer orderMu.Unlock()
		got := strings.Join(order, ",")
		if got != "w1,w2,w3" {
			t.Fatalf("expected FIFO grant order w1,w2,w3, got %s", got)
		}
	})
}

// expectedWaiters maps a waiter ID to its queue depth after enqueueing.
func expectedWaiters(id string) int {
	switch id {
	case "w1":
		return 1
	case "w2":
		return 2
	default:
		return 3
	}
}

// TestMutexAcquireTimeout verifies the timeout error carries diagnostics.
func TestMutexAcquireTimeout(t *testing.T) {
	runWithTimeout(t, 5*time.Second, func() {
		m := NewMutex(Config{Name: "slow", Timeout: 20 * time.Millisecond})
		ctx := context.Background()
		if err := m.Acquire(ctx, "holder"); err != nil {
			t.Fatalf("acquire: %v", err)
		}
		err := m.Acquire(ctx, "blocked")
		var timeoutErr *TimeoutError
		if !errors.As(err, &timeoutErr) {
			t.Fatalf("expected TimeoutError, got %v", err)
		}
		if timeoutErr.Name != "slow" {
			t.Fatalf("expected lock name in error, got %q", timeoutErr.Name)
		}
		if timeoutErr.Holder != "holder" {
			t.Fatalf("expected holder in error, got %q", timeoutErr.Holder)
		}
		if m.Stats().WaiterCount != 0 {
			t.Fatalf("expected timed-out waiter removed from queue")
		}
	})
}

// TestMutexAcquireContextCanceled verifies cancellation abandons the wait.
func TestMutexAcquireContextCanceled(t *testing.T) {
	m := NewMutex(Config{Name: "cancel"})
	if err := m.Acquire(context.Background(), "holder"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	err := m.Acquire(testutil.Canceled(), "blocked")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if m.Stats().WaiterCount != 0 {
		t.Fatalf("expected canceled waiter removed from queue")
	}
}

// TestMutexReleaseNotLocked verifies release of an idle lock fails.
func TestMutexReleaseNotLocked(t *testing.T) {
	m := NewMutex(Config{Name: "idle"})
	if err := m.Release("a"); !errors.Is(err, ErrNotLocked) {
		t.Fatalf("expected ErrNotLocked, got %v", err)
	}
}

// TestMutexHolderMismatch verifies a non-owner cannot release.
func TestMutexHolderMismatch(t *testing.T) {
	m := NewMutex(Config{Name: "owned"})
	if err := m.Acquire(context.Background(), "owner"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	err := m.Release("intruder")
	var mismatch *HolderMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected HolderMismatchError, got %v", err)
	}
	if mismatch.Holder != "owner" || mismatch.Caller != "intruder" {
		t.Fatalf("unexpected mismatch details: %+v", mismatch)
	}
	if !m.Stats().Locked {
		t.Fatalf("lock must remain held after rejected release")
	}
}

// TestMutexWithLockReleasesOnError verifies release on the error path.
func TestMutexWithLockReleasesOnError(t *testing.T) {
	m := NewMutex(Config{Name: "errpath"})
	wantErr := errors.New("boom")
	err := m.WithLock(context.Background(), "a", func() error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if m.Stats().Locked {
		t.Fatalf("lock must be released after fn error")
	}
}

// TestMutexWithLockReleasesOnPanic verifies release on the panic path.
func TestMutexWithLockReleasesOnPanic(t *testing.T) {
	m := NewMutex(Config{Name: "panicpath"})
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic to propagate")
			}
		}()
		_ = m.WithLock(context.Background(), "a", func() error {
			panic("boom")
		})
	}()
	if m.Stats().Locked {
		t.Fatalf("lock must be released after panic")
	}
}

// TestMutexTryAcquire verifies the non-blocking path.
func TestMutexTryAcquire(t *testing.T) {
	m := NewMutex(Config{Name: "try"})
	if !m.TryAcquire("a") {
		t.Fatalf("expected try to succeed on idle lock")
	}
	if m.TryAcquire("b") {
		t.Fatalf("expected try to fail on held lock")
	}
	if err := m.Release("a"); err != nil {
		t.Fatalf("release: %v", err)
	}
}

// TestMutexStatsCountsAcquisitions verifies the acquisition counter.
func TestMutexStatsCountsAcquisitions(t *testing.T) {
	m := NewMutex(Config{Name: "count"})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := m.Acquire(ctx, "a"); err != nil {
			t.Fatalf("acquire: %v", err)
		}
		if err := m.Release("a"); err != nil {
			t.Fatalf("release: %v", err)
		}
	}
	if got := m.Stats().TotalAcquisitions; got != 3 {
		t.Fatalf("expected 3 acquisitions, got %d", got)
	}
}

// TestMutexHandoffIsDeferred verifies a releaser never runs the waiter's
// continuation inline.
func TestMutexHandoffIsDeferred(t *testing.T) {
	runWithTimeout(t, 5*time.Second, func() {
		m := NewMutex(Config{Name: "handoff"})
		ctx := context.Background()
		if err := m.Acquire(ctx, "holder"); err != nil {
			t.Fatalf("acquire: %v", err)
		}
		granted := make(chan struct{})
		go func() {
			if err := m.Acquire(ctx, "waiter"); err == nil {
				close(granted)
			}
		}()
		testutil.Eventually(t, time.Second, time.Millisecond, func() bool {
			return m.Stats().WaiterCount == 1
		}, "waiter did not enqueue")

		released := make(chan struct{})
		go func() {
			_ = m.Release("holder")
			close(released)
		}()
		// Release must return without waiting on the waiter goroutine.
		waitFor(t, released, time.Second)
		waitFor(t, granted, time.Second)
		if m.Stats().Holder != "waiter" {
			t.Fatalf("expected ownership transfer to waiter, got %+v", m.Stats())
		}
	})
}
