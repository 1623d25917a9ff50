package locks

import (
	"context"
	"errors"
	"testing"
	"time"

	"syncrun/internal/testutil"
)

// TestRWMutexConcurrentReaders verifies readers share the lock.
func TestRWMutexConcurrentReaders(t *testing.T) {
	rw := NewRWMutex(Config{Name: "shared"})
	ctx := testutil.Context(t, time.Second)
	for i := 0; i < 3; i++ {
		if err := rw.AcquireRead(ctx, "r"); err != nil {
			t.Fatalf("acquireRead %d: %v", i, err)
		}
	}
	if got := rw.Stats().ActiveReaders; got != 3 {
		t.Fatalf("expected 3 active readers, got %d", got)
	}
	for i := 0; i < 3; i++ {
		if err := rw.ReleaseRead(); err != nil {
			t.Fatalf("releaseRead %d: %v", i, err)
		}
	}
}

// TestRWMutexWriterExcludesReaders verifies the exclusion invariant.
func TestRWMutexWriterExcludesReaders(t *testing.T) {
	runWithTimeout(t, 5*time.Second, func() {
		rw := NewRWMutex(Config{Name: "excl", Timeout: 20 * time.Millisecond})
		ctx := context.Background()
		if err := rw.AcquireWrite(ctx, "w"); err != nil {
			t.Fatalf("acquireWrite: %v", err)
		}
		err := rw.AcquireRead(ctx, "r")
		var timeoutErr *TimeoutError
		if !errors.As(err, &timeoutErr) {
			t.Fatalf("expected reader to time out behind writer, got %v", err)
		}
		if timeoutErr.Holder != "w" {
			t.Fatalf("expected writer as holder in diagnostics, got %q", timeoutErr.Holder)
		}
	})
}

// TestRWMutexWriterPreference verifies a waiting writer blocks new readers
// even while only readers are active.
func TestRWMutexWriterPreference(t *testing.T) {
	runWithTimeout(t, 5*time.Second, func() {
		rw := NewRWMutex(Config{Name: "pref"})
		ctx := context.Background()
		if err := rw.AcquireRead(ctx, "r1"); err != nil {
			t.Fatalf("acquireRead: %v", err)
		}

		writerIn := make(chan struct{})
		go func() {
			if err := rw.AcquireWrite(ctx, "w"); err == nil {
				close(writerIn)
			}
		}()
		testutil.Eventually(t, time.Second, time.Millisecond, func() bool {
			return rw.Stats().WriteWaiters == 1
		}, "writer did not enqueue")

		// A new reader must queue behind the waiting writer.
		readerIn := make(chan struct{})
		go func() {
			if err := rw.AcquireRead(ctx, "r2"); err == nil {
				close(readerIn)
			}
		}()
		testutil.Eventually(t, time.Second, time.Millisecond, func() bool {
			return rw.Stats().ReadWaiters == 1
		}, "reader did not queue behind waiting writer")

		select {
		case <-readerIn:
			t.Fatalf("reader jumped the queue past a waiting writer")
		case <-time.After(20 * time.Millisecond):
		}

		// Last reader out admits the writer, not the queued reader.
		if err := rw.ReleaseRead(); err != nil {
			t.Fatalf("releaseRead: %v", err)
		}
		waitFor(t, writerIn, time.Second)

		// Writer out with no writers queued batch-wakes the reader.
		if err := rw.ReleaseWrite("w"); err != nil {
			t.Fatalf("releaseWrite: %v", err)
		}
		waitFor(t, readerIn, time.Second)
	})
}

// TestRWMutexBatchReaderWake verifies all queued readers wake together when
// the writer leaves.
func TestRWMutexBatchReaderWake(t *testing.T) {
	runWithTimeout(t, 5*time.Second, func() {
		rw := NewRWMutex(Config{Name: "batch"})
		ctx := context.Background()
		if err := rw.AcquireWrite(ctx, "w"); err != nil {
			t.Fatalf("acquireWrite: %v", err)
		}
		const readers = 4
		admitted := make(chan struct{}, readers)
		for i := 0; i < readers; i++ {
			go func() {
				if err := rw.AcquireRead(ctx, "r"); err == nil {
					admitted <- struct{}{}
				}
			}()
		}
		testutil.Eventually(t, time.Second, time.Millisecond, func() bool {
			return rw.Stats().ReadWaiters == readers
		}, "readers did not enqueue")

		if err := rw.ReleaseWrite("w"); err != nil {
			t.Fatalf("releaseWrite: %v", err)
		}
		for i := 0; i < readers; i++ {
			select {
			case <-admitted:
			case <-time.After(time.Second):
				t.Fatalf("only %d of %d readers admitted after batch wake", i, readers)
			}
		}
		if got := rw.Stats().ActiveReaders; got != readers {
			t.Fatalf("expected %d active readers, got %d", readers, got)
		}
	})
}

// TestRWMutexWriterTimeoutAdmitsQueuedReaders verifies readers parked behind
// a waiting writer are admitted when that writer gives up, instead of timing
// out against a free lock.
func TestRWMutexWriterTimeoutAdmitsQueuedReaders(t *testing.T) {
	runWithTimeout(t, 5*time.Second, func() {
		rw := NewRWMutex(Config{Name: "abandon", Timeout: 50 * time.Millisecond})
		ctx := context.Background()
		if err := rw.AcquireRead(ctx, "r1"); err != nil {
			t.Fatalf("acquireRead: %v", err)
		}

		writerErr := make(chan error, 1)
		go func() {
			writerErr <- rw.AcquireWrite(ctx, "w")
		}()
		testutil.Eventually(t, time.Second, time.Millisecond, func() bool {
			return rw.Stats().WriteWaiters == 1
		}, "writer did not enqueue")

		readerIn := make(chan error, 1)
		go func() {
			readerIn <- rw.AcquireRead(ctx, "r2")
		}()
		testutil.Eventually(t, time.Second, time.Millisecond, func() bool {
			return rw.Stats().ReadWaiters == 1
		}, "reader did not queue behind waiting writer")

		// r1 never releases, so the writer must time out.
		var timeoutErr *TimeoutError
		select {
		case err := <-writerErr:
			if !errors.As(err, &timeoutErr) {
				t.Fatalf("expected writer timeout, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatalf("writer did not time out")
		}

		// With no writer waiting, r2 shares the lock with r1 immediately.
		select {
		case err := <-readerIn:
			if err != nil {
				t.Fatalf("expected queued reader admitted after writer gave up, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatalf("queued reader stranded after writer abandoned its wait")
		}
		if got := rw.Stats().ActiveReaders; got != 2 {
			t.Fatalf("expected 2 active readers, got %d", got)
		}
		for i := 0; i < 2; i++ {
			if err := rw.ReleaseRead(); err != nil {
				t.Fatalf("releaseRead %d: %v", i, err)
			}
		}
	})
}

// TestRWMutexWriterCancelAdmitsQueuedReaders covers the cancellation path of
// the same admission rule.
func TestRWMutexWriterCancelAdmitsQueuedReaders(t *testing.T) {
	runWithTimeout(t, 5*time.Second, func() {
		rw := NewRWMutex(Config{Name: "cancel", Timeout: 5 * time.Second})
		ctx := context.Background()
		if err := rw.AcquireRead(ctx, "r1"); err != nil {
			t.Fatalf("acquireRead: %v", err)
		}

		writerCtx, cancelWriter := context.WithCancel(context.Background())
		writerErr := make(chan error, 1)
		go func() {
			writerErr <- rw.AcquireWrite(writerCtx, "w")
		}()
		testutil.Eventually(t, time.Second, time.Millisecond, func() bool {
			return rw.Stats().WriteWaiters == 1
		}, "writer did not enqueue")

		readerIn := make(chan error, 1)
		go func() {
			readerIn <- rw.AcquireRead(ctx, "r2")
		}()
		testutil.Eventually(t, time.Second, time.Millisecond, func() bool {
			return rw.Stats().ReadWaiters == 1
		}, "reader did not queue behind waiting writer")

		cancelWriter()
		if err := <-writerErr; !errors.Is(err, context.Canceled) {
			t.Fatalf("expected canceled writer, got %v", err)
		}
		select {
		case err := <-readerIn:
			if err != nil {
				t.Fatalf("expected queued reader admitted after writer canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatalf("queued reader stranded after writer canceled")
		}
		if got := rw.Stats().ActiveReaders; got != 2 {
			t.Fatalf("expected 2 active readers, got %d", got)
		}
	})
}

// TestRWMutexReleaseErrors verifies misuse is rejected.
func TestRWMutexReleaseErrors(t *testing.T) {
	rw := NewRWMutex(Config{Name: "misuse"})
	if err := rw.ReleaseRead(); !errors.Is(err, ErrNoReadLock) {
		t.Fatalf("expected ErrNoReadLock, got %v", err)
	}
	if err := rw.ReleaseWrite(""); !errors.Is(err, ErrNotLocked) {
		t.Fatalf("expected ErrNotLocked, got %v", err)
	}
	if err := rw.AcquireWrite(context.Background(), "owner"); err != nil {
		t.Fatalf("acquireWrite: %v", err)
	}
	var mismatch *HolderMismatchError
	if err := rw.ReleaseWrite("intruder"); !errors.As(err, &mismatch) {
		t.Fatalf("expected HolderMismatchError, got %v", err)
	}
}

// TestRWMutexWithWrappers verifies guaranteed release on both paths.
func TestRWMutexWithWrappers(t *testing.T) {
	rw := NewRWMutex(Config{Name: "wrap"})
	ctx := testutil.Context(t, time.Second)
	wantErr := errors.New("boom")
	if err := rw.WithReadLock(ctx, "r", func() error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if got := rw.Stats().ActiveReaders; got != 0 {
		t.Fatalf("read lock leaked: %d active readers", got)
	}
	if err := rw.WithWriteLock(ctx, "w", func() error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("expected fn error, got %v", err)
	}
	if rw.Stats().Writing {
		t.Fatalf("write lock leaked")
	}
}
