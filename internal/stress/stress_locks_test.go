//go:build stress

package stress

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"syncrun/pkg/locks"
)

// TestStress_Mutex_CounterIntegrity hammers a mutex-guarded counter.
func TestStress_Mutex_CounterIntegrity(t *testing.T) {
	runWithTimeout(t, 30*time.Second, func() {
		m := locks.NewMutex(locks.Config{Name: "stress.counter", Timeout: 10 * time.Second})
		ctx := context.Background()

		var counter int
		workerCount := 50
		perWorker := 200
		var wg sync.WaitGroup
		for i := 0; i < workerCount; i++ {
			wg.Add(1)
			go func(seed int64) {
				defer wg.Done()
				rng := rand.New(rand.NewSource(seed))
				for j := 0; j < perWorker; j++ {
					holder := fmt.Sprintf("w%d-%d", seed, j)
					err := m.WithLock(ctx, holder, func() error {
						v := counter
						if rng.Intn(10) == 0 {
							time.Sleep(time.Millisecond)
						}
						counter = v + 1
						return nil
					})
					if err != nil {
						t.Errorf("with lock: %v", err)
						return
					}
				}
			}(int64(i + 1))
		}
		wg.Wait()

		if counter != workerCount*perWorker {
			t.Fatalf("lost updates: expected %d, got %d", workerCount*perWorker, counter)
		}
		stats := m.Stats()
		if stats.Locked {
			t.Fatalf("expected released mutex, got %+v", stats)
		}
		if stats.TotalAcquisitions < uint64(workerCount*perWorker) {
			t.Fatalf("expected at least %d acquisitions, got %d", workerCount*perWorker, stats.TotalAcquisitions)
		}
	})
}

// TestStress_Semaphore_BoundHolds verifies concurrent holders never exceed
// the permit count under churn.
func TestStress_Semaphore_BoundHolds(t *testing.T) {
	runWithTimeout(t, 30*time.Second, func() {
		permits := 8
		sem := locks.NewSemaphore(permits, locks.Config{Name: "stress.sem", Timeout: 10 * time.Second})
		ctx := context.Background()

		var holds int64
		var maxHolds int64
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(seed int64) {
				defer wg.Done()
				rng := rand.New(rand.NewSource(seed))
				for j := 0; j < 50; j++ {
					holder := fmt.Sprintf("w%d-%d", seed, j)
					err := sem.WithPermit(ctx, holder, func() error {
						cur := atomic.AddInt64(&holds, 1)
						for {
							prev := atomic.LoadInt64(&maxHolds)
							if cur <= prev || atomic.CompareAndSwapInt64(&maxHolds, prev, cur) {
								break
							}
						}
						time.Sleep(time.Duration(rng.Intn(2)+1) * time.Millisecond)
						atomic.AddInt64(&holds, -1)
						return nil
					})
					if err != nil {
						t.Errorf("with permit: %v", err)
						return
					}
				}
			}(int64(i + 1))
		}
		wg.Wait()

		if observed := atomic.LoadInt64(&maxHolds); observed > int64(permits) {
			t.Fatalf("observed %d concurrent holds with %d permits", observed, permits)
		}
		stats := sem.Stats()
		if stats.Available != permits {
			t.Fatalf("expected all permits returned, got %+v", stats)
		}
	})
}
