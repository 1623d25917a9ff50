package locks

import "time"

// waiter is a single queued acquisition attempt. It belongs to exactly one
// lock and leaves the queue either when granted or when its wait is abandoned.
type waiter struct {
	id       string
	enqueued time.Time
	// ready is closed by the releaser once ownership has been transferred
	// to this waiter. The waiter resumes on its own goroutine; the releaser
	// never runs waiter continuations inline.
	ready   chan struct{}
	granted bool
}

func newWaiter(id string) *waiter {
	return &waiter{
		id:       id,
		enqueued: time.Now(),
		ready:    make(chan struct{}),
	}
}

// removeWaiter deletes w from queue preserving FIFO order of the rest.
func removeWaiter(queue []*waiter, w *waiter) []*waiter {
	for i, candidate := range queue {
		if candidate == w {
			return append(queue[:i], queue[i+1:]...)
		}
	}
	return queue
}
