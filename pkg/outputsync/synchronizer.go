package outputsync

import (
	"context"
	"sync"
	"time"

	"syncrun/pkg/locks"
)

// Synchronizer is the single point through which all output operations pass.
// It guarantees that writes to one channel never interleave, that pending
// higher-priority writes drain first, and that the number of concurrently
// registered producers stays bounded.
type Synchronizer struct {
	cfg      Config
	sink     Sink
	observer Observer
	now      func() time.Time

	// chLocks serialize the physical writes; one mutex per channel.
	chLocks map[Channel]*locks.Mutex

	mu        sync.Mutex
	closed    bool
	registry  map[string]ProducerContext
	pending   map[string]int
	queues    map[Channel]*priorityQueue
	draining  map[Channel]bool
	seq       uint64
	waiters   []*stateWaiter
	totalOps  uint64
	totalProc time.Duration
}

// stateWaiter parks a caller until a registry/queue condition holds. The
// predicate is evaluated with s.mu held on every state transition.
type stateWaiter struct {
	satisfied func() bool
	done      chan struct{}
}

// New creates a Synchronizer writing through sink.
func New(cfg Config, sink Sink) *Synchronizer {
	return NewWithObserver(cfg, sink, nil)
}

// NewWithObserver creates a Synchronizer that reports lifecycle events to
// observer. A nil observer is allowed.
func NewWithObserver(cfg Config, sink Sink, observer Observer) *Synchronizer {
	cfg = cfg.withDefaults()
	if observer == nil {
		observer = nopObserver{}
	}
	s := &Synchronizer{
		cfg:      cfg,
		sink:     sink,
		observer: observer,
		now:      time.Now,
		chLocks:  make(map[Channel]*locks.Mutex, len(channels)),
		registry: make(map[string]ProducerContext),
		pending:  make(map[string]int),
		queues:   make(map[Channel]*priorityQueue, len(channels)),
		draining: make(map[Channel]bool, len(channels)),
	}
	for _, ch := range channels {
		lockCfg := cfg.Locks
		lockCfg.Name = cfg.Locks.Name + "." + string(ch)
		s.chLocks[ch] = locks.NewMutex(lockCfg)
		s.queues[ch] = newPriorityQueue()
	}
	return s
}

// RegisterTest adds a producer context to the registry. Registration is
// rejected when the ID is already present or the registry is at capacity.
func (s *Synchronizer) RegisterTest(pc ProducerContext) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSynchronizerClosed
	}
	if _, ok := s.registry[pc.ID]; ok {
		s.mu.Unlock()
		return &DuplicateRegistrationError{ID: pc.ID, Label: pc.Label}
	}
	if len(s.registry) >= s.cfg.MaxConcurrentTests {
		s.mu.Unlock()
		return &CapacityExceededError{Limit: s.cfg.MaxConcurrentTests}
	}
	s.registry[pc.ID] = pc
	s.mu.Unlock()
	s.observer.OnRegister(pc)
	return nil
}

// UnregisterTest removes a producer from the registry once no queued or
// in-flight operation references it.
func (s *Synchronizer) UnregisterTest(ctx context.Context, pc ProducerContext) error {
	s.mu.Lock()
	if _, ok := s.registry[pc.ID]; !ok {
		s.mu.Unlock()
		return nil
	}
	err := s.awaitLocked(ctx, func() bool { return s.pending[pc.ID] == 0 })
	if err != nil {
		return err
	}
	// awaitLocked returns with s.mu held.
	delete(s.registry, pc.ID)
	s.notifyLocked()
	s.mu.Unlock()
	s.observer.OnUnregister(pc)
	return nil
}

// WriteOutput enqueues op into its channel's priority queue and returns once
// this specific operation has been written. A failed sink write surfaces
// here, on the caller whose operation failed.
func (s *Synchronizer) WriteOutput(ctx context.Context, op Operation) error {
	op = op.normalize()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSynchronizerClosed
	}
	if op.Source != SourceSystem {
		if op.Context == nil {
			s.mu.Unlock()
			return ErrMissingContext
		}
		if _, ok := s.registry[op.Context.ID]; !ok {
			s.mu.Unlock()
			return &UnregisteredProducerError{ID: op.Context.ID, Label: op.Context.Label}
		}
	}
	s.seq++
	it := &item{
		op:   op,
		seq:  s.seq,
		rank: op.Priority.rank(),
		done: make(chan error, 1),
	}
	q := s.queues[op.Channel]
	q.enqueue(it)
	depth := q.len()
	if op.Context != nil {
		s.pending[op.Context.ID]++
	}
	if !s.draining[op.Channel] {
		s.draining[op.Channel] = true
		go s.drain(op.Channel)
	}
	s.mu.Unlock()

	s.observer.OnQueueDepth(op.Channel, depth)

	select {
	case err := <-it.done:
		return err
	case <-ctx.Done():
		// The operation stays queued and will still be written; only
		// the wait is abandoned.
		return ctx.Err()
	}
}

// Flush returns once both channels' queues are empty and no drain is in
// flight.
func (s *Synchronizer) Flush(ctx context.Context) error {
	s.mu.Lock()
	err := s.awaitLocked(ctx, s.drainedLocked)
	if err != nil {
		return err
	}
	s.mu.Unlock()
	return nil
}

// Shutdown flushes both channels, forcibly unregisters every remaining
// producer, and marks the synchronizer closed. Subsequent WriteOutput calls
// fail with ErrSynchronizerClosed.
func (s *Synchronizer) Shutdown(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.closed = true
	remaining := make([]ProducerContext, 0, len(s.registry))
	for _, pc := range s.registry {
		remaining = append(remaining, pc)
	}
	s.registry = make(map[string]ProducerContext)
	s.notifyLocked()
	s.mu.Unlock()
	for _, pc := range remaining {
		s.observer.OnUnregister(pc)
	}
	return nil
}

// drain serializes writes for one channel. It owns the channel until the
// queue is observed empty; enqueues arriving mid-drain are picked up because
// emptiness is re-checked, never snapshotted.
func (s *Synchronizer) drain(channel Channel) {
	err := s.chLocks[channel].WithLock(context.Background(), "drain."+string(channel), func() error {
		for {
			s.mu.Lock()
			it, ok := s.queues[channel].dequeue()
			if !ok {
				s.draining[channel] = false
				s.notifyLocked()
				s.mu.Unlock()
				return nil
			}
			batch := []*item{it}
			if s.cfg.Queue.EnableBatching {
				batch = s.extendBatchLocked(channel, batch)
			}
			s.mu.Unlock()

			if len(batch) == 1 {
				s.writeOne(channel, batch[0])
			} else {
				s.writeBatch(channel, batch)
			}
		}
	})
	if err == nil {
		return
	}
	// Could not take the channel mutex. Fail the backlog rather than
	// leaving callers parked.
	s.mu.Lock()
	for {
		it, ok := s.queues[channel].dequeue()
		if !ok {
			break
		}
		s.settleLocked(it, err, 0)
	}
	s.draining[channel] = false
	s.notifyLocked()
	s.mu.Unlock()
}

// extendBatchLocked pulls further queued items of the same priority as the
// batch head, preserving arrival order. Callers must hold s.mu.
func (s *Synchronizer) extendBatchLocked(channel Channel, batch []*item) []*item {
	q := s.queues[channel]
	for {
		head, ok := q.tree.Min()
		if !ok || head.rank != batch[0].rank {
			return batch
		}
		it, _ := q.dequeue()
		batch = append(batch, it)
	}
}

// writeOne performs the physical write for a single item and settles its
// caller. Write failures settle that caller only; the drain continues.
func (s *Synchronizer) writeOne(channel Channel, it *item) {
	start := s.now()
	err := s.sink.Write(channel, it.op.Payload.Data())
	elapsed := s.now().Sub(start)

	s.mu.Lock()
	s.settleLocked(it, err, elapsed)
	s.mu.Unlock()

	s.observer.OnWrite(channel, it.op.Priority, it.op.Source, it.op.Payload.Len(), err)
}

// writeBatch coalesces same-priority payloads into a single sink write and
// settles every batched caller with the shared result.
func (s *Synchronizer) writeBatch(channel Channel, batch []*item) {
	var joined []byte
	for _, it := range batch {
		joined = append(joined, it.op.Payload.Data()...)
	}
	start := s.now()
	err := s.sink.Write(channel, joined)
	elapsed := s.now().Sub(start)

	s.mu.Lock()
	for _, it := range batch {
		s.settleLocked(it, err, elapsed/time.Duration(len(batch)))
	}
	s.mu.Unlock()

	for _, it := range batch {
		s.observer.OnWrite(channel, it.op.Priority, it.op.Source, it.op.Payload.Len(), err)
	}
}

// settleLocked finishes bookkeeping for a drained item and releases its
// caller. Callers must hold s.mu.
func (s *Synchronizer) settleLocked(it *item, err error, elapsed time.Duration) {
	if it.op.Context != nil {
		id := it.op.Context.ID
		if s.pending[id]--; s.pending[id] <= 0 {
			delete(s.pending, id)
		}
	}
	s.totalOps++
	s.totalProc += elapsed
	s.notifyLocked()
	it.done <- err
}

// awaitLocked blocks until predicate holds or ctx is done. It must be called
// with s.mu held; on a nil return s.mu is held again, on error it is not.
func (s *Synchronizer) awaitLocked(ctx context.Context, predicate func() bool) error {
	for {
		if predicate() {
			return nil
		}
		w := &stateWaiter{satisfied: predicate, done: make(chan struct{})}
		s.waiters = append(s.waiters, w)
		s.mu.Unlock()
		select {
		case <-w.done:
			s.mu.Lock()
		case <-ctx.Done():
			s.mu.Lock()
			s.removeWaiterLocked(w)
			s.mu.Unlock()
			return ctx.Err()
		}
	}
}

// notifyLocked releases every parked waiter whose predicate now holds.
// Callers must hold s.mu.
func (s *Synchronizer) notifyLocked() {
	if len(s.waiters) == 0 {
		return
	}
	kept := s.waiters[:0]
	for _, w := range s.waiters {
		if w.satisfied() {
			close(w.done)
			continue
		}
		kept = append(kept, w)
	}
	s.waiters = kept
}

// removeWaiterLocked drops a waiter that gave up. Callers must hold s.mu.
func (s *Synchronizer) removeWaiterLocked(w *stateWaiter) {
	for i, candidate := range s.waiters {
		if candidate == w {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			return
		}
	}
}

// drainedLocked reports whether both queues are empty with no drain running.
// Callers must hold s.mu.
func (s *Synchronizer) drainedLocked() bool {
	if !s.queuesEmptyLocked() {
		return false
	}
	for _, ch := range channels {
		if s.draining[ch] {
			return false
		}
	}
	return true
}

// queuesEmptyLocked reports whether both channel queues are empty. Callers
// must hold s.mu.
func (s *Synchronizer) queuesEmptyLocked() bool {
	for _, ch := range channels {
		if s.queues[ch].len() > 0 {
			return false
		}
	}
	return true
}
