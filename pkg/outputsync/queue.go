package outputsync

import "github.com/tidwall/btree"

// item is one queued write request plus its completion channel. The done
// channel is buffered so the drain loop never blocks on an abandoned caller.
type item struct {
	op   Operation
	seq  uint64
	rank int
	done chan error
}

// lessItem orders items by urgency rank, then arrival sequence. The ordering
// encodes the full drain policy; the drain loop itself never compares
// priorities.
func lessItem(a, b *item) bool {
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	return a.seq < b.seq
}

// priorityQueue buffers pending operations for one channel in strict
// priority order with FIFO tie-break. It has no locking of its own; the
// synchronizer is the only mutator and always holds its state lock.
type priorityQueue struct {
	tree   *btree.BTreeG[*item]
	depths map[Priority]int
}

func newPriorityQueue() *priorityQueue {
	return &priorityQueue{
		tree:   btree.NewBTreeG[*item](lessItem),
		depths: make(map[Priority]int),
	}
}

// enqueue inserts an item, maintaining the ordering invariant.
func (q *priorityQueue) enqueue(it *item) {
	q.tree.Set(it)
	q.depths[it.op.Priority]++
}

// dequeue removes and returns the most urgent, earliest-enqueued item.
func (q *priorityQueue) dequeue() (*item, bool) {
	it, ok := q.tree.PopMin()
	if !ok {
		return nil, false
	}
	q.depths[it.op.Priority]--
	if q.depths[it.op.Priority] == 0 {
		delete(q.depths, it.op.Priority)
	}
	return it, true
}

// len returns the number of pending items.
func (q *priorityQueue) len() int {
	return q.tree.Len()
}

// depthByPriority returns a copy of the per-priority depths.
func (q *priorityQueue) depthByPriority() map[Priority]int {
	out := make(map[Priority]int, len(q.depths))
	for p, n := range q.depths {
		out[p] = n
	}
	return out
}
