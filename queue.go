package dynpool

import (
	"container/heap"
)

const initialQueueCapacity = 64

// taskItem is one queued unit of work. It is created at Submit time,
// owned by the queue until dequeued, then by the executing worker.
type taskItem[P any] struct {
	// fn is the task payload.
	fn TaskFunc

	// prio is the user-provided priority key supplied at Submit time.
	prio P

	// seq is a monotonically increasing submission counter. It breaks
	// ties between equal priorities so that equal-priority tasks are
	// dequeued in submission order.
	seq uint64

	// handle is fired once after fn has run, or never if the pool is
	// disposed while the item is still queued.
	handle *Handle
}

// taskHeap is a min-heap of taskItems ordered by the pool comparator,
// with ascending seq as the tie-break.
//
// It is not safe for concurrent use; the pool accesses it only under
// its queue mutex, which is held for O(log n) bookkeeping and never
// across task execution.
type taskHeap[P any] struct {
	items []*taskItem[P]
	less  func(a, b P) bool
}

func newTaskHeap[P any](less func(a, b P) bool) *taskHeap[P] {
	h := &taskHeap[P]{
		items: make([]*taskItem[P], 0, initialQueueCapacity),
		less:  less,
	}
	heap.Init(h)
	return h
}

func (h *taskHeap[P]) Len() int { return len(h.items) }

func (h *taskHeap[P]) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if h.less(a.prio, b.prio) {
		return true
	}
	if h.less(b.prio, a.prio) {
		return false
	}
	return a.seq < b.seq
}

func (h *taskHeap[P]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *taskHeap[P]) Push(x any) {
	h.items = append(h.items, x.(*taskItem[P]))
}

func (h *taskHeap[P]) Pop() any {
	old := h.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	h.items = old[:n-1]
	return it
}

// push inserts a new item.
func (h *taskHeap[P]) push(it *taskItem[P]) {
	heap.Push(h, it)
}

// pop removes and returns the best-priority item, or false if the
// queue is empty.
func (h *taskHeap[P]) pop() (*taskItem[P], bool) {
	if len(h.items) == 0 {
		return nil, false
	}
	return heap.Pop(h).(*taskItem[P]), true
}
