package dynpool

import (
	"cmp"
	"fmt"
	"sync"
	"sync/atomic"

	lg "github.com/Andrej220/go-utils/zlog"
)

// TaskFunc is the unit of work executed by a pool worker. A non-nil
// return value is reported to Options.OnTaskError and delivered
// through the task's Handle.
type TaskFunc func() error

// Pool executes submitted tasks in priority order on a set of workers
// whose size can be changed at runtime.
//
// Two locks with disjoint duties guard its state: the queue mutex
// covers the heap and the disposed flag and is only ever held for
// O(log n) bookkeeping; the structural mutex serializes grow, shrink
// and dispose. Submission and task execution never take the
// structural mutex, so a slow shrink cannot stall submitters.
type Pool[P any] struct {
	opts Options

	qmu      sync.Mutex
	queue    *taskHeap[P]
	seq      uint64
	disposed bool

	// wake lets Submit poke one idle worker without waiting out the
	// poll interval. Capacity 1: coalescing lost wakes is fine, the
	// poll timer is the correctness backstop.
	wake chan struct{}

	smu     sync.Mutex
	workers []*worker[P]
	nextID  int

	active atomic.Int32
}

// New creates a pool with the given number of workers, ordering tasks
// by the natural ascending order of their priority key (lower value
// runs first). Workers start immediately.
//
// Returns ErrInvalidCount if workers is negative.
func New[P cmp.Ordered](workers int, opts Options) (*Pool[P], error) {
	return NewFunc[P](workers, func(a, b P) bool { return a < b }, opts)
}

// NewFunc is like New but orders tasks with a caller-supplied
// comparator: less(a, b) reports whether priority a should run before
// priority b.
func NewFunc[P any](workers int, less func(a, b P) bool, opts Options) (*Pool[P], error) {
	if workers < 0 {
		return nil, fmt.Errorf("%w: initial worker count %d", ErrInvalidCount, workers)
	}
	if less == nil {
		return nil, ErrNilLess
	}
	opts.FillDefaults()

	p := &Pool[P]{
		opts:  opts,
		queue: newTaskHeap(less),
		wake:  make(chan struct{}, 1),
	}
	p.smu.Lock()
	p.growLocked(workers)
	p.smu.Unlock()
	return p, nil
}

// Submit enqueues a task with the given priority and returns its
// Handle. The task will be executed exactly once by some worker, best
// priority first, submission order among equals.
//
// Returns ErrDisposed after Dispose and ErrNilTask for a nil task.
func (p *Pool[P]) Submit(task TaskFunc, prio P) (*Handle, error) {
	if task == nil {
		return nil, ErrNilTask
	}

	h := newHandle()
	p.qmu.Lock()
	if p.disposed {
		p.qmu.Unlock()
		return nil, ErrDisposed
	}
	p.seq++
	p.queue.push(&taskItem[P]{fn: task, prio: prio, seq: p.seq, handle: h})
	depth := p.queue.Len()
	p.qmu.Unlock()

	p.opts.Metrics.IncQueued()

	select {
	case p.wake <- struct{}{}:
	default:
	}

	lg.FromContext(p.opts.Ctx).Info("task submitted",
		lg.Any("priority", prio),
		lg.Int("queued", depth),
	)
	return h, nil
}

// dequeue hands the best-priority item to a worker.
func (p *Pool[P]) dequeue() (*taskItem[P], bool) {
	p.qmu.Lock()
	it, ok := p.queue.pop()
	p.qmu.Unlock()
	if ok {
		p.opts.Metrics.DecQueued()
	}
	return it, ok
}

// SetWorkerCount grows or shrinks the worker set to n.
//
// Growing starts the additional workers immediately and returns
// without blocking; new workers may begin dequeuing before the call
// returns. Shrinking cancels the n most recently added workers and
// blocks until each has finished any in-flight task and exited.
// A call with n equal to the current count is a no-op.
//
// Returns ErrInvalidCount if n is negative, ErrDisposed after Dispose.
func (p *Pool[P]) SetWorkerCount(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: worker count %d", ErrInvalidCount, n)
	}

	p.smu.Lock()
	defer p.smu.Unlock()

	p.qmu.Lock()
	disposed := p.disposed
	p.qmu.Unlock()
	if disposed {
		return ErrDisposed
	}

	cur := len(p.workers)
	switch {
	case n == cur:
		return nil
	case n > cur:
		p.growLocked(n - cur)
	default:
		p.shrinkLocked(cur - n)
	}

	lg.FromContext(p.opts.Ctx).Info("worker count changed",
		lg.Int("from", cur),
		lg.Int("to", n),
	)
	return nil
}

// growLocked starts k new workers. Callers must hold smu.
func (p *Pool[P]) growLocked(k int) {
	for range k {
		w := newWorker(p, p.nextID)
		p.nextID++
		p.workers = append(p.workers, w)
		go w.run()
	}
}

// shrinkLocked cancels the k most recently added workers and waits
// for them to drain. Callers must hold smu.
func (p *Pool[P]) shrinkLocked(k int) {
	cut := len(p.workers) - k
	victims := p.workers[cut:]
	p.workers = p.workers[:cut]

	for _, w := range victims {
		w.cancel()
	}
	for _, w := range victims {
		<-w.done
	}
}

// Dispose tears the pool down: no further submissions are accepted,
// every worker is canceled and waited for. Tasks still queued are
// abandoned and their handles never fire. A second call returns
// ErrDisposed.
func (p *Pool[P]) Dispose() error {
	p.qmu.Lock()
	if p.disposed {
		p.qmu.Unlock()
		return ErrDisposed
	}
	p.disposed = true
	p.qmu.Unlock()

	p.smu.Lock()
	defer p.smu.Unlock()

	for _, w := range p.workers {
		w.cancel()
	}
	for _, w := range p.workers {
		<-w.done
	}
	p.workers = nil

	lg.FromContext(p.opts.Ctx).Info("pool disposed")
	return nil
}

// WorkerCount returns the current number of workers.
func (p *Pool[P]) WorkerCount() int {
	p.smu.Lock()
	defer p.smu.Unlock()
	return len(p.workers)
}

// ActiveWorkers returns how many workers are executing a task right
// now. Best-effort point-in-time value.
func (p *Pool[P]) ActiveWorkers() int32 {
	return p.active.Load()
}

// QueueLength returns the number of tasks waiting in the queue.
func (p *Pool[P]) QueueLength() int {
	p.qmu.Lock()
	defer p.qmu.Unlock()
	return p.queue.Len()
}

// Stats is a point-in-time snapshot of the pool's load counters,
// intended for an external controller that samples it and adjusts
// the worker count. The fields are read independently and need not
// be mutually consistent.
type Stats struct {
	Workers       int
	ActiveWorkers int32
	QueueLength   int
}

// Stats samples the pool's load counters.
func (p *Pool[P]) Stats() Stats {
	return Stats{
		Workers:       p.WorkerCount(),
		ActiveWorkers: p.ActiveWorkers(),
		QueueLength:   p.QueueLength(),
	}
}
