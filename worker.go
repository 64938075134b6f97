package dynpool

import (
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
	lg "github.com/Andrej220/go-utils/zlog"
)

// worker is one execution unit of the pool. It owns no shared state:
// it pulls items from the pool's queue and runs them outside any
// lock. Cancellation is cooperative, checked once per loop iteration
// and during the idle sleep; an in-flight task is never interrupted.
type worker[P any] struct {
	id   int
	pool *Pool[P]

	// stop is closed by cancel; done is closed when run returns.
	stop chan struct{}
	done chan struct{}
}

func newWorker[P any](p *Pool[P], id int) *worker[P] {
	return &worker[P]{
		id:   id,
		pool: p,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// cancel asks the worker to exit after its current iteration.
// Must be called at most once.
func (w *worker[P]) cancel() {
	close(w.stop)
}

// run is the dispatch loop. One iteration: check cancellation, try to
// dequeue the best-priority item, execute it, signal its handle. When
// the queue is empty the worker sleeps until poked by Submit, the
// poll interval elapses, or it is canceled.
func (w *worker[P]) run() {
	defer close(w.done)

	p := w.pool
	logger := lg.FromContext(p.opts.Ctx).With(lg.Int("worker", w.id))
	logger.Info("worker started")

	idle := time.NewTimer(p.opts.PollInterval)
	defer idle.Stop()

	for {
		select {
		case <-w.stop:
			logger.Info("worker stopped")
			return
		default:
		}

		it, ok := p.dequeue()
		if !ok {
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(p.opts.PollInterval)
			select {
			case <-w.stop:
				logger.Info("worker stopped")
				return
			case <-p.wake:
			case <-idle.C:
			}
			continue
		}

		w.runTask(it)
	}
}

// runTask executes one dequeued item and fires its handle exactly
// once, success or failure. Task faults never propagate out of the
// worker.
func (w *worker[P]) runTask(it *taskItem[P]) {
	p := w.pool
	p.active.Add(1)
	defer p.active.Add(-1)

	err := w.execute(it)
	if err != nil {
		p.opts.Metrics.IncFailed()
		p.reportTaskError(err)
	}
	p.opts.Metrics.IncExecuted()
	it.handle.complete(err)
}

// execute runs the task, applying the pool's retry policy if one is
// configured. Panics are recovered and never retried; backoff sleeps
// abort early when the worker is canceled.
func (w *worker[P]) execute(it *taskItem[P]) error {
	p := w.pool
	pol := p.opts.Retry
	if pol == nil {
		return runOnce(it.fn)
	}

	bo := boff.New(pol.Initial, pol.Max, time.Now().UnixNano())
	logger := lg.FromContext(p.opts.Ctx).With(lg.Int("worker", w.id))

	var err error
	for attempt := 1; ; attempt++ {
		err = runOnce(it.fn)
		if err == nil || attempt >= pol.Attempts {
			return err
		}
		if _, ok := err.(*TaskPanicError); ok {
			return err
		}

		delay := bo.Next()
		logger.Warn("task attempt failed; backing off",
			lg.Int("attempt", attempt),
			lg.String("sleep", delay.String()),
			lg.Any("error", err),
		)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-w.stop:
			if !timer.Stop() {
				<-timer.C
			}
			return err
		}
	}
}

// runOnce invokes the task, converting a panic into *TaskPanicError.
func runOnce(fn TaskFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newTaskPanicError(r)
		}
	}()
	return fn()
}
