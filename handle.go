package dynpool

import (
	"go.uber.org/multierr"
)

// Handle is a one-shot completion token for a submitted task.
//
// It is signaled exactly once, after the task has run to completion,
// whether the task succeeded, returned an error, or panicked. Tasks
// still queued when the pool is disposed are abandoned and their
// handles never fire; callers that need drain-to-completion must wait
// on all handles before disposing.
type Handle struct {
	done chan struct{}
	err  error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// complete fires the handle. Must be called at most once.
func (h *Handle) complete(err error) {
	h.err = err
	close(h.done)
}

// Wait blocks until the task has run and returns its outcome:
// nil on success, the task's error, or a *TaskPanicError if the
// task panicked.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Done returns a channel closed when the task has run. It allows
// select-based waiting alongside other events.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the task's outcome if it has already run, and nil
// while the task is still pending or in flight.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// WaitAll blocks until every handle has fired and returns the
// combined error of all failed tasks, or nil if all succeeded.
func WaitAll(handles ...*Handle) error {
	var err error
	for _, h := range handles {
		err = multierr.Append(err, h.Wait())
	}
	return err
}
