package dynpool

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"
)

// Forever makes DynSemaphore.TryAcquire block indefinitely, like
// Acquire with a background context.
const Forever time.Duration = -1

// DynSemaphore is a counting semaphore whose maximum can be changed
// while it is in use.
//
// Raising the maximum immediately grants slots to as many blocked
// acquirers as the new headroom admits. Lowering it never revokes
// slots already held: the used count may exceed the maximum until
// enough releases occur, and AvailableCount reports zero for that
// window. Waiters are granted slots in FIFO order.
type DynSemaphore struct {
	mu   sync.Mutex
	max  int
	used int

	// waiters holds one chan struct{} per blocked acquirer, in
	// arrival order. A slot is granted by incrementing used and
	// closing the waiter's channel; ownership transfers with the
	// close, so a granted waiter must not release on its own abort
	// paths.
	waiters list.List
}

// NewDynSemaphore creates a semaphore with the given maximum count.
// Returns ErrInvalidCount if max is negative. A zero maximum is
// valid: every acquire blocks until the maximum is raised.
func NewDynSemaphore(max int) (*DynSemaphore, error) {
	if max < 0 {
		return nil, fmt.Errorf("%w: maximum count %d", ErrInvalidCount, max)
	}
	return &DynSemaphore{max: max}, nil
}

// Acquire blocks until a slot is available or ctx is done.
// Returns nil once the slot is held, ctx.Err() on cancellation.
// Use context.Background() for an indefinite wait.
func (s *DynSemaphore) Acquire(ctx context.Context) error {
	s.mu.Lock()
	if s.used < s.max && s.waiters.Len() == 0 {
		s.used++
		s.mu.Unlock()
		return nil
	}
	ready := make(chan struct{})
	elem := s.waiters.PushBack(ready)
	s.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		select {
		case <-ready:
			// Granted while ctx was firing; the slot is held.
			s.mu.Unlock()
			return nil
		default:
		}
		s.waiters.Remove(elem)
		s.mu.Unlock()
		return ctx.Err()
	}
}

// TryAcquire attempts to take a slot within the given timeout.
//
// A zero timeout is an immediate, non-blocking attempt. Forever
// blocks indefinitely and always returns true. A positive timeout
// waits up to that duration and returns false if it elapses first.
// Any other negative timeout returns ErrInvalidTimeout.
func (s *DynSemaphore) TryAcquire(timeout time.Duration) (bool, error) {
	if timeout < 0 && timeout != Forever {
		return false, fmt.Errorf("%w: %v", ErrInvalidTimeout, timeout)
	}

	s.mu.Lock()
	if s.used < s.max && s.waiters.Len() == 0 {
		s.used++
		s.mu.Unlock()
		return true, nil
	}
	if timeout == 0 {
		s.mu.Unlock()
		return false, nil
	}
	ready := make(chan struct{})
	elem := s.waiters.PushBack(ready)
	s.mu.Unlock()

	if timeout == Forever {
		<-ready
		return true, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ready:
		return true, nil
	case <-timer.C:
		s.mu.Lock()
		select {
		case <-ready:
			// Granted just as the deadline fired; the slot is held.
			s.mu.Unlock()
			return true, nil
		default:
		}
		s.waiters.Remove(elem)
		s.mu.Unlock()
		return false, nil
	}
}

// Release returns a slot and grants it to the first eligible waiter.
//
// Releasing more times than acquired is a logic defect in the caller,
// not a transient condition: Release panics with ErrOverRelease
// rather than absorbing it.
func (s *DynSemaphore) Release() {
	s.mu.Lock()
	if s.used == 0 {
		s.mu.Unlock()
		panic(ErrOverRelease)
	}
	s.used--
	s.grantLocked()
	s.mu.Unlock()
}

// SetMaxCount changes the maximum count. Raising it wakes as many
// blocked acquirers as the new headroom admits; lowering it leaves
// current holders untouched. Returns ErrInvalidCount if n is
// negative.
func (s *DynSemaphore) SetMaxCount(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: maximum count %d", ErrInvalidCount, n)
	}
	s.mu.Lock()
	s.max = n
	s.grantLocked()
	s.mu.Unlock()
	return nil
}

// grantLocked hands free slots to waiters in FIFO order.
// Callers must hold mu.
func (s *DynSemaphore) grantLocked() {
	for s.used < s.max {
		front := s.waiters.Front()
		if front == nil {
			return
		}
		s.used++
		s.waiters.Remove(front)
		close(front.Value.(chan struct{}))
	}
}

// MaxCount returns the current maximum count.
func (s *DynSemaphore) MaxCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.max
}

// UsedCount returns the number of slots currently held. It may
// exceed MaxCount right after the maximum was lowered.
func (s *DynSemaphore) UsedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}

// AvailableCount returns max(MaxCount-UsedCount, 0), never negative.
//
// UsedCount and AvailableCount are independent point-in-time reads;
// two values read back to back need not be mutually consistent.
func (s *DynSemaphore) AvailableCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.used >= s.max {
		return 0
	}
	return s.max - s.used
}
