package dynpool

import "errors"

var (
	// ErrInvalidCount is returned when a worker count or semaphore
	// capacity is negative.
	ErrInvalidCount = errors.New("dynpool: count must be non-negative")

	// ErrInvalidTimeout is returned by DynSemaphore.TryAcquire for a
	// negative timeout other than the Forever sentinel.
	ErrInvalidTimeout = errors.New("dynpool: invalid negative timeout")

	// ErrDisposed is returned when an operation is attempted on a pool
	// after Dispose.
	ErrDisposed = errors.New("dynpool: pool is disposed")

	// ErrNilTask is returned when a submitted task func is nil.
	ErrNilTask = errors.New("dynpool: task func is nil")

	// ErrNilLess is returned by NewFunc when the comparator is nil.
	ErrNilLess = errors.New("dynpool: less func is nil")

	// ErrOverRelease is the value carried by the panic raised when a
	// DynSemaphore is released more times than it was acquired.
	ErrOverRelease = errors.New("dynpool: semaphore released without matching acquire")
)
