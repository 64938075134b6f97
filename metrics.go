package dynpool

import (
	"sync/atomic"
)

// MetricsPolicy defines hooks used by the pool to report queueing and
// execution activity.
//
// Implementations must be safe for concurrent use. All methods are
// expected to be lightweight and non-blocking.
type MetricsPolicy interface {

	// IncQueued increments the queued tasks counter.
	IncQueued()

	// DecQueued decrements the queued tasks counter when a task is
	// taken by a worker.
	DecQueued()

	// IncExecuted increments the executed tasks counter.
	IncExecuted()

	// IncFailed increments the failed tasks counter. A task counts as
	// failed when its final attempt returned an error or panicked.
	IncFailed()
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	// executed is the total number of tasks processed.
	executed atomic.Uint64

	_ [56]byte // padding to avoid false sharing

	// queued is the current number of tasks enqueued.
	queued atomic.Int64

	_ [56]byte

	// failed is the total number of tasks whose final attempt failed.
	failed atomic.Uint64
}

// Executed returns the total number of executed tasks.
// Intended for cold-path observation.
func (m *AtomicMetrics) Executed() uint64 {
	return m.executed.Load()
}

// Queued returns the current number of queued tasks.
// Intended for cold-path observation.
func (m *AtomicMetrics) Queued() int64 {
	return m.queued.Load()
}

// Failed returns the total number of failed tasks.
func (m *AtomicMetrics) Failed() uint64 {
	return m.failed.Load()
}

func (m *AtomicMetrics) IncQueued() {
	m.queued.Add(1)
}

func (m *AtomicMetrics) DecQueued() {
	m.queued.Add(-1)
}

func (m *AtomicMetrics) IncExecuted() {
	m.executed.Add(1)
}

func (m *AtomicMetrics) IncFailed() {
	m.failed.Add(1)
}

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards all
// metric updates. It is used when metrics collection is disabled and
// zero overhead is desired.
type NoopMetrics struct{}

func (m *NoopMetrics) IncQueued()   {}
func (m *NoopMetrics) DecQueued()   {}
func (m *NoopMetrics) IncExecuted() {}
func (m *NoopMetrics) IncFailed()   {}
