// Package dynpool provides two concurrency primitives whose capacity
// can be changed while they are in use:
//
//   - Pool, a priority-ordered task pool with a runtime-resizable
//     worker set
//   - DynSemaphore, a counting semaphore with a runtime-adjustable
//     maximum
//
// # Pool
//
// Tasks are submitted together with a priority key. Workers pull the
// best-priority task from a shared heap guarded by a single short-held
// mutex, execute it outside any lock, and signal the task's Handle
// exactly once. Equal priorities are executed in submission order.
//
// The worker set can be grown and shrunk live through SetWorkerCount.
// Growing starts new workers immediately and never blocks. Shrinking
// cancels the most recently added workers and blocks the caller until
// each of them has finished its in-flight task and exited; a running
// task is never interrupted.
//
// With a single worker, tasks complete in strict priority order.
// With several workers, cross-priority ordering is best effort: the
// next free worker takes the next-best task, and workers race on the
// queue mutex rather than coordinating a global order.
//
// Workers use a polling dispatch loop. An idle worker sleeps for a
// short, configurable interval between queue checks, so that interval
// bounds the worst-case dispatch latency of a freshly submitted task.
// Submit additionally pokes one idle worker to cut the common-case
// latency well below the bound.
//
// Faults from tasks never terminate a worker. Returned errors and
// recovered panics are forwarded to an optional handler and also
// delivered through the task's Handle; a panicking handler is itself
// contained.
//
// # DynSemaphore
//
// DynSemaphore tracks a used count against a maximum that can be
// raised or lowered at any time. Raising the maximum grants slots to
// as many blocked acquirers as the new headroom admits. Lowering it
// never revokes slots already held; the used count may exceed the
// maximum until enough releases occur, during which AvailableCount
// reports zero. Waiters are served in FIFO order. Releasing more
// often than acquiring is a caller logic defect and panics.
//
// # Intended use
//
// The pool exposes point-in-time counters (WorkerCount,
// ActiveWorkers, QueueLength) so an external controller can sample
// load and call SetWorkerCount; the scaling policy itself is the
// caller's concern. The package does no distributed scheduling,
// persistence, or per-task timeouts.
package dynpool
