package dynpool

import (
	"context"
	"time"
)

// DefaultPollInterval is the idle worker re-check interval used when
// Options.PollInterval is zero. It bounds the worst-case dispatch
// latency of a task submitted right after an idle worker's check.
const DefaultPollInterval = 10 * time.Millisecond

// Options configure a Pool.
//
// All zero values are replaced with sensible defaults in FillDefaults.
type Options struct {
	// PollInterval is how long an idle worker sleeps between queue
	// checks.
	PollInterval time.Duration

	// OnTaskError receives errors returned by tasks and recovered
	// task panics (as *TaskPanicError). It may be called concurrently
	// from several workers. A nil handler discards task errors.
	// A panic inside the handler is swallowed.
	OnTaskError func(error)

	// Retry, when non-nil, re-runs failing tasks with backoff.
	// Panicking tasks are never retried.
	Retry *RetryPolicy

	// Metrics receives queueing and execution counters.
	Metrics MetricsPolicy

	// Ctx scopes the pool's log output. It does not cancel the pool.
	Ctx context.Context
}

func (o *Options) FillDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Metrics == nil {
		o.Metrics = &NoopMetrics{}
	}
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
	if o.Retry != nil {
		o.Retry.normalize()
	}
}
