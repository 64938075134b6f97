package dynpool_test

import (
	"runtime"
	"testing"
	"time"

	dp "github.com/Andrej220/go-utils/dynpool"
)

func newTestPool(t *testing.T, workers int, opts dp.Options) *dp.Pool[int] {
	t.Helper()

	if opts.PollInterval == 0 {
		opts.PollInterval = time.Millisecond
	}
	p, err := dp.New[int](workers, opts)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	return p
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
	}
	t.Fatal("condition not satisfied before timeout")
}

// gate blocks the single worker of a pool so that subsequent
// submissions pile up in the queue in a deterministic state.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gate) task() error {
	close(g.entered)
	<-g.release
	return nil
}

func (g *gate) open() { close(g.release) }

func (g *gate) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(time.Second):
		t.Fatal("gate task did not start")
	}
}
