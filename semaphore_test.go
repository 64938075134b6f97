package dynpool_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	dp "github.com/Andrej220/go-utils/dynpool"
)

func newSem(t *testing.T, max int) *dp.DynSemaphore {
	t.Helper()
	s, err := dp.NewDynSemaphore(max)
	if err != nil {
		t.Fatalf("new semaphore: %v", err)
	}
	return s
}

func mustAcquire(t *testing.T, s *dp.DynSemaphore) {
	t.Helper()
	if err := s.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}
}

func TestNewDynSemaphoreNegative(t *testing.T) {
	if _, err := dp.NewDynSemaphore(-1); !errors.Is(err, dp.ErrInvalidCount) {
		t.Fatalf("err = %v; want ErrInvalidCount", err)
	}
}

func TestCounters(t *testing.T) {
	s := newSem(t, 3)

	if got := s.AvailableCount(); got != 3 {
		t.Fatalf("AvailableCount = %d; want 3", got)
	}

	mustAcquire(t, s)
	mustAcquire(t, s)
	if got := s.UsedCount(); got != 2 {
		t.Fatalf("UsedCount = %d; want 2", got)
	}
	if got := s.AvailableCount(); got != 1 {
		t.Fatalf("AvailableCount = %d; want 1", got)
	}

	s.Release()
	s.Release()
	if got := s.UsedCount(); got != 0 {
		t.Fatalf("UsedCount = %d; want 0", got)
	}
	if got := s.AvailableCount(); got != 3 {
		t.Fatalf("AvailableCount = %d; want 3", got)
	}
}

// Lowering the maximum below the used count never revokes held slots;
// the counters converge as releases come in.
func TestLowerMaxBelowUsed(t *testing.T) {
	s := newSem(t, 3)
	mustAcquire(t, s)
	mustAcquire(t, s)

	if err := s.SetMaxCount(1); err != nil {
		t.Fatalf("set max: %v", err)
	}
	if got := s.UsedCount(); got != 2 {
		t.Fatalf("UsedCount = %d; want 2", got)
	}
	if got := s.AvailableCount(); got != 0 {
		t.Fatalf("AvailableCount = %d; want 0", got)
	}
	if ok, err := s.TryAcquire(0); err != nil || ok {
		t.Fatalf("TryAcquire(0) = %v, %v; want false, nil", ok, err)
	}

	s.Release()
	if got, want := s.UsedCount(), 1; got != want {
		t.Fatalf("UsedCount = %d; want %d", got, want)
	}
	if got := s.AvailableCount(); got != 0 {
		t.Fatalf("AvailableCount = %d; want 0", got)
	}
	if ok, err := s.TryAcquire(0); err != nil || ok {
		t.Fatalf("TryAcquire(0) = %v, %v; want false, nil", ok, err)
	}

	s.Release()
	if got := s.UsedCount(); got != 0 {
		t.Fatalf("UsedCount = %d; want 0", got)
	}
	if got := s.AvailableCount(); got != 1 {
		t.Fatalf("AvailableCount = %d; want 1", got)
	}
	if ok, err := s.TryAcquire(0); err != nil || !ok {
		t.Fatalf("TryAcquire(0) = %v, %v; want true, nil", ok, err)
	}
}

func TestRaiseMaxUnblocksWaiter(t *testing.T) {
	s := newSem(t, 0)

	acquired := make(chan struct{})
	go func() {
		defer close(acquired)
		_ = s.Acquire(context.Background())
	}()

	select {
	case <-acquired:
		t.Fatal("acquire succeeded with max 0")
	case <-time.After(50 * time.Millisecond):
	}

	if err := s.SetMaxCount(1); err != nil {
		t.Fatalf("set max: %v", err)
	}
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("raising max did not unblock the waiter")
	}
	if got := s.UsedCount(); got != 1 {
		t.Fatalf("UsedCount = %d; want 1", got)
	}
}

func TestRaiseMaxGrantsSeveral(t *testing.T) {
	s := newSem(t, 0)

	const waiters = 3
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Acquire(context.Background())
		}()
	}

	time.Sleep(50 * time.Millisecond)
	if err := s.SetMaxCount(waiters); err != nil {
		t.Fatalf("set max: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		wg.Wait()
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("raising max did not grant all waiters")
	}
	if got := s.UsedCount(); got != waiters {
		t.Fatalf("UsedCount = %d; want %d", got, waiters)
	}
}

func TestSetMaxCountNegative(t *testing.T) {
	s := newSem(t, 1)
	if err := s.SetMaxCount(-1); !errors.Is(err, dp.ErrInvalidCount) {
		t.Fatalf("err = %v; want ErrInvalidCount", err)
	}
}

func TestOverReleasePanics(t *testing.T) {
	s := newSem(t, 1)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Release did not panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, dp.ErrOverRelease) {
			t.Fatalf("panic value = %v; want ErrOverRelease", r)
		}
	}()
	s.Release()
}

func TestTryAcquireInvalidTimeout(t *testing.T) {
	s := newSem(t, 1)
	if _, err := s.TryAcquire(-5 * time.Millisecond); !errors.Is(err, dp.ErrInvalidTimeout) {
		t.Fatalf("err = %v; want ErrInvalidTimeout", err)
	}
}

func TestTryAcquireZeroCapacity(t *testing.T) {
	s := newSem(t, 0)

	if ok, err := s.TryAcquire(0); err != nil || ok {
		t.Fatalf("TryAcquire(0) = %v, %v; want false, nil", ok, err)
	}

	start := time.Now()
	ok, err := s.TryAcquire(50 * time.Millisecond)
	if err != nil || ok {
		t.Fatalf("TryAcquire(50ms) = %v, %v; want false, nil", ok, err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("timed acquire returned after %v; expected to wait out the timeout", elapsed)
	}
}

func TestTryAcquireSucceedsBeforeDeadline(t *testing.T) {
	s := newSem(t, 1)
	mustAcquire(t, s)

	result := make(chan bool, 1)
	go func() {
		ok, _ := s.TryAcquire(time.Second)
		result <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	s.Release()

	select {
	case ok := <-result:
		if !ok {
			t.Fatal("timed acquire returned false; want true")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed acquire did not return")
	}
}

func TestTryAcquireForever(t *testing.T) {
	s := newSem(t, 1)
	mustAcquire(t, s)

	result := make(chan bool, 1)
	go func() {
		ok, _ := s.TryAcquire(dp.Forever)
		result <- ok
	}()

	select {
	case <-result:
		t.Fatal("Forever acquire returned while the slot was held")
	case <-time.After(50 * time.Millisecond):
	}

	s.Release()
	select {
	case ok := <-result:
		if !ok {
			t.Fatal("Forever acquire returned false; want true")
		}
	case <-time.After(time.Second):
		t.Fatal("Forever acquire did not return after release")
	}
}

func TestAcquireContextCancel(t *testing.T) {
	s := newSem(t, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Acquire = %v; want deadline exceeded", err)
	}

	// The aborted waiter must not consume a later grant.
	if err := s.SetMaxCount(1); err != nil {
		t.Fatalf("set max: %v", err)
	}
	if ok, err := s.TryAcquire(0); err != nil || !ok {
		t.Fatalf("TryAcquire(0) = %v, %v; want true, nil", ok, err)
	}
}

func TestWaitersGrantedInFIFOOrder(t *testing.T) {
	s := newSem(t, 1)
	mustAcquire(t, s)

	var mu sync.Mutex
	var order []int
	ready := make([]chan struct{}, 2)

	for i := 0; i < 2; i++ {
		i := i
		ready[i] = make(chan struct{})
		go func() {
			close(ready[i])
			_ = s.Acquire(context.Background())
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}()
		<-ready[i]
		// Give waiter i time to enqueue before starting the next one.
		time.Sleep(20 * time.Millisecond)
	}

	s.Release()
	waitUntil(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 1
	})
	mu.Lock()
	first := order[0]
	mu.Unlock()
	if first != 0 {
		t.Fatalf("first grant went to waiter %d; want 0", first)
	}

	s.Release()
	waitUntil(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	})
}

func TestConcurrentAcquireRelease(t *testing.T) {
	s := newSem(t, 3)

	const (
		goroutines = 8
		iterations = 100
	)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				if err := s.Acquire(context.Background()); err != nil {
					t.Errorf("acquire: %v", err)
					return
				}
				if got := s.UsedCount(); got < 1 {
					t.Errorf("UsedCount = %d while holding a slot", got)
				}
				s.Release()
			}
		}()
	}
	wg.Wait()

	if got := s.UsedCount(); got != 0 {
		t.Fatalf("UsedCount = %d; want 0", got)
	}
	if got := s.AvailableCount(); got != 3 {
		t.Fatalf("AvailableCount = %d; want 3", got)
	}
}
