package runloop

import (
	"sync"
	"testing"
)

func TestInlineRunsImmediately(t *testing.T) {
	ran := false
	Inline{}.Dispatch(func() { ran = true })
	if !ran {
		t.Error("Inline should run the function before Dispatch returns")
	}
}

func TestLoopPreservesOrder(t *testing.T) {
	loop := New()
	defer loop.Close()

	var mu sync.Mutex
	var order []int
	for i := 0; i < 100; i++ {
		n := i
		loop.Dispatch(func() {
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
		})
	}
	loop.Sync()

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 100 {
		t.Fatalf("expected 100 executions, got %d", len(order))
	}
	for i, n := range order {
		if n != i {
			t.Fatalf("execution %d was function %d; FIFO order broken", i, n)
		}
	}
}

func TestLoopSyncIsABarrier(t *testing.T) {
	loop := New()
	defer loop.Close()

	done := false
	loop.Dispatch(func() { done = true })
	loop.Sync()

	// Safe to read without synchronization: Sync ordered this goroutine
	// after the dispatched write.
	if !done {
		t.Error("Sync returned before prior dispatch ran")
	}
}

func TestLoopCloseIsIdempotentAndDrains(t *testing.T) {
	loop := New()

	ran := 0
	for i := 0; i < 5; i++ {
		loop.Dispatch(func() { ran++ })
	}
	loop.Close()
	loop.Close()

	if ran != 5 {
		t.Errorf("Close drained %d of 5 queued functions", ran)
	}

	loop.Dispatch(func() { ran++ })
	loop.Sync()
	if ran != 5 {
		t.Error("dispatch after Close should be discarded")
	}
}

func TestLoopDropsWhenQueueFull(t *testing.T) {
	loop := New(WithQueueSize(1))
	defer loop.Close()

	gate := make(chan struct{})
	started := make(chan struct{})
	loop.Dispatch(func() {
		close(started)
		<-gate
	})
	<-started // loop goroutine is now blocked inside the gate function

	var mu sync.Mutex
	var ran []string
	record := func(name string) func() {
		return func() {
			mu.Lock()
			ran = append(ran, name)
			mu.Unlock()
		}
	}

	loop.Dispatch(record("queued"))  // fills the buffer
	loop.Dispatch(record("dropped")) // buffer full, discarded

	close(gate)
	loop.Sync()

	mu.Lock()
	defer mu.Unlock()
	if len(ran) != 1 || ran[0] != "queued" {
		t.Errorf("expected only the queued function to run, got %v", ran)
	}
}
