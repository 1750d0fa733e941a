package state

import (
	"context"
	"testing"
	"time"
)

func TestWatchDeliversChanges(t *testing.T) {
	store := New(counter{Count: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := store.Watch(ctx)

	initial := receiveChange(t, ch)
	if !initial.IsInitial() {
		t.Error("first watch delivery should be the connection change")
	}
	if initial.New.Count != 1 {
		t.Errorf("connection change carried count %d, want 1", initial.New.Count)
	}

	store.Update(func(c *counter) { c.Count = 2 })

	delta := receiveChange(t, ch)
	if delta.IsInitial() {
		t.Error("delta should not be initial")
	}
	if !delta.HasChanged() {
		t.Error("delta should report a change")
	}
	if delta.Old.Count != 1 || delta.New.Count != 2 {
		t.Errorf("delta carried %d -> %d, want 1 -> 2", delta.Old.Count, delta.New.Count)
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	store := New(counter{})
	ctx, cancel := context.WithCancel(context.Background())

	ch := store.Watch(ctx)
	receiveChange(t, ch) // drain connection delivery

	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				// Channel closed; further updates must not panic.
				store.Update(func(c *counter) { c.Count = 5 })
				return
			}
		case <-deadline:
			t.Fatal("watch channel not closed after context cancellation")
		}
	}
}

func receiveChange(t *testing.T, ch <-chan Change[counter]) Change[counter] {
	t.Helper()
	select {
	case c, ok := <-ch:
		if !ok {
			t.Fatal("watch channel closed unexpectedly")
		}
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
		return Change[counter]{}
	}
}
