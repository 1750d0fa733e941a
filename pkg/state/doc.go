// Package state provides a single-writer, multi-reader state container.
//
// A Store owns one state value and serializes every mutation through a
// single critical section. Committed transitions are broadcast to
// subscribers in registration order; transitions that leave the value
// unchanged are suppressed and never reach an observer.
//
// # Core Types
//
// Store[S] is the single source of truth for one state value:
//
//	store := state.New(Counter{})
//	store.Update(func(s *Counter) { s.Count++ })  // Serialized write
//	snapshot := store.Read()                      // Atomic snapshot
//
// Subscribe registers a delivery callback. The callback receives an
// initial delivery with a nil old state before Subscribe returns, and
// one delivery per committed transition thereafter:
//
//	sub := store.Subscribe(func(old *Counter, next Counter) {
//	    if old == nil {
//	        // Initial connection delivery
//	    }
//	})
//	sub.Cancel()  // Idempotent; stops future deliveries
//
// Change[S] is the immutable record of one transition, classified by a
// Trigger (initial connection, store update, or local action).
//
// # Ordering
//
// For a single store, broadcast order matches commit order: if update A
// enters the critical section before update B, every subscriber observes
// A's delta before B's. Delivery within one broadcast is FIFO by
// registration.
//
// # Thread Safety
//
// Read, Update, and Subscribe are safe to call from any goroutine.
// Subscriber callbacks run on the updating goroutine while the store's
// broadcast section is held, so they must not call back into the store
// synchronously; hand work off to another goroutine or a runloop.Loop
// instead.
package state
