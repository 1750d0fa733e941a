package state

import "sync/atomic"

// Subscription is an opaque handle for one registered delivery channel
// on a store. Cancelling it stops future deliveries; a delivery already
// in flight when Cancel returns may still complete.
type Subscription struct {
	id     uint64
	remove func(id uint64)
	active atomic.Bool
}

// Cancel removes the subscription from its store's registry.
// It is idempotent and safe to call from any goroutine. No new callback
// invocation starts for this subscription once Cancel returns.
func (s *Subscription) Cancel() {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	s.remove(s.id)
}

// Active reports whether the subscription has not been cancelled.
func (s *Subscription) Active() bool {
	return s.active.Load()
}
