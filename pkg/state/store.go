package state

import (
	"log/slog"
	"sync"
	"time"
)

// Store is the single source of truth for one state value of type S.
//
// All mutations go through Update, which serializes read-modify-write
// cycles so that concurrent updates never interleave. Committed
// transitions are broadcast to subscribers in registration order;
// value-identical transitions are suppressed.
type Store[S any] struct {
	name   string
	logger *slog.Logger
	equal  func(S, S) bool
	inst   Instrument

	// mu guards value. Reads take it briefly; it is never held across
	// subscriber callbacks.
	mu    sync.RWMutex
	value S

	// updateMu is the store's serialization point. It is held for the
	// whole of an Update (mutate, commit, broadcast) and for the
	// register-plus-initial-delivery step of Subscribe, so broadcast
	// order matches commit order and an initial delivery can never be
	// reordered against a concurrent update's delta.
	updateMu sync.Mutex

	// subMu guards subs. Registration order is delivery order.
	subMu sync.Mutex
	subs  []subscriber[S]
}

// subscriber pairs a callback with its cancellation handle.
type subscriber[S any] struct {
	handle *Subscription
	fn     func(old *S, next S)
}

// Option configures a Store.
type Option[S any] func(*Store[S])

// WithName sets the store name used in logs and instrument labels.
func WithName[S any](name string) Option[S] {
	return func(s *Store[S]) {
		s.name = name
	}
}

// WithLogger sets the store's logger. Defaults to slog.Default().
func WithLogger[S any](logger *slog.Logger) Option[S] {
	return func(s *Store[S]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEquals sets a custom equality function used to gate broadcasts.
// This is useful for state types where reflect.DeepEqual is too
// expensive or has incorrect semantics.
func WithEquals[S any](fn func(S, S) bool) Option[S] {
	return func(s *Store[S]) {
		if fn != nil {
			s.equal = fn
		}
	}
}

// WithInstrument attaches an Instrument to the store.
func WithInstrument[S any](inst Instrument) Option[S] {
	return func(s *Store[S]) {
		if inst != nil {
			s.inst = inst
		}
	}
}

// New creates a store owning the given initial state.
func New[S any](initial S, opts ...Option[S]) *Store[S] {
	s := &Store[S]{
		name:   "store",
		logger: slog.Default(),
		equal:  DefaultEquals[S],
		inst:   nopInstrument{},
		value:  initial,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the store's configured name.
func (s *Store[S]) Name() string {
	return s.name
}

// Read returns the current state snapshot. It never observes a
// partially-mutated value: an in-flight Update commits atomically.
func (s *Store[S]) Read() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Update serializes a read-modify-write cycle: it captures the current
// state, applies mutator to a copy, and commits the result. The commit
// is broadcast to every registered subscriber, in registration order,
// only when the mutated value differs from its input per the store's
// equality function. A value-identical mutation is a no-op from every
// observer's perspective.
//
// A panicking mutator commits nothing: the prior state remains
// authoritative and the panic propagates to the caller.
//
// This is the single mutation entry point; no other code path changes
// the store's state.
func (s *Store[S]) Update(mutator func(*S)) {
	if mutator == nil {
		return
	}

	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	start := time.Now()
	status := UpdatePanicked
	defer func() {
		s.inst.UpdateObserved(s.name, status, time.Since(start))
	}()

	s.mu.RLock()
	old := s.value
	s.mu.RUnlock()

	next := old
	mutator(&next)

	if s.equal(old, next) {
		status = UpdateSuppressed
		s.logger.Debug("update suppressed, state unchanged", "store", s.name)
		return
	}

	s.mu.Lock()
	s.value = next
	s.mu.Unlock()
	status = UpdateCommitted

	s.broadcast(old, next)
}

// Subscribe registers a delivery callback and synchronously invokes it
// once with (nil, currentState) before returning. The nil old state
// distinguishes the connection delivery from later deltas, where old is
// always present. The returned Subscription stops future deliveries
// when cancelled.
//
// The callback runs on the updating goroutine while the store's
// broadcast section is held; it must not call back into the store
// synchronously.
func (s *Store[S]) Subscribe(fn func(old *S, next S)) *Subscription {
	if fn == nil {
		panic("state: Subscribe requires a non-nil callback")
	}

	sub := &Subscription{
		id:     nextID(),
		remove: s.removeSubscriber,
	}
	sub.active.Store(true)

	// Registration and the initial delivery share the update critical
	// section: a concurrent update is either fully committed before the
	// connection delivery (its value is the one delivered) or broadcasts
	// strictly after it.
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	s.mu.RLock()
	current := s.value
	s.mu.RUnlock()

	s.subMu.Lock()
	s.subs = append(s.subs, subscriber[S]{handle: sub, fn: fn})
	count := len(s.subs)
	s.subMu.Unlock()

	s.inst.SubscribersChanged(s.name, count)

	fn(nil, current)
	return sub
}

// broadcast delivers one committed transition to a stable snapshot of
// the subscriber registry, in registration order. Subscriptions arriving
// mid-broadcast are picked up by the next one.
func (s *Store[S]) broadcast(old, next S) {
	s.subMu.Lock()
	snapshot := make([]subscriber[S], len(s.subs))
	copy(snapshot, s.subs)
	s.subMu.Unlock()

	delivered := 0
	prior := old
	for _, entry := range snapshot {
		if !entry.handle.Active() {
			continue
		}
		entry.fn(&prior, next)
		delivered++
	}
	s.inst.DeliveryObserved(s.name, delivered)
}

// removeSubscriber deletes a registry entry by subscription ID,
// preserving the registration order of the remaining entries.
func (s *Store[S]) removeSubscriber(id uint64) {
	s.subMu.Lock()
	count := len(s.subs)
	for i, entry := range s.subs {
		if entry.handle.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			count = len(s.subs)
			break
		}
	}
	s.subMu.Unlock()

	s.inst.SubscribersChanged(s.name, count)
}

// subscriberCount returns the current registry size.
func (s *Store[S]) subscriberCount() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}
