package viewmodel

import (
	"log/slog"
	"sync/atomic"

	"github.com/statekit-dev/statekit/pkg/runloop"
	"github.com/statekit-dev/statekit/pkg/state"
)

// StoreContext is the collaborator a ViewModel is constructed around.
// It exposes the one store the ViewModel binds to for its lifetime.
type StoreContext[S any] interface {
	Store() *state.Store[S]
}

// ViewModel binds one store to one locally-owned view state of type V.
// S is the store's state type and A the scope's action type; scopes
// without actions can use any placeholder for A (conventionally
// struct{}).
//
// The zero value is not usable; construct with New.
type ViewModel[S, V, A any] struct {
	name   string
	store  *state.Store[S]
	scope  Scope[S, V, A]
	disp   runloop.Dispatcher
	logger *slog.Logger
	equal  func(V, V) bool

	// viewState is owned by the dispatcher's context. It is never read
	// or written off it.
	viewState V

	sub    *state.Subscription
	closed atomic.Bool
}

// Option configures a ViewModel.
type Option[S, V, A any] func(*ViewModel[S, V, A])

// WithName sets the view model's name used in logs.
func WithName[S, V, A any](name string) Option[S, V, A] {
	return func(vm *ViewModel[S, V, A]) {
		vm.name = name
	}
}

// WithLogger sets the view model's logger. Defaults to slog.Default().
func WithLogger[S, V, A any](logger *slog.Logger) Option[S, V, A] {
	return func(vm *ViewModel[S, V, A]) {
		if logger != nil {
			vm.logger = logger
		}
	}
}

// WithDispatcher sets the designated context that view-state access and
// hooks are marshaled onto. Defaults to runloop.Inline, which runs
// updates on the delivering goroutine; programs with a UI thread or
// event loop should pass their runloop.Loop here.
func WithDispatcher[S, V, A any](d runloop.Dispatcher) Option[S, V, A] {
	return func(vm *ViewModel[S, V, A]) {
		if d != nil {
			vm.disp = d
		}
	}
}

// WithViewEquals sets a custom equality function for view states, used
// by the view model's own change-suppression gate.
func WithViewEquals[S, V, A any](fn func(V, V) bool) Option[S, V, A] {
	return func(vm *ViewModel[S, V, A]) {
		if fn != nil {
			vm.equal = fn
		}
	}
}

// New constructs a ViewModel bound to ctx's store.
//
// The view state starts at V's zero value, then the ViewModel subscribes
// to the store: the subscription's connection delivery runs the
// projection once with the current store state and commits the result
// with an initial-connection trigger. Store deltas thereafter re-run the
// projection and commit observable results in delivery order.
//
// A nil ctx, store, or scope is a programming error and panics: there
// is no meaningful default projection to fall back to.
func New[S, V, A any](ctx StoreContext[S], scope Scope[S, V, A], opts ...Option[S, V, A]) *ViewModel[S, V, A] {
	if ctx == nil || ctx.Store() == nil {
		panic("viewmodel: New requires a context with a store")
	}
	if scope == nil {
		panic("viewmodel: New requires a projection scope")
	}

	vm := &ViewModel[S, V, A]{
		name:   "viewmodel",
		store:  ctx.Store(),
		scope:  scope,
		disp:   runloop.Inline{},
		logger: slog.Default(),
		equal:  state.DefaultEquals[V],
	}
	for _, opt := range opts {
		opt(vm)
	}

	vm.sub = vm.store.Subscribe(func(old *S, next S) {
		trigger := state.TriggerStoreUpdate
		if old == nil {
			trigger = state.TriggerStoreConnect
		}
		storeState := next
		vm.disp.Dispatch(func() {
			// A delivery racing teardown is an expected no-op, not a fault.
			if vm.closed.Load() {
				return
			}
			vm.apply(vm.scope.ProjectStoreState(storeState, vm.viewState), trigger)
		})
	})

	return vm
}

// Name returns the view model's configured name.
func (vm *ViewModel[S, V, A]) Name() string {
	return vm.name
}

// ViewState returns the current view state. It must be called on the
// view model's designated context.
func (vm *ViewModel[S, V, A]) ViewState() V {
	return vm.viewState
}

// OnAction routes an application action through the scope's action
// handler. The view-state edit commits synchronously: the caller
// observes the new ViewState as soon as OnAction returns. A store
// mutator returned by the handler is submitted to the store without
// waiting for its broadcast; the resulting delta arrives later through
// the normal subscription path. Actions never mutate the store
// directly.
//
// OnAction must be called on the view model's designated context. On a
// scope without HandleAction it is a no-op.
func (vm *ViewModel[S, V, A]) OnAction(action A) {
	if vm.closed.Load() {
		return
	}
	handler, ok := vm.scope.(ActionScope[S, V, A])
	if !ok {
		vm.logger.Debug("action dropped, scope handles no actions", "viewmodel", vm.name)
		return
	}

	next, mutator := handler.HandleAction(action, vm.viewState)
	vm.apply(next, state.TriggerAction)

	if mutator != nil {
		vm.store.Update(mutator)
	}
}

// UpdateStore submits a mutation to the bound store. It is the escape
// hatch for view models without a formal action type; the resulting
// delta arrives through the subscription path like any other.
func (vm *ViewModel[S, V, A]) UpdateStore(mutator func(*S)) {
	if vm.closed.Load() {
		return
	}
	vm.store.Update(mutator)
}

// apply is the single view-state commit routine. It runs on the
// designated context. Non-initial transitions that leave the view state
// unchanged return without side effects: no hook call, no state write.
// This gate is independent of the store's broadcast gate; a transition
// reaches the view only if it survives both.
func (vm *ViewModel[S, V, A]) apply(next V, trigger state.Trigger) {
	change := state.NewChangeFunc(trigger, vm.viewState, next, vm.equal)
	if !change.Observable() {
		vm.logger.Debug("view update suppressed, view state unchanged",
			"viewmodel", vm.name, "trigger", trigger.String())
		return
	}

	if will, ok := vm.scope.(WillChangeObserver[V]); ok {
		will.StateWillChange(change)
	}

	vm.viewState = next

	if did, ok := vm.scope.(DidChangeObserver[V]); ok {
		vm.disp.Dispatch(func() {
			if vm.closed.Load() {
				return
			}
			did.StateDidChange(change)
		})
	}
}

// Close cancels the store subscription and retires the ViewModel. It is
// idempotent. Deliveries already in flight when Close returns are
// silently dropped; no projection or hook fires afterwards.
func (vm *ViewModel[S, V, A]) Close() {
	if vm.closed.Swap(true) {
		return
	}
	vm.sub.Cancel()
}
