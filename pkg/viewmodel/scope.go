package viewmodel

import "github.com/statekit-dev/statekit/pkg/state"

// Scope is the extension surface a concrete screen supplies to a
// ViewModel. ProjectStoreState is the one required method; the optional
// capabilities below are discovered by interface assertion, so a scope
// implements only what it needs.
type Scope[S, V, A any] interface {
	// ProjectStoreState maps the current store state plus the prior view
	// state to the next view state. It must be pure and deterministic:
	// identical inputs yield identical output, no side effects.
	ProjectStoreState(storeState S, viewState V) V
}

// ActionScope is implemented by scopes that accept actions. HandleAction
// may edit the view state and may describe a pending store mutation; it
// must be pure apart from the returned values. Returning a nil mutator
// requests no store mutation.
type ActionScope[S, V, A any] interface {
	Scope[S, V, A]
	HandleAction(action A, viewState V) (V, func(*S))
}

// WillChangeObserver is implemented by scopes that observe view-state
// transitions before they commit. The hook runs synchronously, pre-commit,
// and only for observable changes (changed or initial).
type WillChangeObserver[V any] interface {
	StateWillChange(change state.Change[V])
}

// DidChangeObserver is implemented by scopes that observe view-state
// transitions after they commit. The hook is scheduled on the view
// model's dispatcher; across multiple updates it fires in commit order.
type DidChangeObserver[V any] interface {
	StateDidChange(change state.Change[V])
}
