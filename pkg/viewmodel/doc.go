// Package viewmodel provides the derivation layer between a state.Store
// and a view: each ViewModel binds to exactly one store, projects store
// state into a locally-owned view state through a pure projection, and
// feeds local actions back into store mutations.
//
// # Data Flow
//
// View → OnAction → ViewModel (synchronous view-state edit, optional
// store mutation) → Store (serialized commit, equality-gated broadcast)
// → subscription callback → projection → view-state update → View
// re-reads ViewState.
//
// # Scopes
//
// A concrete screen supplies a Scope: the required projection plus
// optional capabilities discovered by interface assertion:
//
//	type counterScope struct{}
//
//	func (counterScope) ProjectStoreState(s AppState, v CounterView) CounterView {
//	    v.Count = s.Count
//	    return v
//	}
//
//	func (counterScope) HandleAction(a CounterAction, v CounterView) (CounterView, func(*AppState)) {
//	    v.Count = a.Value
//	    return v, func(s *AppState) { s.Count = a.Value }
//	}
//
// # Context Affinity
//
// ViewState reads, view-state writes, and change hooks all run on one
// designated context supplied as a runloop.Dispatcher. Store deliveries
// may arrive on any goroutine; the ViewModel marshals them onto the
// dispatcher before touching view state. OnAction callers must invoke
// from that same context.
package viewmodel
