package state

// Trigger classifies why a state transition occurred.
type Trigger uint8

const (
	// TriggerStoreConnect marks the first delivery a subscriber receives
	// immediately upon subscribing. It carries no prior state.
	TriggerStoreConnect Trigger = iota + 1

	// TriggerStoreUpdate marks a delta produced by a committed store mutation.
	TriggerStoreUpdate

	// TriggerAction marks a delta produced purely by local action handling,
	// with no store round-trip.
	TriggerAction
)

// String returns a human-readable name for the trigger.
func (t Trigger) String() string {
	switch t {
	case TriggerStoreConnect:
		return "StoreConnect"
	case TriggerStoreUpdate:
		return "StoreUpdate"
	case TriggerAction:
		return "Action"
	default:
		return "Unknown"
	}
}

// Change is an immutable record of one state transition: the old and new
// snapshots plus the trigger that produced them. Whether the transition
// altered the value is decided once, at construction, using the equality
// function of the container that produced it.
type Change[S any] struct {
	Trigger Trigger
	Old     S
	New     S

	changed bool
}

// NewChange builds a Change using the default equality for S.
func NewChange[S any](trigger Trigger, old, next S) Change[S] {
	return NewChangeFunc(trigger, old, next, nil)
}

// NewChangeFunc builds a Change using a custom equality function.
// A nil equals falls back to DefaultEquals.
func NewChangeFunc[S any](trigger Trigger, old, next S, equals func(S, S) bool) Change[S] {
	if equals == nil {
		equals = DefaultEquals[S]
	}
	return Change[S]{
		Trigger: trigger,
		Old:     old,
		New:     next,
		changed: !equals(old, next),
	}
}

// IsInitial reports whether this is the initial connection delivery.
func (c Change[S]) IsInitial() bool {
	return c.Trigger == TriggerStoreConnect
}

// HasChanged reports whether the transition altered the value.
func (c Change[S]) HasChanged() bool {
	return c.changed
}

// Observable reports whether this change may reach an observer.
// Unchanged, non-initial transitions are suppressed before any
// hook or callback sees them.
func (c Change[S]) Observable() bool {
	return c.changed || c.IsInitial()
}
