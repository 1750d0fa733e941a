package state

import "time"

// UpdateStatus is the outcome of a single Update call.
type UpdateStatus uint8

const (
	// UpdateCommitted means the mutator changed the value and the
	// transition was broadcast.
	UpdateCommitted UpdateStatus = iota + 1

	// UpdateSuppressed means the mutator left the value equal to its
	// input, so no commit and no broadcast occurred.
	UpdateSuppressed

	// UpdatePanicked means the mutator panicked. Nothing was committed
	// and the prior state remains authoritative.
	UpdatePanicked
)

// String returns the metric label value for the status.
func (s UpdateStatus) String() string {
	switch s {
	case UpdateCommitted:
		return "committed"
	case UpdateSuppressed:
		return "suppressed"
	case UpdatePanicked:
		return "panicked"
	default:
		return "unknown"
	}
}

// Instrument receives store lifecycle observations. Implementations live
// in pkg/observe (Prometheus metrics, OpenTelemetry tracing); the store
// itself carries no instrumentation dependency.
//
// Methods are called synchronously from store operations and must be
// cheap and non-blocking.
type Instrument interface {
	// UpdateObserved records one Update call: its outcome and the time
	// spent inside the store's critical section.
	UpdateObserved(store string, status UpdateStatus, elapsed time.Duration)

	// DeliveryObserved records one broadcast fan-out of count deliveries.
	DeliveryObserved(store string, count int)

	// SubscribersChanged records the registry size after a subscribe
	// or cancel.
	SubscribersChanged(store string, count int)
}

// nopInstrument is the default when no instrument is configured.
type nopInstrument struct{}

func (nopInstrument) UpdateObserved(string, UpdateStatus, time.Duration) {}
func (nopInstrument) DeliveryObserved(string, int)                      {}
func (nopInstrument) SubscribersChanged(string, int)                    {}
