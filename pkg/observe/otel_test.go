package observe

import (
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/statekit-dev/statekit/pkg/state"
)

// The tracing instrument runs against the global tracer provider, which
// defaults to a no-op implementation; these tests exercise the option
// plumbing and the filter path, not exported spans.

func TestTracingFilterSkipsUpdates(t *testing.T) {
	var filtered []state.UpdateStatus
	inst := Tracing(
		WithTracerName("test"),
		WithUpdateFilter(func(store string, status state.UpdateStatus) bool {
			filtered = append(filtered, status)
			return status == state.UpdateCommitted
		}),
	)

	inst.UpdateObserved("s", state.UpdateCommitted, time.Millisecond)
	inst.UpdateObserved("s", state.UpdateSuppressed, 0)

	if len(filtered) != 2 {
		t.Fatalf("filter called %d times, want 2", len(filtered))
	}
	if filtered[0] != state.UpdateCommitted || filtered[1] != state.UpdateSuppressed {
		t.Errorf("filter saw %v", filtered)
	}
}

func TestTracingAttributeExtractor(t *testing.T) {
	extracted := 0
	inst := Tracing(
		WithAttributeExtractor(func(store string) []attribute.KeyValue {
			extracted++
			return []attribute.KeyValue{attribute.String("tenant", "test")}
		}),
	)

	inst.UpdateObserved("s", state.UpdateCommitted, time.Millisecond)
	inst.DeliveryObserved("s", 3)
	inst.SubscribersChanged("s", 1)

	if extracted != 1 {
		t.Errorf("extractor called %d times, want 1 (updates only)", extracted)
	}
}

type countingInstrument struct {
	updates, deliveries, subscribers int
}

func (c *countingInstrument) UpdateObserved(string, state.UpdateStatus, time.Duration) { c.updates++ }
func (c *countingInstrument) DeliveryObserved(string, int)                             { c.deliveries++ }
func (c *countingInstrument) SubscribersChanged(string, int)                           { c.subscribers++ }

func TestMultiFansOut(t *testing.T) {
	a := &countingInstrument{}
	b := &countingInstrument{}
	inst := Multi(a, nil, b)

	inst.UpdateObserved("s", state.UpdateCommitted, 0)
	inst.DeliveryObserved("s", 2)
	inst.SubscribersChanged("s", 1)

	for i, c := range []*countingInstrument{a, b} {
		if c.updates != 1 || c.deliveries != 1 || c.subscribers != 1 {
			t.Errorf("instrument %d saw %d/%d/%d observations, want 1/1/1",
				i, c.updates, c.deliveries, c.subscribers)
		}
	}
}
