package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/statekit-dev/statekit/pkg/state"
)

// Default tracer name for statekit instrumentation.
const defaultTracerName = "statekit"

// TracingConfig configures the OpenTelemetry instrument.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "statekit").
	TracerName string

	// Filter determines which updates to trace.
	// Return true to trace the update, false to skip.
	// If nil, all updates are traced.
	Filter func(store string, status state.UpdateStatus) bool

	// AttributeExtractor extracts custom attributes per store.
	// Called for each traced update.
	AttributeExtractor func(store string) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TracingOption configures the OpenTelemetry instrument.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithUpdateFilter sets a filter function for updates.
func WithUpdateFilter(filter func(store string, status state.UpdateStatus) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(store string) []attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultTracingConfig() TracingConfig {
	return TracingConfig{
		TracerName: defaultTracerName,
		Filter:     nil,
	}
}

// TracingInstrument emits one OpenTelemetry span per store update.
// It implements state.Instrument.
type TracingInstrument struct {
	config TracingConfig
}

// Tracing creates an OpenTelemetry-backed instrument.
//
// Each Update call becomes a span named "statekit.update" carrying the
// store name and outcome. The span's start time is back-dated so its
// duration reflects the time spent inside the store's critical section.
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in your main() before creating stores:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	)
//	otel.SetTracerProvider(tp)
func Tracing(opts ...TracingOption) *TracingInstrument {
	config := defaultTracingConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Resolve tracer from global provider
	config.tracer = otel.Tracer(config.TracerName)

	return &TracingInstrument{config: config}
}

// UpdateObserved implements state.Instrument.
func (t *TracingInstrument) UpdateObserved(store string, status state.UpdateStatus, elapsed time.Duration) {
	if t.config.Filter != nil && !t.config.Filter(store, status) {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("statekit.store", store),
		attribute.String("statekit.update_status", status.String()),
	}
	if t.config.AttributeExtractor != nil {
		attrs = append(attrs, t.config.AttributeExtractor(store)...)
	}

	// Update has no caller context; the span stands alone under the
	// global provider with a back-dated start timestamp.
	_, span := t.config.tracer.Start(
		context.Background(),
		"statekit.update",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(time.Now().Add(-elapsed)),
	)
	span.End()
}

// DeliveryObserved implements state.Instrument. Delivery fan-out is not
// traced; use the Prometheus instrument for fan-out counts.
func (t *TracingInstrument) DeliveryObserved(store string, count int) {}

// SubscribersChanged implements state.Instrument.
func (t *TracingInstrument) SubscribersChanged(store string, count int) {}
