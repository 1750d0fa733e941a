// Package observe provides instrumentation backends for state stores.
//
// Stores accept a state.Instrument via state.WithInstrument; this
// package supplies the two production implementations plus a combinator:
//
//   - Prometheus() records update outcomes, critical-section duration,
//     delivery fan-out, and subscriber counts as Prometheus metrics.
//   - Tracing() emits one OpenTelemetry span per store update.
//   - Multi() fans observations out to several instruments.
//
// Example:
//
//	store := state.New(AppState{},
//	    state.WithName[AppState]("app"),
//	    state.WithInstrument[AppState](observe.Multi(
//	        observe.Prometheus(),
//	        observe.Tracing(observe.WithTracerName("my-app")),
//	    )),
//	)
//
// Expose the metrics with the standard promhttp handler:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// The tracer uses the global OpenTelemetry tracer provider; configure it
// in main() before creating stores.
package observe
