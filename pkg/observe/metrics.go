package observe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/statekit-dev/statekit/pkg/state"
)

// MetricsConfig configures the Prometheus instrument.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "statekit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for update duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus instrument.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the update duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "statekit",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// PrometheusInstrument records store activity as Prometheus metrics.
// It implements state.Instrument.
type PrometheusInstrument struct {
	updatesTotal    *prometheus.CounterVec
	updateDuration  *prometheus.HistogramVec
	deliveriesTotal *prometheus.CounterVec
	subscribers     *prometheus.GaugeVec
}

// Prometheus creates a Prometheus-backed instrument.
//
// Metrics collected:
//   - statekit_store_updates_total: Counter of Update calls by store and
//     status (committed, suppressed, panicked)
//   - statekit_store_update_duration_seconds: Histogram of time spent in
//     the store's critical section
//   - statekit_store_deliveries_total: Counter of subscriber deliveries
//   - statekit_store_subscribers: Gauge of registered subscribers
func Prometheus(opts ...MetricsOption) *PrometheusInstrument {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &PrometheusInstrument{
		updatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_updates_total",
			Help:        "Total number of store Update calls by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"store", "status"}),

		updateDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_update_duration_seconds",
			Help:        "Time spent inside the store's update critical section",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"store"}),

		deliveriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_deliveries_total",
			Help:        "Total number of subscriber deliveries broadcast by stores",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),

		subscribers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_subscribers",
			Help:        "Number of subscribers currently registered per store",
			ConstLabels: config.ConstLabels,
		}, []string{"store"}),
	}
}

// UpdateObserved implements state.Instrument.
func (p *PrometheusInstrument) UpdateObserved(store string, status state.UpdateStatus, elapsed time.Duration) {
	p.updatesTotal.WithLabelValues(store, status.String()).Inc()
	p.updateDuration.WithLabelValues(store).Observe(elapsed.Seconds())
}

// DeliveryObserved implements state.Instrument.
func (p *PrometheusInstrument) DeliveryObserved(store string, count int) {
	p.deliveriesTotal.WithLabelValues(store).Add(float64(count))
}

// SubscribersChanged implements state.Instrument.
func (p *PrometheusInstrument) SubscribersChanged(store string, count int) {
	p.subscribers.WithLabelValues(store).Set(float64(count))
}
