// Package metrics exposes registry and notifier instrumentation through a
// dedicated Prometheus registry.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "civic_registry"

// Metrics records operation outcomes and notifier activity.
type Metrics struct {
	registry    *prometheus.Registry
	operations  *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	subscribers prometheus.Gauge
	published   prometheus.Counter
	dropped     *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry, including the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Registry operations by name and result.",
		}, []string{"operation", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Registry operation latency.",
			Buckets:   []float64{.00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"operation"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "subscribers",
			Help:      "Currently registered change observers.",
		}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "events_published_total",
			Help:      "Creation events handed to the notifier.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "observers_dropped_total",
			Help:      "Observers removed by the notifier, by reason.",
		}, []string{"reason"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.operations,
		m.durations,
		m.subscribers,
		m.published,
		m.dropped,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TrackRecords registers a gauge reporting the live record count.
func (m *Metrics) TrackRecords(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "records",
		Help:      "Live service records.",
	}, func() float64 { return float64(count()) }))
}

// Observe records a registry operation outcome.
func (m *Metrics) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	result := "error"
	if success {
		result = "success"
	}
	m.operations.WithLabelValues(operation, result).Inc()
	m.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// SubscribersChanged sets the current observer count.
func (m *Metrics) SubscribersChanged(n int) { m.subscribers.Set(float64(n)) }

// EventPublished counts one creation event.
func (m *Metrics) EventPublished() { m.published.Inc() }

// ObserverDropped counts an observer removed for reason.
func (m *Metrics) ObserverDropped(reason string) { m.dropped.WithLabelValues(reason).Inc() }
