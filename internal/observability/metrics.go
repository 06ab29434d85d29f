// Package observability holds the Prometheus instrumentation for the
// PatiMap backend.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// station registry and notification pipeline.
type Metrics struct {
	StationsCreated prometheus.Counter
	StationsDeleted prometheus.Counter

	HelpEventsRecorded   *prometheus.CounterVec // label: kind={water,food}
	NotificationsWritten *prometheus.CounterVec // label: kind
	PartialFailures      prometheus.Counter

	FeedSubscribers prometheus.Gauge
	FeedRefreshes   prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // label: outcome={resolved,no_match,empty,error}
	GeocodeAPIDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus
// registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.StationsCreated,
		m.StationsDeleted,
		m.HelpEventsRecorded,
		m.NotificationsWritten,
		m.PartialFailures,
		m.FeedSubscribers,
		m.FeedRefreshes,
		m.GeocodeRequests,
		m.GeocodeAPIDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		StationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "patimap",
			Name:      "stations_created_total",
			Help:      "Total feeding stations created.",
		}),
		StationsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "patimap",
			Name:      "stations_deleted_total",
			Help:      "Total feeding stations deleted.",
		}),
		HelpEventsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patimap",
			Name:      "help_events_recorded_total",
			Help:      "Help deliveries recorded, by kind.",
		}, []string{"kind"}),
		NotificationsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patimap",
			Name:      "notifications_written_total",
			Help:      "Feed notifications written, by kind.",
		}, []string{"kind"}),
		PartialFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "patimap",
			Name:      "partial_failures_total",
			Help:      "Help events whose follow-up notification write failed.",
		}),
		FeedSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "patimap",
			Name:      "feed_subscribers",
			Help:      "Currently connected notification feed subscribers.",
		}),
		FeedRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "patimap",
			Name:      "feed_refreshes_total",
			Help:      "Full feed refreshes triggered by change events.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patimap",
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding lookups by outcome.",
		}, []string{"outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "patimap",
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}
