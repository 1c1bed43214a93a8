// Package metrics exposes Prometheus metrics for the stats server.
//
// WHAT IS MEASURED:
//   - every GitHub API request, by outcome (ok / empty / failed)
//   - every stats lookup, by cache result (hit / miss / anonymous)
//   - how long a full snapshot computation takes
//   - every HTTP request, by method, chi route pattern and status
//
// A private registry is used instead of prometheus.DefaultRegisterer so
// tests can build as many Metrics values as they like without "duplicate
// metrics collector registration" panics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gitstats"

// Cache results recorded by ObserveCache.
const (
	CacheHit       = "hit"
	CacheMiss      = "miss"
	CacheAnonymous = "anonymous"
)

// Metrics owns the registry and every collector in it.
type Metrics struct {
	registry *prometheus.Registry

	providerRequests *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	snapshotDuration prometheus.Histogram
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New creates a Metrics with its own registry, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "GitHub API requests by outcome.",
		}, []string{"outcome"}),
		providerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "GitHub API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "cache_lookups_total",
			Help:      "Stats requests by cache result.",
		}, []string{"result"}),
		snapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "snapshot_duration_seconds",
			Help:      "Time to compute a full statistics snapshot.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.providerRequests,
		m.providerDuration,
		m.cacheLookups,
		m.snapshotDuration,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// ObserveFetch records one GitHub API request. It satisfies provider.FetchObserver.
func (m *Metrics) ObserveFetch(outcome string, elapsed time.Duration) {
	m.providerRequests.WithLabelValues(outcome).Inc()
	m.providerDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveCache records one stats lookup.
func (m *Metrics) ObserveCache(result string) {
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveSnapshot records one full snapshot computation.
func (m *Metrics) ObserveSnapshot(elapsed time.Duration) {
	m.snapshotDuration.Observe(elapsed.Seconds())
}

// ObserveRequest records one HTTP request. route is the chi route pattern
// ("/api/stats"), never the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
