// Package telemetry wires the cache engine into Prometheus. It is the
// engine's external observer, not part of the core: the engine keeps its
// own counters as the source of truth, and this package only
// mirrors them into gauges for scraping, alongside transport-level
// request metrics for the HTTP adapter.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CacheStatsSource is satisfied by *cacheengine.Engine. It is defined here,
// not imported from cacheengine, so the core package stays free of any
// Prometheus dependency — telemetry depends on cacheengine's shape, not
// the other way around.
type CacheStatsSource interface {
	Hits() uint64
	Misses() uint64
	Evictions() uint64
	ExpiredRemovals() uint64
	CurrentSize() int
}

var (
	Registry = prometheus.NewRegistry()

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowcache",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"op", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "flowcache",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests.",
			// Tune buckets to your SLOs. This covers 1ms .. ~4s.
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 13),
		},
		[]string{"op"},
	)

	InFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "flowcache",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
		[]string{"op"},
	)

	// ---- Process / build info ----
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "flowcache",
			Name:      "build_info",
			Help:      "Build info (constant 1, labeled by version and git_sha).",
		},
		[]string{"version", "git_sha"},
	)

	startTime = time.Now()
	uptime    = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "flowcache",
			Name:      "uptime_seconds",
			Help:      "Process uptime in seconds.",
		},
		func() float64 { return time.Since(startTime).Seconds() },
	)
)

func init() {
	Registry.MustRegister(RequestsTotal, RequestDuration, InFlight, buildInfo, uptime)
}

// RegisterEngineMetrics registers GaugeFuncs that pull the engine's own
// counters at scrape time, the same lazy-evaluation pattern as the
// package's own uptime gauge above. The engine's counters, not these
// gauges, remain the source of truth for /stats — this is a read-only
// mirror for Prometheus scraping.
func RegisterEngineMetrics(src CacheStatsSource) {
	Registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "flowcache", Name: "cache_hits_total", Help: "Cumulative cache hits.",
		}, func() float64 { return float64(src.Hits()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "flowcache", Name: "cache_misses_total", Help: "Cumulative cache misses.",
		}, func() float64 { return float64(src.Misses()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "flowcache", Name: "cache_evictions_total", Help: "Cumulative LRU evictions.",
		}, func() float64 { return float64(src.Evictions()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "flowcache", Name: "cache_expired_removals_total", Help: "Cumulative TTL-expired removals.",
		}, func() float64 { return float64(src.ExpiredRemovals()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "flowcache", Name: "cache_current_size", Help: "Current number of entries in the cache.",
		}, func() float64 { return float64(src.CurrentSize()) }),
	)
}

// MetricsHandler exposes /metrics. Mount it with mux.Handle("/metrics", telemetry.MetricsHandler()).
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// SetBuildInfo should be called once at startup, e.g. with ldflags-provided values.
func SetBuildInfo(version, gitSHA string) {
	buildInfo.WithLabelValues(version, gitSHA).Set(1)
}

// ---- Middleware instrumentation ----

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Instrument wraps an http.Handler to record metrics under the provided "op" label.
// Example:
//
//	mux.HandleFunc("/get", telemetry.Instrument("get", http.HandlerFunc(s.handleGet)).ServeHTTP)
func Instrument(op string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: 200}
		start := time.Now()

		InFlight.WithLabelValues(op).Inc()
		defer InFlight.WithLabelValues(op).Dec()

		next.ServeHTTP(sw, r)

		class := strconv.Itoa(sw.status/100) + "xx"
		RequestsTotal.WithLabelValues(op, class).Inc()
		RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	})
}
