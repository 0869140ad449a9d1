// Package metrics exports device and HTTP activity as Prometheus metrics.
// A Metrics value owns its registry so several can coexist in one process.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/fibdev/internal/session"
	"github.com/agbru/fibdev/internal/sysmon"
)

const namespace = "fibdev"

// Metrics holds the collectors. It implements session.Observer.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	acquired prometheus.Counter
	busy     prometheus.Counter
	held     prometheus.Histogram
	compute  prometheus.Histogram
	reads    prometheus.Counter
	active   prometheus.Gauge

	requests       *prometheus.CounterVec
	requestSeconds *prometheus.HistogramVec
	activeRequests prometheus.Gauge
}

var _ session.Observer = (*Metrics)(nil)

// New creates and registers every collector, including the Go runtime
// collector and the heap gauges fed by a MemoryCollector.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		acquired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_acquired_total",
			Help:      "Sessions granted by the device.",
		}),
		busy: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_busy_total",
			Help:      "Acquire attempts refused because another session was open.",
		}),
		held: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_held_seconds",
			Help:      "Time between acquire and release of a session.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
		}),
		compute: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compute_seconds",
			Help:      "Engine time of a single Fibonacci evaluation.",
			Buckets:   prometheus.ExponentialBuckets(1e-8, 4, 12),
		}),
		reads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reads_total",
			Help:      "Completed device reads.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently open (0 or 1).",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_active_requests",
			Help:      "HTTP requests in flight.",
		}),
	}

	mem := NewMemoryCollector()
	reg.MustRegister(
		m.acquired, m.busy, m.held, m.compute, m.reads, m.active,
		m.requests, m.requestSeconds, m.activeRequests,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "heap_alloc_bytes",
			Help:      "Bytes of allocated heap objects.",
		}, func() float64 { return float64(mem.Snapshot().HeapAlloc) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gc_cycles_total",
			Help:      "Completed garbage collection cycles.",
		}, func() float64 { return float64(mem.Snapshot().NumGC) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "host_cpu_percent",
			Help:      "Host CPU usage since the previous scrape.",
		}, func() float64 { return sysmon.Sample(context.Background()).CPUPercent }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "host_memory_percent",
			Help:      "Host memory in use.",
		}, func() float64 { return sysmon.Sample(context.Background()).MemPercent }),
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns the exposition handler.
func (m *Metrics) Handler() http.Handler { return m.handler }

// WritePrometheus writes the exposition format to w.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

func (m *Metrics) Acquired() {
	m.acquired.Inc()
	m.active.Inc()
}

func (m *Metrics) Busy() { m.busy.Inc() }

func (m *Metrics) Released(held time.Duration) {
	m.held.Observe(held.Seconds())
	m.active.Dec()
}

func (m *Metrics) Computed(r session.Reading) {
	m.reads.Inc()
	m.compute.Observe(r.Elapsed.Seconds())
}

// IncrementActiveRequests marks an HTTP request as started.
func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

// DecrementActiveRequests marks an HTTP request as finished.
func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// ObserveRequest records a finished HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.requestSeconds.WithLabelValues(route).Observe(d.Seconds())
}
