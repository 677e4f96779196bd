// Package metrics exposes Prometheus metrics of design runs and the HTTP
// API on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Vladislav-Dmitriev/well-net/pkg/network"
)

const namespace = "wellnet"

// Metrics implements network.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	triples       *prometheus.CounterVec
	tripleSeconds *prometheus.HistogramVec
	selected      *prometheus.HistogramVec
	runs          *prometheus.CounterVec
	requests      *prometheus.CounterVec
	requestTime   *prometheus.HistogramVec
}

// New registers every collector on a fresh registry. Go and process
// collectors are included when withRuntime is set.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		triples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triples_total",
			Help:      "Designed triples by status.",
		}, []string{"status"}),
		tripleSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "triple_duration_seconds",
			Help:      "Time to design one triple.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30},
		}, []string{"horizon"}),
		selected: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "selected_wells",
			Help:      "Monitoring wells selected per triple.",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		}, []string{"horizon"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Design runs by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	m.registry.MustRegister(m.triples, m.tripleSeconds, m.selected, m.runs, m.requests, m.requestTime)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
		)
	}
	return m
}

// ObserveTriple records one finished triple.
func (m *Metrics) ObserveTriple(key network.Key, d time.Duration, selected int, err error) {
	if err != nil {
		m.triples.WithLabelValues("failed").Inc()
		return
	}
	m.triples.WithLabelValues("ok").Inc()
	m.tripleSeconds.WithLabelValues(key.Horizon).Observe(d.Seconds())
	m.selected.WithLabelValues(key.Horizon).Observe(float64(selected))
}

// ObserveRun records the outcome of a whole design run: "ok", "partial"
// when some triples failed, or "invalid" when the project was rejected.
func (m *Metrics) ObserveRun(outcome string) {
	m.runs.WithLabelValues(outcome).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.requestTime.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

var _ network.Recorder = (*Metrics)(nil)
