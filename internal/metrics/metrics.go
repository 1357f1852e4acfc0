// Package metrics exposes Prometheus instrumentation for the relay.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry so tests and multiple instances never
// collide on the global one.
type Recorder struct {
	registry *prometheus.Registry

	upstreamTotal    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	analyzeTotal     *prometheus.CounterVec
}

// New registers the relay collectors plus Go runtime and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rai",
			Name:      "upstream_requests_total",
			Help:      "Outbound provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rai",
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of outbound provider calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		analyzeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rai",
			Name:      "analyze_requests_total",
			Help:      "Analyze requests by route taken and outcome.",
		}, []string{"route", "outcome"}),
	}
	r.registry.MustRegister(
		r.upstreamTotal,
		r.upstreamDuration,
		r.analyzeTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) ObserveUpstream(provider, outcome string, elapsed time.Duration) {
	r.upstreamTotal.WithLabelValues(provider, outcome).Inc()
	r.upstreamDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveRoute(route, outcome string) {
	r.analyzeTotal.WithLabelValues(route, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
