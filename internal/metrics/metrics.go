package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-sitekit/internal/diagnostics"
)

const namespace = "sitekit"

// Recorder collects resolution metrics on its own registry.
type Recorder struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	diagnostics *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Total number of finished resolution operations",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_failures_total",
			Help:      "Resolution operations that returned an error",
		}, []string{"operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_duration_seconds",
			Help:      "Duration of resolution operations",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"operation"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Diagnostics recorded during resolution, by kind",
		}, []string{"operation", "kind"}),
	}
	r.registry.MustRegister(r.resolutions, r.failures, r.duration, r.diagnostics)
	return r
}

// ObserveResolution records one finished operation.
func (r *Recorder) ObserveResolution(operation string, elapsed time.Duration, diags []diagnostics.Diagnostic, err error) {
	r.resolutions.WithLabelValues(operation).Inc()
	if err != nil {
		r.failures.WithLabelValues(operation).Inc()
	}
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
	for _, d := range diags {
		r.diagnostics.WithLabelValues(operation, string(d.Kind)).Inc()
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the metrics in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
