package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mdlinks"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	validations *prom.CounterVec
	duration    prom.Histogram
	diagnostics *prom.CounterVec
	queueDepth  prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	pr := &PrometheusRecorder{
		validations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "File validations by outcome",
		}, []string{"outcome"}),
		duration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Duration of a single file validation",
			Buckets:   prom.DefBuckets,
		}),
		diagnostics: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Diagnostics reported by kind and severity",
		}, []string{"kind", "severity"}),
		queueDepth: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Files waiting for validation",
		}),
	}
	reg.MustRegister(pr.validations, pr.duration, pr.diagnostics, pr.queueDepth)
	return pr
}

func (p *PrometheusRecorder) IncValidation(outcome Outcome) {
	if p == nil {
		return
	}
	p.validations.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveValidationDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.duration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddDiagnostics(kind, severity string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.diagnostics.WithLabelValues(kind, severity).Add(float64(n))
}

func (p *PrometheusRecorder) SetQueueDepth(n int) {
	if p == nil {
		return
	}
	p.queueDepth.Set(float64(n))
}

// HTTPHandler returns an http.Handler that serves the metrics of reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
