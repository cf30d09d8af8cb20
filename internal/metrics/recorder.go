package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder exposes rewrite metrics through Prometheus. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	reg               *prom.Registry
	transformResults  *prom.CounterVec
	transformDuration *prom.HistogramVec
	jobOutcomes       *prom.CounterVec
}

// NewRecorder constructs the metrics and registers them on reg, or on a
// fresh registry when reg is nil.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		reg: reg,
		transformResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pagerewrite",
			Name:      "transform_results_total",
			Help:      "Transform step executions by outcome",
		}, []string{"transform", "result"}),
		transformDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "pagerewrite",
			Name:      "transform_duration_seconds",
			Help:      "Duration of individual transform steps",
			Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
		}, []string{"transform"}),
		jobOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pagerewrite",
			Name:      "job_outcomes_total",
			Help:      "Rewrite jobs by final status",
		}, []string{"status"}),
	}
	reg.MustRegister(r.transformResults, r.transformDuration, r.jobOutcomes)
	return r
}

// ObserveTransform records one transform step.
func (r *Recorder) ObserveTransform(name, result string, d time.Duration) {
	if r == nil {
		return
	}
	r.transformResults.WithLabelValues(name, result).Inc()
	r.transformDuration.WithLabelValues(name).Observe(d.Seconds())
}

// IncJobOutcome records a finished job.
func (r *Recorder) IncJobOutcome(status string) {
	if r == nil {
		return
	}
	r.jobOutcomes.WithLabelValues(status).Inc()
}

// Handler serves the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
