// Package metrics exposes Prometheus counters for the backend transport and operation runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glorpus-work/vguard/pkg/model"
)

// Namespace prefixes every vguard metric.
const Namespace = "vguard"

// Metrics defines the observations vguard makes.
type Metrics interface {
	ObserveCall(method, status string, durationSeconds float64)
	ObserveRun(kind model.RunKind, success bool, durationSeconds float64)
}

// Noop implements Metrics without emitting anything.
type Noop struct{}

func (Noop) ObserveCall(string, string, float64)     {}
func (Noop) ObserveRun(model.RunKind, bool, float64) {}

// Prom implements Metrics backed by Prometheus collectors.
type Prom struct {
	calls        *prometheus.CounterVec
	callLatency  *prometheus.HistogramVec
	runs         *prometheus.CounterVec
	runDurations *prometheus.HistogramVec
	gatherer     prometheus.Gatherer
}

// NewProm registers the collectors with reg. A nil reg uses a fresh registry.
func NewProm(reg *prometheus.Registry) (*Prom, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	p := &Prom{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "backend_calls_total",
			Help:      "Backend calls by method and status",
		}, []string{"method", "status"}),
		callLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "backend_call_duration_seconds",
			Help:      "Backend call latency by method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Protect, switch and clean runs by outcome",
		}, []string{"kind", "status"}),
		runDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Run duration by kind",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"kind"}),
		gatherer: reg,
	}
	for _, c := range []prometheus.Collector{p.calls, p.callLatency, p.runs, p.runDurations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prom) ObserveCall(method, status string, durationSeconds float64) {
	p.calls.WithLabelValues(method, status).Inc()
	p.callLatency.WithLabelValues(method).Observe(durationSeconds)
}

func (p *Prom) ObserveRun(kind model.RunKind, success bool, durationSeconds float64) {
	status := "failed"
	if success {
		status = "succeeded"
	}
	p.runs.WithLabelValues(string(kind), status).Inc()
	p.runDurations.WithLabelValues(string(kind)).Observe(durationSeconds)
}

// Handler returns an HTTP handler serving the registry p was created with.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}
