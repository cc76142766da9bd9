// Package metrics exposes the benchmark's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hopbench"

// Metrics groups the collectors updated by the orchestrator. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	evaluations  *prometheus.CounterVec
	runs         *prometheus.CounterVec
	failures     *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	globalBest   *prometheus.GaugeVec
	jobsInFlight prometheus.Gauge
}

// New registers the collectors on a fresh registry together with the Go
// and process collectors.
func New() *Metrics {
	labels := []string{"problem", "optimizer", "benchmark"}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Evaluator calls charged to the main budget.",
		}, labels),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed optimizer runs.",
		}, labels),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_failures_total",
			Help:      "Jobs that failed to build or run.",
		}, labels),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of one optimizer run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, labels),
		globalBest: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "global_best_fitness",
			Help:      "Best fitness found by a job across its runs.",
		}, labels),
		jobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_in_flight",
			Help:      "Jobs currently executing.",
		}),
	}
	m.registry.MustRegister(
		m.evaluations,
		m.runs,
		m.failures,
		m.runDuration,
		m.globalBest,
		m.jobsInFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRun records one finished run.
func (m *Metrics) ObserveRun(problem, optimizer, benchmark string, evaluations int, d time.Duration) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(problem, optimizer, benchmark).Add(float64(evaluations))
	m.runs.WithLabelValues(problem, optimizer, benchmark).Inc()
	m.runDuration.WithLabelValues(problem, optimizer, benchmark).Observe(d.Seconds())
}

// SetGlobalBest records a job's best fitness.
func (m *Metrics) SetGlobalBest(problem, optimizer, benchmark string, fitness float64) {
	if m == nil {
		return
	}
	m.globalBest.WithLabelValues(problem, optimizer, benchmark).Set(fitness)
}

// JobFailed counts a failed job.
func (m *Metrics) JobFailed(problem, optimizer, benchmark string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(problem, optimizer, benchmark).Inc()
}

// JobStarted and JobFinished track the jobs in flight.
func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.jobsInFlight.Inc()
}

func (m *Metrics) JobFinished() {
	if m == nil {
		return
	}
	m.jobsInFlight.Dec()
}
