// Package orchestrator turns the benchmark definition documents into jobs,
// executes them and summarizes the results.
package orchestrator

import (
	"io"

	"go.uber.org/zap"

	"github.com/copyleftdev/hopbench/internal/config"
	"github.com/copyleftdev/hopbench/internal/logging"
	"github.com/copyleftdev/hopbench/internal/metrics"
	"github.com/copyleftdev/hopbench/internal/report"
)

// Orchestrator builds and executes the jobs of one benchmark execution.
type Orchestrator struct {
	docs *config.Documents

	seed        int64
	workers     int
	resultsPath string

	logger   *logging.Logger
	zap      *zap.Logger
	reporter *report.Reporter
	metrics  *metrics.Metrics
	sink     StatusSink
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSeed sets the base seed job random sources are derived from.
func WithSeed(seed int64) Option {
	return func(o *Orchestrator) { o.seed = seed }
}

// WithWorkers sets how many jobs execute in parallel.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithResultsPath sets the directory reports are written to. Without it
// nothing is written.
func WithResultsPath(path string) Option {
	return func(o *Orchestrator) { o.resultsPath = path }
}

// WithMetrics records run metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithStatusSink publishes job status snapshots to s.
func WithStatusSink(s StatusSink) Option {
	return func(o *Orchestrator) { o.sink = s }
}

// New returns an orchestrator over docs. Optimizers log through a zap
// bridge to logger.
func New(docs *config.Documents, logger *logging.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = logging.New(logging.InfoLevel, io.Discard)
	}
	o := &Orchestrator{
		docs:     docs,
		workers:  1,
		logger:   logger.WithField("component", "orchestrator"),
		zap:      logging.NewZapLogger(logger),
		reporter: report.New(logger),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
