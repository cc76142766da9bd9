package orchestrator

import (
	"sort"

	"go.uber.org/zap"

	"github.com/copyleftdev/hopbench/internal/optimization"
	"github.com/copyleftdev/hopbench/internal/optimization/annealing"
	"github.com/copyleftdev/hopbench/internal/optimization/differential"
	"github.com/copyleftdev/hopbench/internal/optimization/evolution"
	"github.com/copyleftdev/hopbench/internal/optimization/genetic"
	"github.com/copyleftdev/hopbench/internal/optimization/hyper"
	"github.com/copyleftdev/hopbench/internal/optimization/swarm"
)

// HyperHeuristic is the optimizer class that delegates to a pool of
// low-level heuristics.
const HyperHeuristic = "HH"

// OptimizerFactory builds a fresh optimizer for one job.
type OptimizerFactory func(logger *zap.Logger) optimization.Optimizer

var optimizers = map[string]OptimizerFactory{
	"SA":           func(l *zap.Logger) optimization.Optimizer { return annealing.New(l) },
	"GA":           func(l *zap.Logger) optimization.Optimizer { return genetic.New(l) },
	"PSO":          func(l *zap.Logger) optimization.Optimizer { return swarm.New(l) },
	"DEA":          func(l *zap.Logger) optimization.Optimizer { return differential.New(l) },
	"ES":           func(l *zap.Logger) optimization.Optimizer { return evolution.New(l) },
	HyperHeuristic: func(l *zap.Logger) optimization.Optimizer { return hyper.New(l) },
}

// LookupOptimizer returns the factory registered for class.
func LookupOptimizer(class string) (OptimizerFactory, bool) {
	f, ok := optimizers[class]
	return f, ok
}

// OptimizerClasses returns the registered optimizer classes in order.
func OptimizerClasses() []string {
	out := make([]string, 0, len(optimizers))
	for k := range optimizers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
