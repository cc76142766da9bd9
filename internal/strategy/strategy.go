// Package strategy holds the named variators and crossovers optimizers can
// be configured with. Names are resolved once, when jobs are built.
package strategy

import (
	"sort"

	"github.com/copyleftdev/hopbench/internal/optimization"
)

// VariatorFactory binds a variator to the job it will run in.
type VariatorFactory func(job *optimization.JobSpec) (optimization.VariatorFunc, error)

// CrossoverFactory binds a crossover to the job it will run in.
type CrossoverFactory func(job *optimization.JobSpec) (optimization.CrossoverFunc, error)

var variators = map[string]VariatorFactory{
	"swap":     func(*optimization.JobSpec) (optimization.VariatorFunc, error) { return Swap, nil },
	"insert":   func(*optimization.JobSpec) (optimization.VariatorFunc, error) { return Insert, nil },
	"gaussian": newGaussian,
	"bit_flip": newBitFlip,
}

var crossovers = map[string]CrossoverFactory{
	"ox":         func(*optimization.JobSpec) (optimization.CrossoverFunc, error) { return OrderCrossover, nil },
	"uniform":    func(*optimization.JobSpec) (optimization.CrossoverFunc, error) { return UniformCrossover, nil },
	"one_point":  func(*optimization.JobSpec) (optimization.CrossoverFunc, error) { return OnePointCrossover, nil },
	"arithmetic": newArithmetic,
}

// LookupVariator returns the variator factory registered under name.
func LookupVariator(name string) (VariatorFactory, bool) {
	f, ok := variators[name]
	return f, ok
}

// LookupCrossover returns the crossover factory registered under name.
func LookupCrossover(name string) (CrossoverFactory, bool) {
	f, ok := crossovers[name]
	return f, ok
}

// Variators lists the registered variator names.
func Variators() []string { return keys(variators) }

// Crossovers lists the registered crossover names.
func Crossovers() []string { return keys(crossovers) }

func keys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Bind resolves the named variator and crossover for job. Empty names are
// left unbound; unknown names are configuration errors.
func Bind(job *optimization.JobSpec, variator, crossover string) error {
	if variator != "" {
		f, ok := LookupVariator(variator)
		if !ok {
			return optimization.NewConfigurationError("optimizer %q: unknown variator %q (known: %v)", job.OptimizerID, variator, Variators())
		}
		v, err := f(job)
		if err != nil {
			return err
		}
		job.Strategies.Variator = v
		job.Strategies.VariatorName = variator
	}
	if crossover != "" {
		f, ok := LookupCrossover(crossover)
		if !ok {
			return optimization.NewConfigurationError("optimizer %q: unknown crossover %q (known: %v)", job.OptimizerID, crossover, Crossovers())
		}
		c, err := f(job)
		if err != nil {
			return err
		}
		job.Strategies.Crossover = c
		job.Strategies.CrossoverName = crossover
	}
	return nil
}
