// Package problem implements the benchmark problems optimizers are run
// against and the registry the orchestrator resolves problem classes from.
package problem

import (
	"math/rand"
	"sort"

	"github.com/copyleftdev/hopbench/internal/optimization"
)

// Spec is the resolved configuration one problem instance is built from.
type Spec struct {
	ID string

	// N is the configured dimension. Problems whose dimension follows from
	// the benchmark instance ignore it.
	N int

	// Bounds are the configured bounds, nil when the problem's defaults
	// apply. UpperIsN marks an upper bound of "nmax".
	Bounds   *optimization.Bounds
	UpperIsN bool

	// Benchmark is nil for problems run without one.
	Benchmark *Benchmark
}

// Benchmark describes one benchmark instance of a problem.
type Benchmark struct {
	ID              string
	Jobs            int
	Machines        int
	TimeSeed        int64
	ProcessingTimes [][]int

	// LB and UB are the known bounds of the instance, zero when unknown.
	LB float64
	UB float64
}

// Factory builds a problem instance from its resolved configuration.
type Factory func(spec Spec) (optimization.Problem, error)

var registry = map[string]Factory{
	"RASTRIGIN": NewRastrigin,
	"FSSP":      NewFlowShop,
}

// Lookup returns the factory registered for class.
func Lookup(class string) (Factory, bool) {
	f, ok := registry[class]
	return f, ok
}

// Classes returns the registered problem classes in order.
func Classes() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func resolveBounds(spec Spec, n int, def optimization.Bounds) (optimization.Bounds, error) {
	b := def
	if spec.Bounds != nil {
		b = *spec.Bounds
	}
	if spec.UpperIsN {
		b.Upper = float64(n)
	}
	if b.Lower > b.Upper {
		return b, optimization.NewConfigurationError("problem %q: lower bound %v above upper bound %v", spec.ID, b.Lower, b.Upper)
	}
	return b, nil
}

func uniform(n int) optimization.GeneratorFunc {
	return func(rng *rand.Rand, b optimization.Bounds) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = b.Lower + rng.Float64()*b.Width()
		}
		return out
	}
}
