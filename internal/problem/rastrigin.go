package problem

import (
	"math"

	"github.com/copyleftdev/hopbench/internal/optimization"
)

// Rastrigin is the continuous Rastrigin function,
// f(x) = Σ x_i² − 10·cos(2π·x_i) + 10, with its global minimum f(0) = 0.
type Rastrigin struct {
	id     string
	n      int
	bounds optimization.Bounds
}

// NewRastrigin builds a Rastrigin problem of dimension spec.N (1 when unset)
// over [-5.12, 5.12] unless bounds are configured.
func NewRastrigin(spec Spec) (optimization.Problem, error) {
	n := spec.N
	if n <= 0 {
		n = 1
	}
	b, err := resolveBounds(spec, n, optimization.Bounds{Lower: -5.12, Upper: 5.12})
	if err != nil {
		return nil, err
	}
	id := spec.ID
	if id == "" {
		id = "RASTRIGIN"
	}
	return &Rastrigin{id: id, n: n, bounds: b}, nil
}

func (r *Rastrigin) ID() string                     { return r.id }
func (r *Rastrigin) Dimension() int                 { return r.n }
func (r *Rastrigin) Type() optimization.ProblemType { return optimization.Continuous }
func (r *Rastrigin) Bounds() optimization.Bounds    { return r.bounds }

func (r *Rastrigin) PreProcessing(*optimization.JobSpec) error { return nil }

func (r *Rastrigin) PostProcessing(*optimization.JobSpec, optimization.ReportWriter) error {
	return nil
}

// Evaluate returns the Rastrigin value of values and budget-1.
func (r *Rastrigin) Evaluate(values []float64, budget int) (float64, int) {
	sum := 0.0
	for _, x := range values {
		sum += x*x - 10*math.Cos(2*math.Pi*x) + 10
	}
	return sum, budget - 1
}

// Generator supports "random": uniform within the bounds.
func (r *Rastrigin) Generator(name string) (optimization.GeneratorFunc, bool) {
	if name != "random" {
		return nil, false
	}
	return uniform(r.n), true
}
