package optimization

import (
	"fmt"
	"math/rand"
)

// SphereProblem is a continuous test problem, f(x) = sum of x^2, that
// counts evaluator calls and panics when called without budget.
type SphereProblem struct {
	N     int
	Calls int

	// Fitness, when set, replaces the sphere function.
	Fitness func(values []float64) float64
}

func (p *SphereProblem) ID() string        { return "SPHERE" }
func (p *SphereProblem) Dimension() int    { return p.N }
func (p *SphereProblem) Type() ProblemType { return Continuous }
func (p *SphereProblem) Bounds() Bounds {
	return Bounds{Lower: -5.12, Upper: 5.12}
}

func (p *SphereProblem) Evaluate(values []float64, budget int) (float64, int) {
	if budget <= 0 {
		panic(fmt.Sprintf("evaluator called with budget %d", budget))
	}
	p.Calls++
	if p.Fitness != nil {
		return p.Fitness(values), budget - 1
	}
	sum := 0.0
	for _, v := range values {
		sum += v * v
	}
	return sum, budget - 1
}

func (p *SphereProblem) Generator(name string) (GeneratorFunc, bool) {
	if name != "random" {
		return nil, false
	}
	return func(rng *rand.Rand, b Bounds) []float64 {
		out := make([]float64, p.N)
		for i := range out {
			out[i] = b.Lower + rng.Float64()*b.Width()
		}
		return out
	}, true
}

func (p *SphereProblem) PreProcessing(job *JobSpec) error                  { return nil }
func (p *SphereProblem) PostProcessing(job *JobSpec, w ReportWriter) error { return nil }

// NewTestJob returns a runnable single-run job over problem with
// budget = n × base, the problem's random generator bound and a seeded
// random source.
func NewTestJob(problem Problem, base int, seed int64) *JobSpec {
	job := &JobSpec{
		ProblemID:        problem.ID(),
		OptimizerID:      "TEST",
		BenchmarkID:      NoBenchmark,
		ProblemType:      problem.Type(),
		ProblemEnabled:   true,
		OptimizerEnabled: true,
		RunsPerOptimizer: 1,
		BudgetBase:       base,
		BudgetTotal:      problem.Dimension() * base,
		ProblemBounds:    problem.Bounds(),
		InitialPopSize:   problem.Dimension() * 3,
		CoolingRate:      0.99,
		TempThreshold:    1,
		InitialTemp:      100,
		Problem:          problem,
		Rand:             rand.New(rand.NewSource(seed)),
	}
	job.Budget = job.BudgetTotal
	if problem.Type() == Combinatorial {
		job.InitialPopSize = problem.Dimension() * 2
	}
	if gen, ok := problem.Generator("random"); ok {
		if problem.Type() == Combinatorial {
			job.Strategies.GeneratorComb = gen
		} else {
			job.Strategies.GeneratorCont = gen
		}
	}
	job.ResetAccumulators()
	job.ResetRun()
	return job
}
