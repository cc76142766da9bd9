package optimization

import (
	"context"
	"math"
)

// Optimizer is the execution contract shared by every algorithm variant.
//
// Optimize must never evaluate a candidate when job.Budget <= 0, must record
// every improvement through job.Improve so that RunBest never worsens, and
// must leave the best candidate of the run in job.RunBest when it returns.
type Optimizer interface {
	// PreProcessing allocates algorithm specific scratch state for a run.
	PreProcessing(ctx context.Context, job *JobSpec) error

	// Optimize runs the core loop until the budget or the variant's own
	// termination predicate is exhausted.
	Optimize(ctx context.Context, job *JobSpec) error

	// PostProcessing releases or summarizes run state.
	PostProcessing(ctx context.Context, job *JobSpec) error
}

// Run executes one run of o against job: pre-processing, optimize,
// post-processing, stopping at the first error.
func Run(ctx context.Context, o Optimizer, job *JobSpec) error {
	if err := o.PreProcessing(ctx, job); err != nil {
		return err
	}
	if err := o.Optimize(ctx, job); err != nil {
		return err
	}
	return o.PostProcessing(ctx, job)
}

// Base provides the no-op processing hooks and the budget-respecting
// helpers every variant embeds.
type Base struct {
	// Component names the variant in errors.
	Component string
}

// PreProcessing implements Optimizer.
func (b Base) PreProcessing(ctx context.Context, job *JobSpec) error { return nil }

// PostProcessing implements Optimizer.
func (b Base) PostProcessing(ctx context.Context, job *JobSpec) error { return nil }

// Evaluate spends one unit of the job's budget on values and returns the
// evaluated candidate.
func (b Base) Evaluate(job *JobSpec, values []float64) (Candidate, error) {
	const op = "Evaluate"

	if job.Budget <= 0 {
		return Candidate{}, WrapErrorf(ErrBudgetExhausted, "job %s has budget %d", job.Key(), job.Budget).
			WithOperation(op).WithComponent(b.Component)
	}

	before := job.Budget
	fitness, remaining := job.Problem.Evaluate(values, before)
	if remaining != before-1 {
		return Candidate{}, WrapErrorf(ErrBudgetAccounting, "evaluator returned budget %d, want %d", remaining, before-1).
			WithOperation(op).WithComponent(b.Component)
	}
	job.Budget = remaining
	job.Evaluations++

	if math.IsNaN(fitness) {
		fitness = WorstFitness
	}
	return Candidate{Values: values, Fitness: fitness}, nil
}

// EvaluateSample evaluates values against the one-time sampling pool of
// job.InitialSampleSize evaluations. The main budget is not touched.
func (b Base) EvaluateSample(job *JobSpec, values []float64) (Candidate, error) {
	const op = "EvaluateSample"

	pool := job.InitialSampleSize - job.SampleEvaluations
	if pool <= 0 {
		return Candidate{}, WrapErrorf(ErrBudgetExhausted, "sampling pool of %d used up", job.InitialSampleSize).
			WithOperation(op).WithComponent(b.Component)
	}

	fitness, remaining := job.Problem.Evaluate(values, pool)
	if remaining != pool-1 {
		return Candidate{}, WrapErrorf(ErrBudgetAccounting, "evaluator returned budget %d, want %d", remaining, pool-1).
			WithOperation(op).WithComponent(b.Component)
	}
	job.SampleEvaluations++
	return Candidate{Values: values, Fitness: fitness}, nil
}

// Generator returns the generator bound for the job's problem type.
func (b Base) Generator(job *JobSpec) (GeneratorFunc, error) {
	gen := job.Generator()
	if gen == nil {
		name := "generator_cont"
		if job.ProblemType == Combinatorial {
			name = "generator_comb"
		}
		return nil, NewUnboundStrategyError(name, job.OptimizerID).WithComponent(b.Component)
	}
	return gen, nil
}

// Variator returns the job's variator.
func (b Base) Variator(job *JobSpec) (VariatorFunc, error) {
	if job.Strategies.Variator == nil {
		return nil, NewUnboundStrategyError("variator", job.OptimizerID).WithComponent(b.Component)
	}
	return job.Strategies.Variator, nil
}

// Crossover returns the job's crossover.
func (b Base) Crossover(job *JobSpec) (CrossoverFunc, error) {
	if job.Strategies.Crossover == nil {
		return nil, NewUnboundStrategyError("crossover", job.OptimizerID).WithComponent(b.Component)
	}
	return job.Strategies.Crossover, nil
}

// Generate draws a fresh candidate from the job's generator within the
// problem bounds and evaluates it.
func (b Base) Generate(job *JobSpec) (Candidate, error) {
	gen, err := b.Generator(job)
	if err != nil {
		return Candidate{}, err
	}
	return b.Evaluate(job, gen(job.Rand, job.ProblemBounds))
}

// Seed evaluates a first incumbent when the run has none yet. It is a no-op
// when RunBest is already set or no budget is left.
func (b Base) Seed(job *JobSpec) error {
	if job.RunBest.Evaluated() || job.Budget <= 0 {
		return nil
	}
	c, err := b.Generate(job)
	if err != nil {
		return err
	}
	job.Improve(c)
	return nil
}

// InitPopulation fills job.Population with up to size evaluated candidates,
// stopping early when the budget runs out. Every member is offered to
// job.Improve.
func (b Base) InitPopulation(ctx context.Context, job *JobSpec, size int) error {
	job.Population = make([]Candidate, 0, size)
	for len(job.Population) < size && job.Budget > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := b.Generate(job)
		if err != nil {
			return err
		}
		job.Population = append(job.Population, c)
		job.Improve(c)
	}
	return nil
}
