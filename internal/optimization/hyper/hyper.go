// Package hyper implements a selection hyper-heuristic that delegates the
// search to low-level optimizers in budget chunks.
package hyper

import (
	"context"

	"go.uber.org/zap"

	"github.com/copyleftdev/hopbench/internal/optimization"
)

// Exploration is the probability of delegating to a uniformly drawn
// low-level heuristic instead of the best scored one.
const Exploration = 0.1

// Heuristic scores every low-level heuristic on llh_sample_runs chunks of
// llh_sample_budget evaluations, then repeatedly hands llh_budget chunks to
// the best scoring one. Scores are the fitness gained per evaluation,
// smoothed over the chunks run.
type Heuristic struct {
	optimization.Base
	logger *zap.Logger
}

// New returns a hyper-heuristic logging through logger.
func New(logger *zap.Logger) *Heuristic {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Heuristic{
		Base:   optimization.Base{Component: "hyper"},
		logger: logger.Named("hyper"),
	}
}

// PreProcessing checks the job carries low-level heuristics.
func (h *Heuristic) PreProcessing(ctx context.Context, job *optimization.JobSpec) error {
	if len(job.LowLevel) == 0 {
		return optimization.NewConfigurationError("optimizer %q has an empty low_level_selection_pool", job.OptimizerID).
			WithOperation("PreProcessing").WithComponent(h.Component)
	}
	return nil
}

func (h *Heuristic) Optimize(ctx context.Context, job *optimization.JobSpec) error {
	if err := h.Seed(job); err != nil {
		return err
	}

	llhs := job.LowLevel
	// Samples drawn by a low-level heuristic last for one run of the job.
	for _, llh := range llhs {
		llh.Job.Sample = nil
	}
	scores := make([]float64, len(llhs))
	chosen := make([]int, len(llhs))

	sampleBudget := max(job.LLHSampleBudget, 1)
	for r := 0; r < job.LLHSampleRuns; r++ {
		for i := range llhs {
			gain, spent, err := h.delegate(ctx, job, llhs[i], sampleBudget)
			if err != nil {
				return err
			}
			if spent > 0 {
				scores[i] = (scores[i]*float64(r) + gain/float64(spent)) / float64(r+1)
			}
		}
	}

	chunk := max(job.LLHBudget, 1)
	dead := make([]bool, len(llhs))
	live := len(llhs)
	for job.Budget > 0 && live > 0 {
		i := best(scores, dead)
		if job.Rand.Float64() < Exploration {
			i = pick(job, dead, live)
		}
		gain, spent, err := h.delegate(ctx, job, llhs[i], chunk)
		if err != nil {
			return err
		}
		chosen[i]++
		if spent == 0 {
			// A heuristic that cannot spend budget is never chosen again.
			dead[i] = true
			live--
			continue
		}
		scores[i] = 0.5*scores[i] + 0.5*gain/float64(spent)
	}

	for i, llh := range llhs {
		h.logger.Debug("low-level heuristic usage",
			zap.String("job", job.Key()),
			zap.String("llh", llh.ID),
			zap.Int("chunks", chosen[i]),
			zap.Float64("score", scores[i]))
	}
	return nil
}

// delegate runs llh for at most budget evaluations starting from the job's
// incumbent, charges what it spent to the job and offers its best back. The
// llh keeps its evaluated sample between chunks of the same run, and sample
// evaluations are added to the job's. It returns the fitness gained and the
// evaluations spent.
func (h *Heuristic) delegate(ctx context.Context, job *optimization.JobSpec, llh optimization.LowLevelHeuristic, budget int) (float64, int, error) {
	budget = min(budget, job.Budget)
	if budget <= 0 {
		return 0, 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	sub := llh.Job
	sub.Run = 0
	sub.BudgetTotal = budget
	sub.Budget = budget
	sub.ResetAccumulators()
	sample := sub.Sample
	sub.ResetRun()
	sub.Sample = sample
	sub.RunBest = job.RunBest

	before := job.RunBest.Fitness
	err := optimization.Run(ctx, llh.Optimizer, sub)

	spent := budget - sub.Budget
	job.Budget -= spent
	job.Evaluations += spent
	job.SampleEvaluations += sub.SampleEvaluations
	job.Improve(sub.RunBest)
	if err != nil {
		return 0, spent, optimization.WrapErrorf(err, "low-level heuristic %q", llh.ID).
			WithOperation("Optimize").WithComponent(h.Component)
	}
	return before - job.RunBest.Fitness, spent, nil
}

func best(scores []float64, dead []bool) int {
	idx := -1
	for i, s := range scores {
		if dead[i] {
			continue
		}
		if idx < 0 || s > scores[idx] {
			idx = i
		}
	}
	return idx
}

// pick draws uniformly among the live heuristics.
func pick(job *optimization.JobSpec, dead []bool, live int) int {
	k := job.Rand.Intn(live)
	for i := range dead {
		if dead[i] {
			continue
		}
		if k == 0 {
			return i
		}
		k--
	}
	return -1
}
