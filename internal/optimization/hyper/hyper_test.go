package hyper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/hopbench/internal/optimization"
	"github.com/copyleftdev/hopbench/internal/optimization/annealing"
	"github.com/copyleftdev/hopbench/internal/optimization/genetic"
	"github.com/copyleftdev/hopbench/internal/strategy"
)

// idle never evaluates anything.
type idle struct{ optimization.Base }

func (idle) Optimize(context.Context, *optimization.JobSpec) error { return nil }

func lowLevel(t *testing.T, job *optimization.JobSpec, id string, o optimization.Optimizer, variator, crossover string) optimization.LowLevelHeuristic {
	t.Helper()
	sub := optimization.NewTestJob(job.Problem, job.BudgetBase, 0)
	sub.OptimizerID = id
	sub.Rand = job.Rand
	require.NoError(t, strategy.Bind(sub, variator, crossover))
	return optimization.LowLevelHeuristic{ID: id, Job: sub, Optimizer: o}
}

func TestHyperHeuristic(t *testing.T) {
	p := &optimization.SphereProblem{N: 2}
	job := optimization.NewTestJob(p, 200, 1)
	job.OptimizerID = "HH"
	job.LLHSampleRuns = 2
	job.LLHSampleBudget = 20
	job.LLHBudget = 40
	job.LowLevel = []optimization.LowLevelHeuristic{
		lowLevel(t, job, "SA", annealing.New(nil), "", ""),
		lowLevel(t, job, "GA", genetic.New(nil), "gaussian", "arithmetic"),
	}

	require.NoError(t, optimization.Run(context.Background(), New(nil), job))

	assert.Equal(t, 0, job.Budget)
	assert.Equal(t, job.BudgetTotal, job.Evaluations)
	assert.Equal(t, job.Evaluations, p.Calls)
	require.NotEmpty(t, job.RunFitnessTrend)
	for i := 1; i < len(job.RunFitnessTrend); i++ {
		assert.Less(t, job.RunFitnessTrend[i], job.RunFitnessTrend[i-1])
	}
	for _, llh := range job.LowLevel {
		assert.GreaterOrEqual(t, llh.Job.RunBest.Fitness, job.RunBest.Fitness)
	}
}

func TestHyperStopsWhenNoHeuristicSpends(t *testing.T) {
	p := &optimization.SphereProblem{N: 1}
	job := optimization.NewTestJob(p, 50, 1)
	job.LLHBudget = 10
	job.LowLevel = []optimization.LowLevelHeuristic{lowLevel(t, job, "IDLE", idle{}, "", "")}

	require.NoError(t, optimization.Run(context.Background(), New(nil), job))
	assert.Equal(t, 1, job.Evaluations, "only the seed is evaluated")
	assert.Equal(t, job.BudgetTotal-1, job.Budget)
}

func TestHyperRequiresPool(t *testing.T) {
	job := optimization.NewTestJob(&optimization.SphereProblem{N: 1}, 10, 1)
	err := optimization.Run(context.Background(), New(nil), job)
	assert.ErrorIs(t, err, optimization.ErrConfiguration)
	assert.Equal(t, job.BudgetTotal, job.Budget)
}

func TestHyperPropagatesLowLevelErrors(t *testing.T) {
	job := optimization.NewTestJob(&optimization.SphereProblem{N: 1}, 50, 1)
	job.LLHBudget = 10
	// GA without strategies fails as soon as it is delegated to.
	job.LowLevel = []optimization.LowLevelHeuristic{lowLevel(t, job, "GA", genetic.New(nil), "", "")}

	err := optimization.Run(context.Background(), New(nil), job)
	assert.ErrorIs(t, err, optimization.ErrUnboundStrategy)
}

func TestBestAndPick(t *testing.T) {
	assert.Equal(t, 1, best([]float64{0.1, 0.5, 0.2}, []bool{false, false, false}))
	assert.Equal(t, 2, best([]float64{0.1, 0.5, 0.2}, []bool{false, true, false}))

	job := optimization.NewTestJob(&optimization.SphereProblem{N: 1}, 1, 1)
	for i := 0; i < 20; i++ {
		assert.Equal(t, 1, pick(job, []bool{true, false, true}, 1))
	}
}

func TestHyperAccountsLowLevelSampling(t *testing.T) {
	p := &optimization.SphereProblem{N: 2}
	job := optimization.NewTestJob(p, 1000, 1)
	job.LLHSampleRuns = 2
	job.LLHSampleBudget = 100
	job.LLHBudget = 200

	sa := lowLevel(t, job, "SA", annealing.New(nil), "", "")
	sa.Job.InitialSample = true
	sa.Job.InitialSampleSize = 100
	job.LowLevel = []optimization.LowLevelHeuristic{sa}

	require.NoError(t, optimization.Run(context.Background(), New(nil), job))

	assert.Equal(t, job.BudgetTotal, job.Evaluations)
	assert.Equal(t, 100, job.SampleEvaluations, "the low-level sample is drawn once per run")
	assert.Equal(t, job.Evaluations+job.SampleEvaluations, p.Calls)

	job.ResetRun()
	job.Budget = job.BudgetTotal
	calls := p.Calls
	require.NoError(t, optimization.Run(context.Background(), New(nil), job))
	assert.Equal(t, 100, job.SampleEvaluations)
	assert.Equal(t, job.Evaluations+job.SampleEvaluations, p.Calls-calls)
}
