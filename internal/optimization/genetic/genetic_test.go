package genetic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/hopbench/internal/optimization"
	"github.com/copyleftdev/hopbench/internal/problem"
	"github.com/copyleftdev/hopbench/internal/strategy"
)

func assertContract(t *testing.T, job *optimization.JobSpec) {
	t.Helper()
	assert.Equal(t, 0, job.Budget)
	assert.Equal(t, job.BudgetTotal-job.Budget, job.Evaluations)
	require.NotEmpty(t, job.RunFitnessTrend)
	for i := 1; i < len(job.RunFitnessTrend); i++ {
		assert.Less(t, job.RunFitnessTrend[i], job.RunFitnessTrend[i-1])
	}
	assert.Equal(t, job.RunFitnessTrend[len(job.RunFitnessTrend)-1], job.RunBest.Fitness)
}

func TestGeneticContinuous(t *testing.T) {
	p := &optimization.SphereProblem{N: 3}
	job := optimization.NewTestJob(p, 100, 1)
	require.NoError(t, strategy.Bind(job, "gaussian", "arithmetic"))

	require.NoError(t, optimization.Run(context.Background(), New(nil), job))
	assertContract(t, job)
	assert.Equal(t, job.Evaluations, p.Calls)
	assert.Len(t, job.Population, job.InitialPopSize)
	assert.Less(t, job.RunBest.Fitness, job.RunFitnessTrend[0])
}

func TestGeneticPermutations(t *testing.T) {
	fssp, err := problem.NewFlowShop(problem.Spec{
		Benchmark: &problem.Benchmark{ID: "ta001", Jobs: 20, Machines: 5, TimeSeed: 873654221},
	})
	require.NoError(t, err)
	job := optimization.NewTestJob(fssp, 10, 2)
	job.ParentSimilarityThreshold = 0.8
	require.NoError(t, strategy.Bind(job, "swap", "ox"))

	require.NoError(t, optimization.Run(context.Background(), New(nil), job))
	assertContract(t, job)
	for _, c := range job.Population {
		assert.Len(t, c.Values, 20)
	}
}

func TestGeneticRequiresStrategies(t *testing.T) {
	job := optimization.NewTestJob(&optimization.SphereProblem{N: 1}, 10, 1)
	require.NoError(t, strategy.Bind(job, "gaussian", ""))

	err := optimization.Run(context.Background(), New(nil), job)
	assert.ErrorIs(t, err, optimization.ErrUnboundStrategy)
	assert.Equal(t, job.BudgetTotal, job.Budget, "nothing is evaluated before strategies resolve")
}

func TestGeneticIsReproducible(t *testing.T) {
	run := func() float64 {
		job := optimization.NewTestJob(&optimization.SphereProblem{N: 2}, 50, 11)
		require.NoError(t, strategy.Bind(job, "gaussian", "uniform"))
		require.NoError(t, optimization.Run(context.Background(), New(nil), job))
		return job.RunBest.Fitness
	}
	assert.Equal(t, run(), run())
}
