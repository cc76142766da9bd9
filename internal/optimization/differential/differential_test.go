package differential

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/hopbench/internal/optimization"
)

func TestDifferentialEvolution(t *testing.T) {
	p := &optimization.SphereProblem{N: 3}
	job := optimization.NewTestJob(p, 200, 1)
	job.MutationFactor = 0.6
	job.CrossoverRate = 0.8

	require.NoError(t, optimization.Run(context.Background(), New(nil), job))

	assert.Equal(t, 0, job.Budget)
	assert.Equal(t, job.BudgetTotal, job.Evaluations)
	assert.Equal(t, job.Evaluations, p.Calls)
	for i := 1; i < len(job.RunFitnessTrend); i++ {
		assert.Less(t, job.RunFitnessTrend[i], job.RunFitnessTrend[i-1])
	}
	assert.Less(t, job.RunBest.Fitness, job.RunFitnessTrend[0])
	for _, c := range job.Population {
		for _, x := range c.Values {
			assert.True(t, x >= -5.12 && x <= 5.12)
		}
	}
}

func TestDifferentialSmallBudget(t *testing.T) {
	// The budget runs out before a population of four exists.
	job := optimization.NewTestJob(&optimization.SphereProblem{N: 1}, 3, 1)
	require.NoError(t, optimization.Run(context.Background(), New(nil), job))
	assert.Equal(t, 0, job.Budget)
	assert.Len(t, job.Population, 3)
}

func TestDistinct(t *testing.T) {
	job := optimization.NewTestJob(&optimization.SphereProblem{N: 1}, 1, 5)
	for i := 0; i < 100; i++ {
		target := i % 4
		r1, r2, r3 := distinct(job, 4, target)
		seen := map[int]bool{target: true}
		for _, r := range []int{r1, r2, r3} {
			assert.False(t, seen[r])
			seen[r] = true
		}
	}
}
