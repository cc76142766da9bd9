package annealing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/copyleftdev/hopbench/internal/optimization"
	"github.com/copyleftdev/hopbench/internal/problem"
)

// scriptedSphere returns the scripted fitnesses first, then the sphere
// function.
func scriptedSphere(n int, script []float64) *optimization.SphereProblem {
	p := &optimization.SphereProblem{N: n}
	p.Fitness = func(values []float64) float64 {
		if p.Calls <= len(script) {
			return script[p.Calls-1]
		}
		sum := 0.0
		for _, v := range values {
			sum += v * v
		}
		return sum
	}
	return p
}

func TestSampledTemperatureScenario(t *testing.T) {
	p := scriptedSphere(2, []float64{0.5, 3.2, 12.3, 7.7, 1.1})
	job := optimization.NewTestJob(p, 50, 42)
	require.Equal(t, 100, job.BudgetTotal)
	job.InitialSample = true
	job.InitialSampleSize = 5

	a := New(zaptest.NewLogger(t))
	require.NoError(t, optimization.Run(context.Background(), a, job))

	assert.Equal(t, 11.0, a.InitialTemp())
	assert.Equal(t, 5, job.SampleEvaluations)
	assert.True(t, job.Budget == 0 || a.Temperature() <= 1)
	assert.Equal(t, 0, job.Budget, "100 steps cannot cool 11 down to 1")
	assert.Equal(t, job.BudgetTotal-job.Budget, job.Evaluations)
	assert.Equal(t, job.Evaluations+job.SampleEvaluations, p.Calls)
	assert.Equal(t, Done, a.State())
}

func TestTerminatesOnTemperature(t *testing.T) {
	p := &optimization.SphereProblem{N: 2}
	job := optimization.NewTestJob(p, 1000, 1)
	job.InitialTemp = 2
	job.CoolingRate = 0.5

	a := New(nil)
	require.NoError(t, optimization.Run(context.Background(), a, job))

	assert.LessOrEqual(t, a.Temperature(), 1.0)
	assert.Greater(t, job.Budget, 0)
	assert.Equal(t, 2, job.Evaluations, "seed plus one step at temperature 2")
	assert.Equal(t, job.BudgetTotal-job.Budget, job.Evaluations)
}

func TestReheatSpendsRemainingBudget(t *testing.T) {
	p := &optimization.SphereProblem{N: 2}
	job := optimization.NewTestJob(p, 1000, 1)
	job.InitialTemp = 2
	job.CoolingRate = 0.5
	job.Reheat = true

	a := New(nil)
	require.NoError(t, optimization.Run(context.Background(), a, job))
	assert.Equal(t, 3, job.Evaluations, "one reheat doubles the steps")
}

func TestRunBestIsMonotonic(t *testing.T) {
	p := &optimization.SphereProblem{N: 3}
	job := optimization.NewTestJob(p, 200, 7)

	a := New(nil)
	require.NoError(t, optimization.Run(context.Background(), a, job))

	require.NotEmpty(t, job.RunFitnessTrend)
	for i := 1; i < len(job.RunFitnessTrend); i++ {
		assert.Less(t, job.RunFitnessTrend[i], job.RunFitnessTrend[i-1])
	}
	assert.Equal(t, job.RunFitnessTrend[len(job.RunFitnessTrend)-1], job.RunBest.Fitness)
	assert.Equal(t, 0, job.Budget)
}

func TestNeverEvaluatesWithoutBudget(t *testing.T) {
	// SphereProblem panics when evaluated at budget 0.
	p := &optimization.SphereProblem{N: 1}
	job := optimization.NewTestJob(p, 3, 1)

	a := New(nil)
	require.NotPanics(t, func() {
		require.NoError(t, optimization.Run(context.Background(), a, job))
	})
	assert.Equal(t, 3, p.Calls)
	assert.Equal(t, 0, job.Budget)

	job.ResetRun()
	require.NoError(t, optimization.Run(context.Background(), a, job))
	assert.Equal(t, 3, p.Calls, "a spent budget allows no evaluation")
}

func TestCombinatorialUsesSwapNeighbourhood(t *testing.T) {
	fssp, err := problem.NewFlowShop(problem.Spec{
		ID:        "FSSP",
		Benchmark: &problem.Benchmark{ID: "ta001", Jobs: 20, Machines: 5, TimeSeed: 873654221},
	})
	require.NoError(t, err)
	job := optimization.NewTestJob(fssp, 10, 3)

	a := New(nil)
	require.NoError(t, optimization.Run(context.Background(), a, job))

	assert.Equal(t, 0, job.Budget)
	assert.Len(t, job.RunBest.Values, 20)
	assert.GreaterOrEqual(t, job.RunBest.Fitness, 1232.0)
}

func TestSamplingRequiresSize(t *testing.T) {
	job := optimization.NewTestJob(&optimization.SphereProblem{N: 1}, 10, 1)
	job.InitialSample = true

	err := New(nil).PreProcessing(context.Background(), job)
	assert.ErrorIs(t, err, optimization.ErrConfiguration)
}

func TestUnboundGenerator(t *testing.T) {
	job := optimization.NewTestJob(&optimization.SphereProblem{N: 1}, 10, 1)
	job.Strategies = optimization.Strategies{}

	err := optimization.Run(context.Background(), New(nil), job)
	assert.ErrorIs(t, err, optimization.ErrUnboundStrategy)
}

func TestInitialTemperature(t *testing.T) {
	tests := []struct {
		name   string
		sample []optimization.Candidate
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []optimization.Candidate{{Values: []float64{0}, Fitness: 3}}, 0},
		{"truncated spread", []optimization.Candidate{
			{Values: []float64{0}, Fitness: 0.5},
			{Values: []float64{0}, Fitness: 12.3},
		}, 11},
		{"unevaluated ignored", []optimization.Candidate{
			{Values: []float64{0}, Fitness: 2},
			optimization.NewCandidate([]float64{0}),
		}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitialTemperature(tt.sample))
		})
	}
}

func TestAcceptance(t *testing.T) {
	assert.Equal(t, 1.0, Acceptance(5, 10), "improvements are capped at 1")
	assert.InDelta(t, math.Exp(-0.5), Acceptance(-5, 10), 1e-12)
	assert.Zero(t, Acceptance(-5, 0))
	assert.Zero(t, Acceptance(math.NaN(), 1))
	assert.GreaterOrEqual(t, Acceptance(-1e308, 1e-300), 0.0)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "sampling", Sampling.String())
	assert.Equal(t, "annealing", Annealing.String())
	assert.Equal(t, "done", Done.String())
}

func TestEvaluatedSampleIsReused(t *testing.T) {
	p := scriptedSphere(2, []float64{0.5, 3.2, 12.3, 7.7, 1.1})
	job := optimization.NewTestJob(p, 50, 42)
	job.InitialSample = true
	job.InitialSampleSize = 5

	a := New(nil)
	require.NoError(t, optimization.Run(context.Background(), a, job))
	require.Equal(t, 5, p.Calls-job.Evaluations)

	calls := p.Calls
	job.Budget = job.BudgetTotal
	job.Evaluations = 0
	job.SampleEvaluations = 0
	require.NoError(t, optimization.Run(context.Background(), a, job))

	assert.Equal(t, 11.0, a.InitialTemp())
	assert.Zero(t, job.SampleEvaluations)
	assert.Equal(t, calls+job.Evaluations, p.Calls, "the kept sample is not evaluated again")

	job.ResetRun()
	job.Budget = job.BudgetTotal
	require.NoError(t, optimization.Run(context.Background(), a, job))
	assert.Equal(t, 5, job.SampleEvaluations, "a new run draws a new sample")
}
