package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobKey(t *testing.T) {
	job := &JobSpec{ProblemID: "FSSP", OptimizerID: "SA", BenchmarkID: "ta001"}
	assert.Equal(t, "FSSP/SA/ta001", job.Key())
}

func TestImproveIsMonotonic(t *testing.T) {
	job := NewTestJob(&SphereProblem{N: 1}, 10, 1)

	fitnesses := []float64{5, 7, 3, 3, 4, 1}
	want := []bool{true, false, true, false, false, true}
	for i, f := range fitnesses {
		job.Budget--
		got := job.Improve(Candidate{Values: []float64{f}, Fitness: f})
		assert.Equal(t, want[i], got, "fitness %v", f)
	}

	assert.Equal(t, []float64{5, 3, 1}, job.RunFitnessTrend)
	assert.Equal(t, 1.0, job.RunBest.Fitness)
	assert.Equal(t, 3, job.ImprovementCount)
	assert.Equal(t, 6, job.IterLastImprovement[0])
	for i := 1; i < len(job.RunFitnessTrend); i++ {
		assert.Less(t, job.RunFitnessTrend[i], job.RunFitnessTrend[i-1])
	}
}

func TestRecordRunKeepsGlobalBest(t *testing.T) {
	job := NewTestJob(&SphereProblem{N: 1}, 10, 1)
	job.RunsPerOptimizer = 3
	job.ResetAccumulators()

	for run, f := range []float64{4, 2, 3} {
		job.Run = run
		job.ResetRun()
		job.Improve(Candidate{Values: []float64{f}, Fitness: f})
		job.RecordRun()
	}

	assert.Equal(t, 2.0, job.GlobalBest.Fitness)
	assert.Equal(t, []float64{4, 2, 3}, job.GlobalFitnessTrend)
	for _, f := range job.GlobalFitnessTrend {
		assert.LessOrEqual(t, job.GlobalBest.Fitness, f)
	}
}

func TestSnapshotRestore(t *testing.T) {
	job := NewTestJob(&SphereProblem{N: 1}, 10, 1)
	job.Improve(Candidate{Values: []float64{1}, Fitness: 1})
	job.RecordRun()
	snap := job.Snapshot()

	job.Budget = 0
	job.Improve(Candidate{Values: []float64{0}, Fitness: 0})
	job.RecordRun()
	job.IterLastImprovement[0] = 99
	job.Benchmark.LBDiffPct = 12

	job.Restore(snap)
	require.Len(t, job.GlobalFitnessTrend, 1)
	assert.Equal(t, 1.0, job.GlobalBest.Fitness)
	assert.Equal(t, job.BudgetTotal, job.Budget)
	assert.Equal(t, 1, job.ImprovementCount)
	assert.Equal(t, 0, job.IterLastImprovement[0])
	assert.Zero(t, job.Benchmark.LBDiffPct)
}

func TestParamBounds(t *testing.T) {
	job := &JobSpec{}
	def := Bounds{Lower: -1, Upper: 1}
	assert.Equal(t, def, job.ParamBounds(def))

	job.OptimizerBounds = &Bounds{Lower: 0, Upper: 4}
	assert.Equal(t, Bounds{Lower: 0, Upper: 4}, job.ParamBounds(def))
}

func TestRunnable(t *testing.T) {
	tests := []struct {
		name string
		job  JobSpec
		want bool
	}{
		{"enabled", JobSpec{ProblemEnabled: true, OptimizerEnabled: true}, true},
		{"problem disabled", JobSpec{OptimizerEnabled: true}, false},
		{"optimizer disabled", JobSpec{ProblemEnabled: true}, false},
		{"failed", JobSpec{ProblemEnabled: true, OptimizerEnabled: true, Err: ErrConfiguration}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.job.Runnable())
		})
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	b := Bounds{Lower: -5.12, Upper: 5.12}

	bits := FloatToBinary([]float64{-5.12, 5.12, 0}, 16, b)
	require.Len(t, bits, 3)
	assert.Equal(t, make([]uint8, 16), bits[0])
	for _, bit := range bits[1] {
		assert.Equal(t, uint8(1), bit)
	}

	back := BinaryToFloat(bits, b)
	assert.InDelta(t, -5.12, back[0], 1e-9)
	assert.InDelta(t, 5.12, back[1], 1e-9)
	assert.InDelta(t, 0, back[2], b.Width()/65535)
}

func TestBinaryToFloatMSBFirst(t *testing.T) {
	got := BinaryToFloat([][]uint8{{1, 0}, {0, 1}}, Bounds{Lower: 0, Upper: 3})
	assert.Equal(t, []float64{2, 1}, got)
}
