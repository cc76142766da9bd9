package optimization

import (
	"fmt"
	"math/rand"
	"time"
)

// NoBenchmark is the synthetic benchmark id of problems that define none.
const NoBenchmark = "n/a"

// LowLevelHeuristic is an optimizer a hyper-heuristic may delegate to,
// together with the private job it runs against.
type LowLevelHeuristic struct {
	ID        string
	Job       *JobSpec
	Optimizer Optimizer
}

// BenchmarkBounds holds the known bounds of a benchmark instance and the
// percentage gap of the job's global best to each.
type BenchmarkBounds struct {
	Known     bool
	LB        float64
	UB        float64
	LBDiffPct float64
	UBDiffPct float64
}

// JobSpec is the configuration and mutable state of one
// (problem, optimizer, benchmark) combination across all of its runs.
type JobSpec struct {
	// Identity
	ProblemID        string
	OptimizerID      string
	BenchmarkID      string
	ProblemType      ProblemType
	ProblemDesc      string
	OptimizerType    string
	OptimizerDesc    string
	OptimizerClass   string
	ProblemEnabled   bool
	OptimizerEnabled bool
	ResultsPath      string

	// Budget
	RunsPerOptimizer int
	BudgetBase       int
	Budget           int
	BudgetTotal      int
	BitComputing     int

	// Bounds
	ProblemBounds   Bounds
	OptimizerBounds *Bounds
	Benchmark       BenchmarkBounds

	// Sampling
	InitialSample     bool
	InitialSampleSize int

	// Population
	InitialPopSize            int
	NumberParents             int
	NumberChildren            int
	ParentSimilarityThreshold float64

	// Annealing
	InitialTemp   float64
	CoolingRate   float64
	TempThreshold float64
	Reheat        bool

	// Swarm, differential evolution and evolution strategy coefficients
	InertiaCoeff   float64
	LocalCoeff     float64
	GlobalCoeff    float64
	Decay          bool
	DecayCoeff     float64
	MutationFactor float64
	CrossoverRate  float64

	// Hyper-heuristic
	LowLevelSelectionPool []string
	LLHSampleRuns         int
	LLHSampleBudget       int
	LLHBudget             int
	LowLevel              []LowLevelHeuristic

	// Bindings
	Problem    Problem
	Optimizer  Optimizer
	Strategies Strategies
	Rand       *rand.Rand

	// Per-run transient state
	Run               int
	RunBest           Candidate
	RunFitnessTrend   []float64
	Population        []Candidate
	Sample            []Candidate
	Evaluations       int
	SampleEvaluations int

	// Cross-run accumulators
	GlobalBest          Candidate
	GlobalFitnessTrend  []float64
	IterLastImprovement []int
	ImprovementCount    int
	TotalCompTime       time.Duration
	AvgCompTime         time.Duration

	// Err is set when the job failed to build or to run.
	Err error
}

// Key identifies the job in logs, reports and the status API.
func (j *JobSpec) Key() string {
	return fmt.Sprintf("%s/%s/%s", j.ProblemID, j.OptimizerID, j.BenchmarkID)
}

// Runnable reports whether the job should be executed.
func (j *JobSpec) Runnable() bool {
	return j.ProblemEnabled && j.OptimizerEnabled && j.Err == nil
}

// ResetAccumulators clears every cross-run accumulator. Called once when the
// job is built.
func (j *JobSpec) ResetAccumulators() {
	j.GlobalBest = Candidate{Fitness: WorstFitness}
	j.GlobalFitnessTrend = make([]float64, 0, j.RunsPerOptimizer)
	j.IterLastImprovement = make([]int, j.RunsPerOptimizer)
	for i := range j.IterLastImprovement {
		j.IterLastImprovement[i] = j.BudgetTotal
	}
	j.ImprovementCount = 0
	j.TotalCompTime = 0
	j.AvgCompTime = 0
	j.RunBest = Candidate{Fitness: WorstFitness}
}

// ResetRun clears the per-run transient state.
func (j *JobSpec) ResetRun() {
	j.RunBest = Candidate{Fitness: WorstFitness}
	j.RunFitnessTrend = nil
	j.Population = nil
	j.Sample = nil
	j.Evaluations = 0
	j.SampleEvaluations = 0
}

// Generator returns the generator bound for the problem's encoding.
func (j *JobSpec) Generator() GeneratorFunc {
	if j.ProblemType == Combinatorial {
		return j.Strategies.GeneratorComb
	}
	return j.Strategies.GeneratorCont
}

// ParamBounds returns the bounds configured for the optimizer's internal
// parameters (step sizes, velocities), or def when none are configured.
func (j *JobSpec) ParamBounds(def Bounds) Bounds {
	if j.OptimizerBounds != nil {
		return *j.OptimizerBounds
	}
	return def
}

// Improve rebinds RunBest to c when c is strictly better, appends the new
// fitness to the run trend and records the point of improvement. It reports
// whether c was an improvement.
func (j *JobSpec) Improve(c Candidate) bool {
	if !c.Better(j.RunBest) {
		return false
	}
	j.RunBest = c
	j.RunFitnessTrend = append(j.RunFitnessTrend, c.Fitness)
	j.ImprovementCount++
	if j.Run >= 0 && j.Run < len(j.IterLastImprovement) {
		j.IterLastImprovement[j.Run] = j.BudgetTotal - j.Budget
	}
	return true
}

// RecordRun folds the finished run's best into the global accumulators.
func (j *JobSpec) RecordRun() {
	if j.RunBest.Better(j.GlobalBest) {
		j.GlobalBest = j.RunBest
	}
	j.GlobalFitnessTrend = append(j.GlobalFitnessTrend, j.RunBest.Fitness)
}

// Snapshot is a copy of a job's cross-run accumulators.
type Snapshot struct {
	globalBest          Candidate
	globalFitnessTrend  []float64
	iterLastImprovement []int
	improvementCount    int
	totalCompTime       time.Duration
	avgCompTime         time.Duration
	budget              int
	benchmark           BenchmarkBounds
}

// Snapshot captures the accumulators so a failed job can be rolled back.
func (j *JobSpec) Snapshot() Snapshot {
	return Snapshot{
		globalBest:          j.GlobalBest,
		globalFitnessTrend:  append([]float64(nil), j.GlobalFitnessTrend...),
		iterLastImprovement: append([]int(nil), j.IterLastImprovement...),
		improvementCount:    j.ImprovementCount,
		totalCompTime:       j.TotalCompTime,
		avgCompTime:         j.AvgCompTime,
		budget:              j.Budget,
		benchmark:           j.Benchmark,
	}
}

// Restore rolls the accumulators back to s.
func (j *JobSpec) Restore(s Snapshot) {
	j.GlobalBest = s.globalBest
	j.GlobalFitnessTrend = s.globalFitnessTrend
	j.IterLastImprovement = s.iterLastImprovement
	j.ImprovementCount = s.improvementCount
	j.TotalCompTime = s.totalCompTime
	j.AvgCompTime = s.avgCompTime
	j.Budget = s.budget
	j.Benchmark = s.benchmark
}
