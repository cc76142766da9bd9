package problem

import (
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/copyleftdev/hopbench/internal/optimization"
)

// FlowShop is the permutation flow-shop scheduling problem: find the job
// order minimizing the makespan. Candidates are either permutations encoded
// as integral floats or random keys decoded by smallest position value.
type FlowShop struct {
	id        string
	benchmark Benchmark
	inst      *Instance
	bounds    optimization.Bounds

	completion []int
	perm       []int
}

// NewFlowShop builds the instance of spec.Benchmark, from its explicit
// processing times or else from its Taillard time seed.
func NewFlowShop(spec Spec) (optimization.Problem, error) {
	if spec.Benchmark == nil {
		return nil, optimization.NewConfigurationError("problem %q requires a benchmark instance", spec.ID)
	}
	bench := *spec.Benchmark

	var (
		inst *Instance
		err  error
	)
	switch {
	case len(bench.ProcessingTimes) > 0:
		inst, err = InstanceFromMatrix(bench.ProcessingTimes)
	case bench.TimeSeed != 0:
		inst, err = TaillardInstance(bench.Jobs, bench.Machines, bench.TimeSeed)
	default:
		err = fmt.Errorf("neither processing_times nor time_seed set")
	}
	if err != nil {
		return nil, optimization.NewConfigurationError("problem %q benchmark %q: %v", spec.ID, bench.ID, err)
	}

	b, err := resolveBounds(spec, inst.Jobs, optimization.Bounds{Lower: 0, Upper: float64(inst.Jobs)})
	if err != nil {
		return nil, err
	}
	id := spec.ID
	if id == "" {
		id = "FSSP"
	}
	return &FlowShop{
		id:         id,
		benchmark:  bench,
		inst:       inst,
		bounds:     b,
		completion: make([]int, inst.Machines),
		perm:       make([]int, inst.Jobs),
	}, nil
}

func (f *FlowShop) ID() string                     { return f.id }
func (f *FlowShop) Dimension() int                 { return f.inst.Jobs }
func (f *FlowShop) Type() optimization.ProblemType { return optimization.Combinatorial }
func (f *FlowShop) Bounds() optimization.Bounds    { return f.bounds }

// Evaluate returns the makespan of values and budget-1. A value vector that
// is not a permutation of the job ids is decoded as random keys.
func (f *FlowShop) Evaluate(values []float64, budget int) (float64, int) {
	f.decode(values, f.perm)

	for m := range f.completion {
		f.completion[m] = 0
	}
	for _, job := range f.perm {
		f.completion[0] += f.inst.Time(job, 0)
		for m := 1; m < f.inst.Machines; m++ {
			left := f.completion[m-1]
			up := f.completion[m]
			if left > up {
				f.completion[m] = left + f.inst.Time(job, m)
			} else {
				f.completion[m] = up + f.inst.Time(job, m)
			}
		}
	}
	return float64(f.completion[f.inst.Machines-1]), budget - 1
}

// Discretize converts values to a permutation encoded as integral floats.
// Permutations are returned as a copy.
func (f *FlowShop) Discretize(values []float64) []float64 {
	perm := make([]int, f.inst.Jobs)
	f.decode(values, perm)
	out := make([]float64, len(perm))
	for i, j := range perm {
		out[i] = float64(j)
	}
	return out
}

func (f *FlowShop) decode(values []float64, perm []int) {
	if isPermutation(values, len(perm)) {
		for i, v := range values {
			perm[i] = int(v)
		}
		return
	}
	SPV(values, perm)
}

// SPV writes into perm the smallest-position-value decoding of keys: the
// job with the smallest key is scheduled first. Ties keep index order.
// Missing keys sort last.
func SPV(keys []float64, perm []int) {
	for i := range perm {
		perm[i] = i
	}
	key := func(i int) float64 {
		if i < len(keys) && !math.IsNaN(keys[i]) {
			return keys[i]
		}
		return math.Inf(1)
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return key(perm[a]) < key(perm[b])
	})
}

func isPermutation(values []float64, n int) bool {
	if len(values) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range values {
		if v != math.Trunc(v) || v < 0 || v >= float64(n) {
			return false
		}
		i := int(v)
		if seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}

// Generator supports "random" (a shuffled permutation) and "keys" (uniform
// random keys within the bounds).
func (f *FlowShop) Generator(name string) (optimization.GeneratorFunc, bool) {
	switch name {
	case "random":
		n := f.inst.Jobs
		return func(rng *rand.Rand, _ optimization.Bounds) []float64 {
			out := make([]float64, n)
			for i, j := range rng.Perm(n) {
				out[i] = float64(j)
			}
			return out
		}, true
	case "keys":
		return uniform(f.inst.Jobs), true
	}
	return nil, false
}

func (f *FlowShop) PreProcessing(*optimization.JobSpec) error { return nil }

// PostProcessing converts the job's global best to a permutation, records
// its gap to the benchmark's known bounds and writes the best schedule.
func (f *FlowShop) PostProcessing(job *optimization.JobSpec, w optimization.ReportWriter) error {
	if !job.GlobalBest.Evaluated() {
		return nil
	}
	perm := f.Discretize(job.GlobalBest.Values)
	job.GlobalBest = optimization.Candidate{Values: perm, Fitness: job.GlobalBest.Fitness}

	job.Benchmark = optimization.BenchmarkBounds{
		Known:     f.benchmark.LB > 0 || f.benchmark.UB > 0,
		LB:        f.benchmark.LB,
		UB:        f.benchmark.UB,
		LBDiffPct: gapPct(job.GlobalBest.Fitness, f.benchmark.LB),
		UBDiffPct: gapPct(job.GlobalBest.Fitness, f.benchmark.UB),
	}

	if w == nil || job.ResultsPath == "" {
		return nil
	}
	order := make([]int, len(perm))
	for i, v := range perm {
		order[i] = int(v)
	}
	if err := ValidatePermutation(order, f.inst.Jobs); err != nil {
		return optimization.WrapError(err, "best schedule").WithOperation("PostProcessing").WithComponent(f.id)
	}
	s := f.inst.Schedule(order)
	dest := filepath.Join(job.ResultsPath, fileName(job.Key())+"_schedule.csv")
	return w.WriteReport(scheduleRows(s), dest)
}

// gapPct is the percentage by which fitness exceeds bound, 0 when the bound
// is unknown.
func gapPct(fitness, bound float64) float64 {
	if bound == 0 {
		return 0
	}
	return (fitness - bound) / bound * 100
}

func scheduleRows(s Schedule) [][]string {
	rows := [][]string{{"position", "job", "machine", "start", "end"}}
	for pos, job := range s.Order {
		for m := range s.Start[pos] {
			rows = append(rows, []string{
				strconv.Itoa(pos),
				strconv.Itoa(job),
				strconv.Itoa(m),
				strconv.Itoa(s.Start[pos][m]),
				strconv.Itoa(s.End[pos][m]),
			})
		}
	}
	return rows
}

func fileName(key string) string {
	return strings.NewReplacer("/", "_", " ", "_").Replace(key)
}
