package orchestrator

import (
	"math/rand"

	"github.com/copyleftdev/hopbench/internal/config"
	"github.com/copyleftdev/hopbench/internal/optimization"
	"github.com/copyleftdev/hopbench/internal/problem"
	"github.com/copyleftdev/hopbench/internal/strategy"
)

const defaultGenerator = "random"

// BuildJobs resolves the cross product of enabled problems, configured
// optimizers and enabled benchmarks into jobs sorted by problem, optimizer
// and benchmark id.
//
// Errors in shared configuration (general settings, problem classes,
// bounds, benchmark instances) abort the build. Errors confined to one
// optimizer are recorded on the affected jobs, which are then skipped by
// Execute.
func (o *Orchestrator) BuildJobs() ([]*optimization.JobSpec, error) {
	g := o.docs.General
	if g.RunsPerOptimizer < 1 || g.CompBudgetBase < 1 {
		return nil, optimization.NewConfigurationError("runs_per_optimizer and comp_budget_base must be >= 1").
			WithOperation("BuildJobs").WithComponent("orchestrator")
	}

	var jobs []*optimization.JobSpec
	for _, pid := range config.SortedKeys(o.docs.Problems) {
		p := o.docs.Problems[pid]
		if !p.IsEnabled() {
			continue
		}
		factory, spec, err := problemSpec(pid, p)
		if err != nil {
			return nil, err
		}

		benchmarks := enabledBenchmarks(p)
		if len(benchmarks) == 0 {
			o.logger.Warn("problem has no enabled benchmark", map[string]interface{}{"problem": pid})
			continue
		}
		for _, oid := range config.SortedKeys(o.docs.Optimizers) {
			for _, bid := range benchmarks {
				s := spec
				if bid != optimization.NoBenchmark {
					b := p.Benchmarks[bid]
					s.Benchmark = &problem.Benchmark{
						ID:              bid,
						Jobs:            b.Jobs,
						Machines:        b.Machines,
						TimeSeed:        b.TimeSeed,
						ProcessingTimes: b.ProcessingTimes,
						LB:              b.LB,
						UB:              b.UB,
					}
				}
				// Problems keep evaluation scratch space, so every job owns
				// its instance.
				prob, err := factory(s)
				if err != nil {
					return nil, optimization.WrapErrorf(err, "problem %q benchmark %q", pid, bid).
						WithOperation("BuildJobs").WithComponent("orchestrator")
				}
				if string(prob.Type()) != p.Type {
					return nil, optimization.NewConfigurationError("problem %q is %s, configured as %q", pid, prob.Type(), p.Type).
						WithOperation("BuildJobs").WithComponent("orchestrator")
				}

				job := o.buildJob(pid, p, prob, bid, oid, o.docs.Optimizers[oid], true)
				jobs = append(jobs, job)
			}
		}
	}

	for i, job := range jobs {
		job.Rand = rand.New(rand.NewSource(o.seed + int64(i)))
		for k := range job.LowLevel {
			job.LowLevel[k].Job.Rand = job.Rand
		}
		if job.Err != nil {
			o.logger.Warn("job configuration rejected", map[string]interface{}{
				"job":   job.Key(),
				"error": job.Err.Error(),
			})
			o.metrics.JobFailed(job.ProblemID, job.OptimizerID, job.BenchmarkID)
		}
	}

	o.logger.Info("jobs built", map[string]interface{}{
		"jobs": len(jobs),
		"seed": o.seed,
	})
	return jobs, nil
}

// problemSpec resolves a problem's class and bounds.
func problemSpec(pid string, p config.Problem) (problem.Factory, problem.Spec, error) {
	class := p.Class
	if class == "" {
		class = pid
	}
	factory, ok := problem.Lookup(class)
	if !ok {
		return nil, problem.Spec{}, optimization.NewConfigurationError("problem %q: unknown problem class %q (known: %v)", pid, class, problem.Classes()).
			WithOperation("BuildJobs").WithComponent("orchestrator")
	}

	spec := problem.Spec{ID: pid, N: p.N, UpperIsN: p.UB.NMax}
	switch {
	case p.LB.Set && (p.UB.Set || p.UB.NMax):
		spec.Bounds = &optimization.Bounds{Lower: p.LB.Value, Upper: p.UB.Value}
	case p.LB.Set || (p.UB.Set && !p.UB.NMax):
		return nil, problem.Spec{}, optimization.NewConfigurationError("problem %q: lb and ub must be configured together", pid).
			WithOperation("BuildJobs").WithComponent("orchestrator")
	}
	return factory, spec, nil
}

func enabledBenchmarks(p config.Problem) []string {
	if len(p.Benchmarks) == 0 {
		return []string{optimization.NoBenchmark}
	}
	var out []string
	for _, bid := range config.SortedKeys(p.Benchmarks) {
		if p.Benchmarks[bid].IsEnabled() {
			out = append(out, bid)
		}
	}
	return out
}

// buildJob resolves one job. Errors are recorded on the job. Low-level
// heuristics are only resolved when allowHyper is set, which keeps pools
// from nesting.
func (o *Orchestrator) buildJob(pid string, p config.Problem, prob optimization.Problem, bid, oid string, opt config.Optimizer, allowHyper bool) *optimization.JobSpec {
	g := o.docs.General
	n := prob.Dimension()
	class := opt.Class
	if class == "" {
		class = oid
	}

	job := &optimization.JobSpec{
		ProblemID:        pid,
		OptimizerID:      oid,
		BenchmarkID:      bid,
		ProblemType:      prob.Type(),
		ProblemDesc:      p.Description,
		OptimizerType:    opt.Type,
		OptimizerDesc:    opt.Description,
		OptimizerClass:   class,
		ProblemEnabled:   p.IsEnabled(),
		OptimizerEnabled: opt.IsEnabled(),
		ResultsPath:      o.resultsPath,

		RunsPerOptimizer: g.RunsPerOptimizer,
		BudgetBase:       g.CompBudgetBase,
		BudgetTotal:      n * g.CompBudgetBase,
		BitComputing:     g.BitComputing,

		ProblemBounds: prob.Bounds(),

		InitialSample:     opt.InitialSample,
		InitialSampleSize: opt.InitialSampleSize,

		InitialPopSize:            opt.InitialPopSize,
		NumberParents:             opt.NumberParents,
		NumberChildren:            opt.NumberChildren,
		ParentSimilarityThreshold: opt.ParentGeneSimilarityThreshold,

		InitialTemp:   opt.InitialTemp,
		CoolingRate:   opt.CoolingRate,
		TempThreshold: opt.TempThreshold,
		Reheat:        opt.Reheat,

		InertiaCoeff:   p.InertiaCoeff,
		LocalCoeff:     p.LocalCoeff,
		GlobalCoeff:    p.GlobalCoeff,
		Decay:          opt.Decay,
		DecayCoeff:     opt.DecayCoeff,
		MutationFactor: opt.MutationFactor,
		CrossoverRate:  opt.CrossoverRate,

		LowLevelSelectionPool: opt.LowLevelSelectionPool,
		LLHSampleRuns:         opt.LLHSampleRuns,

		Problem: prob,
	}
	job.Budget = job.BudgetTotal
	job.LLHSampleBudget = int(opt.LLHSampleBudgetCoeff * float64(job.BudgetTotal))
	job.LLHBudget = int(opt.LLHBudgetCoeff * float64(job.BudgetTotal))
	if job.InitialPopSize <= 0 {
		job.InitialPopSize = 3 * n
		if job.ProblemType == optimization.Combinatorial {
			job.InitialPopSize = 2 * n
		}
	}
	job.ResetAccumulators()
	job.ResetRun()

	job.Err = o.resolve(job, opt, allowHyper)
	if job.Err != nil {
		job.Err = optimization.WrapErrorf(job.Err, "job %s", job.Key()).
			WithOperation("BuildJobs").WithComponent("orchestrator")
	}
	return job
}

// resolve binds the job's optimizer, strategies and low-level heuristics.
func (o *Orchestrator) resolve(job *optimization.JobSpec, opt config.Optimizer, allowHyper bool) error {
	factory, ok := LookupOptimizer(job.OptimizerClass)
	if !ok {
		return optimization.NewConfigurationError("unknown optimizer class %q (known: %v)", job.OptimizerClass, OptimizerClasses())
	}
	job.Optimizer = factory(o.zap)

	if opt.InitialSample && opt.InitialSampleSize <= 0 {
		return optimization.NewConfigurationError("initial_sample requires initial_sample_size > 0")
	}

	switch {
	case opt.LB.Set && opt.UB.Set:
		if opt.LB.Value > opt.UB.Value {
			return optimization.NewConfigurationError("optimizer lb %v above ub %v", opt.LB.Value, opt.UB.Value)
		}
		job.OptimizerBounds = &optimization.Bounds{Lower: opt.LB.Value, Upper: opt.UB.Value}
	case opt.LB.Set || opt.UB.Set:
		return optimization.NewConfigurationError("optimizer lb and ub must be configured together")
	}

	if err := bindGenerator(job, opt); err != nil {
		return err
	}
	if err := strategy.Bind(job, opt.Variator, opt.Crossover); err != nil {
		return err
	}

	if job.OptimizerClass != HyperHeuristic {
		return nil
	}
	if !allowHyper {
		return optimization.NewConfigurationError("hyper-heuristic %q cannot be a low-level heuristic", job.OptimizerID)
	}
	if len(opt.LowLevelSelectionPool) == 0 {
		return optimization.NewConfigurationError("optimizer %q has an empty low_level_selection_pool", job.OptimizerID)
	}
	if job.LLHBudget <= 0 {
		return optimization.NewConfigurationError("optimizer %q: llh_budget_coeff must yield a positive chunk", job.OptimizerID)
	}

	p := o.docs.Problems[job.ProblemID]
	for _, id := range opt.LowLevelSelectionPool {
		llhOpt, ok := o.docs.Optimizers[id]
		if !ok {
			return optimization.NewConfigurationError("low_level_selection_pool references unknown optimizer %q", id)
		}
		sub := o.buildJob(job.ProblemID, p, job.Problem, job.BenchmarkID, id, llhOpt, false)
		if sub.Err != nil {
			return sub.Err
		}
		sub.RunsPerOptimizer = 1
		sub.ResultsPath = ""
		sub.ResetAccumulators()
		job.LowLevel = append(job.LowLevel, optimization.LowLevelHeuristic{
			ID:        id,
			Job:       sub,
			Optimizer: sub.Optimizer,
		})
	}
	return nil
}

// bindGenerator resolves the generator for the problem's encoding.
func bindGenerator(job *optimization.JobSpec, opt config.Optimizer) error {
	name := opt.GeneratorCont
	if job.ProblemType == optimization.Combinatorial {
		name = opt.GeneratorComb
	}
	if name == "" {
		name = defaultGenerator
	}

	gen, ok := job.Problem.Generator(name)
	if !ok {
		return optimization.NewConfigurationError("problem %q has no generator %q", job.ProblemID, name)
	}
	if job.ProblemType == optimization.Combinatorial {
		job.Strategies.GeneratorComb = gen
		job.Strategies.GeneratorCombName = name
	} else {
		job.Strategies.GeneratorCont = gen
		job.Strategies.GeneratorContName = name
	}
	return nil
}
