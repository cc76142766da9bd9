package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/copyleftdev/hopbench/internal/optimization"
)

// Execute runs every runnable job, at most Workers at a time, then writes
// the per (problem, benchmark) summaries. Job failures are recorded on the
// job and do not stop the others. Execute fails only when ctx is cancelled
// or a summary cannot be written.
func (o *Orchestrator) Execute(ctx context.Context, jobs []*optimization.JobSpec) (*Summary, error) {
	for _, job := range jobs {
		switch {
		case job.Err != nil:
			o.publish(job, StateFailed, 0)
		case !job.Runnable():
			o.publish(job, StateSkipped, 0)
		default:
			o.publish(job, StatePending, 0)
		}
	}

	p := pool.New().WithMaxGoroutines(o.workers)
	for _, job := range jobs {
		if !job.Runnable() {
			continue
		}
		job := job
		p.Go(func() {
			o.execute(ctx, job)
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := o.summarize(jobs)
	if err := o.writeSummary(summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// execute runs all repetitions of one job. On failure the accumulators are
// rolled back and the error is kept in job.Err.
func (o *Orchestrator) execute(ctx context.Context, job *optimization.JobSpec) {
	logger := o.logger.WithField("job", job.Key())
	o.metrics.JobStarted()
	defer o.metrics.JobFinished()

	snapshot := job.Snapshot()
	if err := o.runAll(ctx, job); err != nil {
		job.Restore(snapshot)
		job.Err = err
		logger.WithError(err).Error("job failed")
		o.metrics.JobFailed(job.ProblemID, job.OptimizerID, job.BenchmarkID)
		o.publish(job, StateFailed, 0)
		return
	}

	o.metrics.SetGlobalBest(job.ProblemID, job.OptimizerID, job.BenchmarkID, job.GlobalBest.Fitness)
	o.publish(job, StateDone, job.RunsPerOptimizer)
	logger.Info("job completed", map[string]interface{}{
		"global_best":   job.GlobalBest.Fitness,
		"avg_comp_time": job.AvgCompTime.String(),
		"budget_left":   job.Budget,
	})
}

func (o *Orchestrator) runAll(ctx context.Context, job *optimization.JobSpec) error {
	for r := 0; r < job.RunsPerOptimizer; r++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		job.Run = r
		job.ResetRun()
		o.publish(job, StateRunning, r)

		if err := job.Problem.PreProcessing(job); err != nil {
			return optimization.WrapErrorf(err, "run %d pre-processing", r).WithComponent("orchestrator")
		}

		start := time.Now()
		err := optimization.Run(ctx, job.Optimizer, job)
		elapsed := time.Since(start)
		if err != nil {
			return optimization.WrapErrorf(err, "run %d", r).WithComponent("orchestrator")
		}

		// Run bests held as random keys are kept as the permutation they
		// decode to.
		if d, ok := job.Problem.(optimization.Discretizer); ok && job.RunBest.Evaluated() {
			job.RunBest.Values = d.Discretize(job.RunBest.Values)
		}

		job.TotalCompTime += elapsed
		job.RecordRun()
		o.metrics.ObserveRun(job.ProblemID, job.OptimizerID, job.BenchmarkID, job.Evaluations, elapsed)
		o.logger.Debug("run completed", map[string]interface{}{
			"job":          job.Key(),
			"run":          r,
			"run_best":     job.RunBest.Fitness,
			"evaluations":  job.Evaluations,
			"sample_evals": job.SampleEvaluations,
			"elapsed_ms":   elapsed.Milliseconds(),
		})

		if job.ResultsPath != "" {
			dest := filepath.Join(job.ResultsPath, fmt.Sprintf("%s_run%d_trend.csv", fileName(job.Key()), r))
			if err := o.reporter.PlotFitnessTrend(job.RunFitnessTrend, dest); err != nil {
				return err
			}
		}

		// The last run keeps its remaining budget for the summary.
		if r < job.RunsPerOptimizer-1 {
			job.Budget = job.BudgetTotal
		}
	}

	if job.RunsPerOptimizer > 0 {
		job.AvgCompTime = job.TotalCompTime / time.Duration(job.RunsPerOptimizer)
	}

	var w optimization.ReportWriter
	if job.ResultsPath != "" {
		w = o.reporter
	}
	if err := job.Problem.PostProcessing(job, w); err != nil {
		return optimization.WrapError(err, "problem post-processing").WithComponent("orchestrator")
	}
	return nil
}

func fileName(key string) string {
	return strings.NewReplacer("/", "_", " ", "_").Replace(key)
}
