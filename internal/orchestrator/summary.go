package orchestrator

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/copyleftdev/hopbench/internal/optimization"
	"github.com/copyleftdev/hopbench/internal/report"
	"github.com/copyleftdev/hopbench/internal/stats"
)

// Summary is the comparative result of one execution.
type Summary struct {
	Groups []Group
	// Failed lists the keys of jobs excluded because they failed.
	Failed []string
}

// Group compares the optimizers run on one (problem, benchmark) pair.
type Group struct {
	ProblemID   string
	BenchmarkID string
	Rows        []Row
	// Trends holds every optimizer's per-run best fitness.
	Trends map[string][]float64
}

// Row is the summary line of one optimizer.
type Row struct {
	stats.Summary

	Benchmark       optimization.BenchmarkBounds
	AvgCompTime     time.Duration
	Budget          int
	BudgetRemaining int

	// AvgIterLastImprovement is the mean evaluation count at which runs
	// last improved; BudgetNoImprovementPct the share of the budget spent
	// after it.
	AvgIterLastImprovement float64
	BudgetNoImprovementPct float64
	ImprovementCount       int
}

// Header is the column set of a summary table.
var Header = []string{
	"Optimizer", "Min Fitness", "Max Fitness", "Avg Fitness", "StDev", "Wilcoxon",
	"LB", "LB Diff %", "UB", "UB Diff %", "Avg Comp Time (s)", "Budget", "Budget Rem",
	"Avg Iter Last Imp", "Budget No Imp %", "Imp Count",
}

func (o *Orchestrator) summarize(jobs []*optimization.JobSpec) *Summary {
	type groupKey struct{ pid, bid string }
	byGroup := make(map[groupKey][]*optimization.JobSpec)
	var keys []groupKey
	summary := &Summary{}

	for _, job := range jobs {
		if !job.ProblemEnabled || !job.OptimizerEnabled {
			continue
		}
		if job.Err != nil {
			summary.Failed = append(summary.Failed, job.Key())
			continue
		}
		k := groupKey{job.ProblemID, job.BenchmarkID}
		if _, ok := byGroup[k]; !ok {
			keys = append(keys, k)
		}
		byGroup[k] = append(byGroup[k], job)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].pid != keys[j].pid {
			return keys[i].pid < keys[j].pid
		}
		return keys[i].bid < keys[j].bid
	})

	for _, k := range keys {
		group := Group{ProblemID: k.pid, BenchmarkID: k.bid, Trends: make(map[string][]float64)}
		byOptimizer := make(map[string]*optimization.JobSpec)
		for _, job := range byGroup[k] {
			group.Trends[job.OptimizerID] = job.GlobalFitnessTrend
			byOptimizer[job.OptimizerID] = job
		}

		for _, s := range stats.Summarize(group.Trends) {
			job := byOptimizer[s.ID]
			row := Row{
				Summary:          s,
				Benchmark:        job.Benchmark,
				AvgCompTime:      job.AvgCompTime,
				Budget:           job.BudgetTotal,
				BudgetRemaining:  job.Budget,
				ImprovementCount: job.ImprovementCount,
			}
			if len(job.IterLastImprovement) > 0 && job.BudgetTotal > 0 {
				last := make([]float64, len(job.IterLastImprovement))
				for i, v := range job.IterLastImprovement {
					last[i] = float64(v)
				}
				row.AvgIterLastImprovement = stat.Mean(last, nil)
				row.BudgetNoImprovementPct = (float64(job.BudgetTotal) - row.AvgIterLastImprovement) / float64(job.BudgetTotal) * 100
			}
			group.Rows = append(group.Rows, row)
		}
		summary.Groups = append(summary.Groups, group)
	}
	return summary
}

// Table renders the group as rows under Header.
func (g Group) Table() [][]string {
	rows := [][]string{Header}
	for _, r := range g.Rows {
		lb, lbDiff, ub, ubDiff := optimization.NoBenchmark, optimization.NoBenchmark, optimization.NoBenchmark, optimization.NoBenchmark
		if r.Benchmark.Known {
			lb = report.FormatFloat(r.Benchmark.LB)
			lbDiff = round(r.Benchmark.LBDiffPct, 2)
			ub = report.FormatFloat(r.Benchmark.UB)
			ubDiff = round(r.Benchmark.UBDiffPct, 2)
		}
		rows = append(rows, []string{
			r.ID,
			report.FormatFloat(r.Min),
			report.FormatFloat(r.Max),
			report.FormatFloat(r.Mean),
			report.FormatFloat(r.Stdev),
			round(r.Wilcoxon, 4),
			lb, lbDiff, ub, ubDiff,
			round(r.AvgCompTime.Seconds(), 3),
			strconv.Itoa(r.Budget),
			strconv.Itoa(r.BudgetRemaining),
			strconv.Itoa(int(r.AvgIterLastImprovement)),
			round(r.BudgetNoImprovementPct, 2),
			strconv.Itoa(r.ImprovementCount),
		})
	}
	return rows
}

func round(v float64, places int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', places, 64)
}

func (o *Orchestrator) writeSummary(s *Summary) error {
	for _, g := range s.Groups {
		for _, r := range g.Rows {
			o.logger.Info("summary", map[string]interface{}{
				"problem":     g.ProblemID,
				"benchmark":   g.BenchmarkID,
				"optimizer":   r.ID,
				"min":         r.Min,
				"mean":        r.Mean,
				"stdev":       r.Stdev,
				"wilcoxon":    round(r.Wilcoxon, 4),
				"reference":   r.Reference,
				"budget_left": r.BudgetRemaining,
			})
		}
		if o.resultsPath == "" {
			continue
		}

		base := fileName(g.ProblemID + "/" + g.BenchmarkID)
		if err := o.reporter.WriteReport(g.Table(), filepath.Join(o.resultsPath, base+"_summary.csv")); err != nil {
			return fmt.Errorf("writing summary of %s: %w", base, err)
		}
		if err := o.reporter.PlotAllOptimizersTrend(g.Trends, filepath.Join(o.resultsPath, base+"_all_optimizers_trend.csv")); err != nil {
			return fmt.Errorf("writing trends of %s: %w", base, err)
		}
	}
	for _, key := range s.Failed {
		o.logger.Warn("job excluded from summary", map[string]interface{}{"job": key})
	}
	return nil
}
