package orchestrator

import (
	"time"

	"github.com/copyleftdev/hopbench/internal/optimization"
)

// State is the execution state of a job.
type State string

const (
	StatePending State = "pending"
	StateRunning State = "running"
	StateDone    State = "done"
	StateFailed  State = "failed"
	StateSkipped State = "skipped"
)

// JobStatus is a point-in-time view of a job.
type JobStatus struct {
	Key       string `json:"key"`
	Problem   string `json:"problem"`
	Optimizer string `json:"optimizer"`
	Benchmark string `json:"benchmark"`
	State     State  `json:"state"`

	// RunsCompleted counts finished runs out of Runs.
	RunsCompleted int `json:"runs_completed"`
	Runs          int `json:"runs"`
	Budget        int `json:"budget"`
	BudgetTotal   int `json:"budget_total"`

	// Fitness values are omitted until a candidate was evaluated.
	RunBest    *float64 `json:"run_best,omitempty"`
	GlobalBest *float64 `json:"global_best,omitempty"`

	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusSink receives job status snapshots. Implementations must be safe
// for concurrent use.
type StatusSink interface {
	Publish(status JobStatus)
}

func statusOf(job *optimization.JobSpec, state State, completed int) JobStatus {
	s := JobStatus{
		Key:           job.Key(),
		Problem:       job.ProblemID,
		Optimizer:     job.OptimizerID,
		Benchmark:     job.BenchmarkID,
		State:         state,
		RunsCompleted: completed,
		Runs:          job.RunsPerOptimizer,
		Budget:        job.Budget,
		BudgetTotal:   job.BudgetTotal,
		UpdatedAt:     time.Now().UTC(),
	}
	if job.RunBest.Evaluated() {
		f := job.RunBest.Fitness
		s.RunBest = &f
	}
	if job.GlobalBest.Evaluated() {
		f := job.GlobalBest.Fitness
		s.GlobalBest = &f
	}
	if job.Err != nil {
		s.Error = job.Err.Error()
	}
	return s
}

func (o *Orchestrator) publish(job *optimization.JobSpec, state State, completed int) {
	if o.sink == nil {
		return
	}
	o.sink.Publish(statusOf(job, state, completed))
}
