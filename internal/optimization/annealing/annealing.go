// Package annealing implements budget-bounded simulated annealing.
package annealing

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/copyleftdev/hopbench/internal/optimization"
	"github.com/copyleftdev/hopbench/internal/strategy"
)

const (
	// DefaultInitialTemp is used when no initial sample is configured.
	DefaultInitialTemp   = 100.0
	DefaultCoolingRate   = 0.99
	DefaultTempThreshold = 1.0
)

// State is the phase an annealer is in.
type State int

const (
	Sampling State = iota
	Annealing
	Done
)

func (s State) String() string {
	switch s {
	case Sampling:
		return "sampling"
	case Annealing:
		return "annealing"
	case Done:
		return "done"
	}
	return "unknown"
}

// Annealer is a simulated annealing optimizer. Continuous problems draw a
// fresh candidate at every step; combinatorial problems perturb the
// incumbent with the job's variator (a pairwise swap unless configured).
type Annealer struct {
	optimization.Base

	logger      *zap.Logger
	state       State
	temp        float64
	initialTemp float64
	reheated    bool
	// sampled is set when the run starts from a sample evaluated earlier.
	sampled bool
}

// New returns an annealer logging through logger. A nil logger disables
// logging.
func New(logger *zap.Logger) *Annealer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Annealer{
		Base:   optimization.Base{Component: "annealing"},
		logger: logger.Named("annealing"),
	}
}

// Temperature returns the current temperature, the final temperature once
// the run is done.
func (a *Annealer) Temperature() float64 { return a.temp }

// InitialTemp returns the starting temperature of the last run.
func (a *Annealer) InitialTemp() float64 { return a.initialTemp }

// State returns the phase of the last run.
func (a *Annealer) State() State { return a.state }

// PreProcessing draws the unevaluated initial sample when the job asks for
// one. A job already holding an evaluated sample of the configured size
// keeps it, and the temperature is taken from it without new evaluations.
func (a *Annealer) PreProcessing(ctx context.Context, job *optimization.JobSpec) error {
	a.state = Annealing
	a.reheated = false
	a.sampled = false
	if !job.InitialSample {
		job.Sample = nil
		return nil
	}
	if job.InitialSampleSize <= 0 {
		return optimization.NewConfigurationError("optimizer %q: initial_sample requires initial_sample_size", job.OptimizerID).
			WithOperation("PreProcessing").WithComponent(a.Component)
	}
	if evaluatedSample(job.Sample, job.InitialSampleSize) {
		a.initialTemp = InitialTemperature(job.Sample)
		a.sampled = true
		return nil
	}
	gen, err := a.Generator(job)
	if err != nil {
		return err
	}
	job.Sample = make([]optimization.Candidate, job.InitialSampleSize)
	for i := range job.Sample {
		job.Sample[i] = optimization.NewCandidate(gen(job.Rand, job.ProblemBounds))
	}
	a.state = Sampling
	return nil
}

// Optimize runs the sampling phase if one is pending, then anneals until the
// budget is spent or the temperature reaches the threshold.
func (a *Annealer) Optimize(ctx context.Context, job *optimization.JobSpec) error {
	switch {
	case a.state == Sampling:
		if err := a.sample(job); err != nil {
			return err
		}
	case a.sampled:
		// initialTemp already comes from the kept sample.
	default:
		a.initialTemp = job.InitialTemp
		if a.initialTemp <= 0 {
			a.initialTemp = DefaultInitialTemp
		}
	}
	a.temp = a.initialTemp
	a.state = Annealing

	cooling := job.CoolingRate
	if cooling <= 0 || cooling >= 1 {
		cooling = DefaultCoolingRate
	}
	threshold := job.TempThreshold
	if threshold <= 0 {
		threshold = DefaultTempThreshold
	}

	if err := a.Seed(job); err != nil {
		return err
	}
	incumbent := job.RunBest

	neighbour, err := a.neighbourhood(job)
	if err != nil {
		return err
	}

	for job.Budget > 0 {
		if a.temp <= threshold {
			if !job.Reheat || a.reheated || a.initialTemp <= threshold {
				break
			}
			a.reheated = true
			a.temp = a.initialTemp
			a.logger.Debug("reheating",
				zap.Float64("temperature", a.temp),
				zap.Int("budget", job.Budget))
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		c, err := a.Evaluate(job, neighbour(incumbent))
		if err != nil {
			return err
		}

		loss := incumbent.Fitness - c.Fitness
		if c.Better(incumbent) || job.Rand.Float64() < Acceptance(loss, a.temp) {
			incumbent = c
			job.Improve(c)
		}
		a.temp *= cooling
	}

	a.logger.Debug("annealing finished",
		zap.String("job", job.Key()),
		zap.Int("run", job.Run),
		zap.Float64("temperature", a.temp),
		zap.Int("budget", job.Budget),
		zap.Float64("best", job.RunBest.Fitness))
	return nil
}

// PostProcessing marks the run done.
func (a *Annealer) PostProcessing(ctx context.Context, job *optimization.JobSpec) error {
	a.state = Done
	return nil
}

func (a *Annealer) sample(job *optimization.JobSpec) error {
	for i, c := range job.Sample {
		evaluated, err := a.EvaluateSample(job, c.Values)
		if err != nil {
			return err
		}
		job.Sample[i] = evaluated
	}
	a.initialTemp = InitialTemperature(job.Sample)
	a.logger.Debug("sampled initial temperature",
		zap.Int("samples", len(job.Sample)),
		zap.Float64("temperature", a.initialTemp))
	return nil
}

func evaluatedSample(sample []optimization.Candidate, size int) bool {
	if len(sample) != size {
		return false
	}
	for _, c := range sample {
		if !c.Evaluated() {
			return false
		}
	}
	return true
}

func (a *Annealer) neighbourhood(job *optimization.JobSpec) (func(optimization.Candidate) []float64, error) {
	if job.ProblemType == optimization.Combinatorial {
		v := job.Strategies.Variator
		if v == nil {
			v = strategy.Swap
		}
		return func(c optimization.Candidate) []float64 {
			return v(job.Rand, c.Values)
		}, nil
	}
	gen, err := a.Generator(job)
	if err != nil {
		return nil, err
	}
	return func(optimization.Candidate) []float64 {
		return gen(job.Rand, job.ProblemBounds)
	}, nil
}

// InitialTemperature is the fitness spread of sample, max − min, truncated
// to an integer. Unevaluated members are ignored.
func InitialTemperature(sample []optimization.Candidate) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range sample {
		if !c.Evaluated() {
			continue
		}
		lo = math.Min(lo, c.Fitness)
		hi = math.Max(hi, c.Fitness)
	}
	if hi < lo {
		return 0
	}
	return math.Trunc(hi - lo)
}

// Acceptance is the probability of moving to a candidate loss better than
// the incumbent, exp(loss/temp) capped at 1. It is 0 at non-positive
// temperatures.
func Acceptance(loss, temp float64) float64 {
	if temp <= 0 || math.IsNaN(loss) {
		return 0
	}
	return math.Exp(math.Min(loss/temp, 0))
}
