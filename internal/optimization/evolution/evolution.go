// Package evolution implements a (μ+λ) evolution strategy.
package evolution

import (
	"context"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/hopbench/internal/optimization"
)

// DefaultDecayCoeff is the per-generation step factor used when decay is
// on and decay_coeff is not in (0, 1).
const DefaultDecayCoeff = 0.95

// Strategy keeps μ parents, produces λ children per generation by
// perturbing uniformly drawn parents with the job's variator and keeps the
// μ best of parents and children.
//
// With decay on a continuous problem, children are moved only a fraction
// of the way from their parent towards the variator's output. The fraction
// starts at 1 and is multiplied by decay_coeff after every generation.
type Strategy struct {
	optimization.Base
	logger *zap.Logger
	step   float64
}

// New returns an evolution strategy logging through logger.
func New(logger *zap.Logger) *Strategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Strategy{
		Base:   optimization.Base{Component: "evolution"},
		logger: logger.Named("evolution"),
	}
}

// Step returns the variation step reached by the last run.
func (s *Strategy) Step() float64 { return s.step }

func (s *Strategy) Optimize(ctx context.Context, job *optimization.JobSpec) error {
	variate, err := s.Variator(job)
	if err != nil {
		return err
	}

	s.step = 1
	decay := 1.0
	if job.Decay && job.ProblemType == optimization.Continuous {
		decay = job.DecayCoeff
		if decay <= 0 || decay >= 1 {
			decay = DefaultDecayCoeff
		}
	}

	mu := job.NumberParents
	if mu <= 0 {
		mu = max(job.InitialPopSize, 1)
	}
	lambda := job.NumberChildren
	if lambda <= 0 {
		lambda = 2 * mu
	}

	if err := s.InitPopulation(ctx, job, mu); err != nil {
		return err
	}

	generation := 0
	for job.Budget > 0 && len(job.Population) > 0 {
		children := make([]optimization.Candidate, 0, lambda)
		for len(children) < lambda && job.Budget > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			parent := job.Population[job.Rand.Intn(len(job.Population))]
			child := variate(job.Rand, parent.Values)
			if s.step < 1 {
				child = damp(parent.Values, child, s.step, job.ProblemBounds)
			}
			c, err := s.Evaluate(job, child)
			if err != nil {
				return err
			}
			children = append(children, c)
			job.Improve(c)
		}
		job.Population = optimization.Truncate(append(job.Population, children...), mu)
		generation++
		s.step *= decay
	}

	s.logger.Debug("evolution strategy finished",
		zap.String("job", job.Key()),
		zap.Int("generations", generation),
		zap.Float64("spread", spread(job.Population)),
		zap.Float64("step", s.step),
		zap.Float64("best", job.RunBest.Fitness))
	return nil
}

// damp moves parent a fraction step of the way towards child and clamps
// the result into b.
func damp(parent, child []float64, step float64, b optimization.Bounds) []float64 {
	out := make([]float64, len(parent))
	floats.SubTo(out, child, parent)
	floats.Scale(step, out)
	floats.Add(out, parent)
	for i, v := range out {
		out[i] = b.Clamp(v)
	}
	return out
}

// spread is the fitness range of the surviving parents.
func spread(pop []optimization.Candidate) float64 {
	if len(pop) == 0 {
		return 0
	}
	f := make([]float64, len(pop))
	for i, c := range pop {
		f[i] = c.Fitness
	}
	return floats.Max(f) - floats.Min(f)
}
