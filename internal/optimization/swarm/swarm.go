// Package swarm implements particle swarm optimization. Combinatorial
// problems are searched in random-key space and decoded by the problem.
package swarm

import (
	"context"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/hopbench/internal/optimization"
)

const (
	defaultInertia = 0.729
	defaultLocal   = 1.49445
	defaultGlobal  = 1.49445

	// Default velocity limit as a fraction of the bounds width.
	defaultVMaxFraction = 0.2
)

type particle struct {
	pos  []float64
	vel  []float64
	best optimization.Candidate
}

// Swarm is a global-best particle swarm.
type Swarm struct {
	optimization.Base
	logger *zap.Logger
}

// New returns a particle swarm optimizer logging through logger.
func New(logger *zap.Logger) *Swarm {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Swarm{
		Base:   optimization.Base{Component: "swarm"},
		logger: logger.Named("swarm"),
	}
}

func (s *Swarm) Optimize(ctx context.Context, job *optimization.JobSpec) error {
	b := job.ProblemBounds
	inertia := coeff(job.InertiaCoeff, defaultInertia)
	local := coeff(job.LocalCoeff, defaultLocal)
	global := coeff(job.GlobalCoeff, defaultGlobal)

	// Optimizer bounds, when configured, limit the velocity.
	vmax := defaultVMaxFraction * b.Width()
	vb := job.ParamBounds(optimization.Bounds{Lower: -vmax, Upper: vmax})

	if err := s.InitPopulation(ctx, job, max(job.InitialPopSize, 1)); err != nil {
		return err
	}
	swarm := make([]particle, len(job.Population))
	for i, c := range job.Population {
		p := particle{pos: c.CopyValues(), vel: make([]float64, len(c.Values)), best: c}
		for d := range p.vel {
			p.vel[d] = vb.Lower + job.Rand.Float64()*vb.Width()
		}
		swarm[i] = p
	}
	gbest := optimization.Best(job.Population)

	r1 := make([]float64, len(gbest.Values))
	r2 := make([]float64, len(gbest.Values))
	iter := 0
	for job.Budget > 0 && len(swarm) > 0 {
		for i := range swarm {
			if job.Budget <= 0 {
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			p := &swarm[i]

			// v = w·v + c1·r1·(pbest − x) + c2·r2·(gbest − x)
			floats.Scale(inertia, p.vel)
			for d := range r1 {
				r1[d] = local * job.Rand.Float64() * (p.best.Values[d] - p.pos[d])
				r2[d] = global * job.Rand.Float64() * (gbest.Values[d] - p.pos[d])
			}
			floats.Add(p.vel, r1)
			floats.Add(p.vel, r2)

			next := make([]float64, len(p.pos))
			for d := range next {
				p.vel[d] = vb.Clamp(p.vel[d])
				next[d] = p.pos[d] + p.vel[d]
				if next[d] < b.Lower || next[d] > b.Upper {
					next[d] = b.Clamp(next[d])
					p.vel[d] = 0
				}
			}
			p.pos = next

			c, err := s.Evaluate(job, next)
			if err != nil {
				return err
			}
			if c.Better(p.best) {
				p.best = c
			}
			if c.Better(gbest) {
				gbest = c
			}
			job.Improve(c)
		}
		if job.Decay {
			inertia *= coeff(job.DecayCoeff, 1)
		}
		iter++
	}

	job.Population = job.Population[:0]
	for _, p := range swarm {
		job.Population = append(job.Population, p.best)
	}

	s.logger.Debug("swarm finished",
		zap.String("job", job.Key()),
		zap.Int("iterations", iter),
		zap.Float64("inertia", inertia),
		zap.Float64("best", job.RunBest.Fitness))
	return nil
}

func coeff(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
