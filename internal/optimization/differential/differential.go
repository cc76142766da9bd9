// Package differential implements DE/rand/1/bin differential evolution.
package differential

import (
	"context"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/hopbench/internal/optimization"
)

const (
	defaultMutationFactor = 0.5
	defaultCrossoverRate  = 0.9
	minPopulation         = 4
)

// Differential evolves a population by adding scaled difference vectors of
// random members and keeping each trial only if it is at least as fit as
// its target.
type Differential struct {
	optimization.Base
	logger *zap.Logger
}

// New returns a differential evolution optimizer logging through logger.
func New(logger *zap.Logger) *Differential {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Differential{
		Base:   optimization.Base{Component: "differential"},
		logger: logger.Named("differential"),
	}
}

func (d *Differential) Optimize(ctx context.Context, job *optimization.JobSpec) error {
	f := job.MutationFactor
	if f <= 0 {
		f = defaultMutationFactor
	}
	cr := job.CrossoverRate
	if cr <= 0 {
		cr = defaultCrossoverRate
	}
	b := job.ProblemBounds

	if err := d.InitPopulation(ctx, job, max(job.InitialPopSize, minPopulation)); err != nil {
		return err
	}
	pop := job.Population
	if len(pop) < minPopulation {
		return nil
	}

	mutant := make([]float64, len(pop[0].Values))
	generation := 0
	for job.Budget > 0 {
		for i := range pop {
			if job.Budget <= 0 {
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			r1, r2, r3 := distinct(job, len(pop), i)

			// mutant = x_r1 + F·(x_r2 − x_r3)
			floats.SubTo(mutant, pop[r2].Values, pop[r3].Values)
			floats.Scale(f, mutant)
			floats.Add(mutant, pop[r1].Values)

			trial := make([]float64, len(mutant))
			jrand := job.Rand.Intn(len(mutant))
			for k := range trial {
				if k == jrand || job.Rand.Float64() < cr {
					trial[k] = b.Clamp(mutant[k])
				} else {
					trial[k] = pop[i].Values[k]
				}
			}

			c, err := d.Evaluate(job, trial)
			if err != nil {
				return err
			}
			if c.Fitness <= pop[i].Fitness {
				pop[i] = c
			}
			job.Improve(c)
		}
		generation++
	}

	d.logger.Debug("differential evolution finished",
		zap.String("job", job.Key()),
		zap.Int("generations", generation),
		zap.Float64("best", job.RunBest.Fitness))
	return nil
}

// distinct draws three distinct indices in [0, n) different from target.
func distinct(job *optimization.JobSpec, n, target int) (int, int, int) {
	pick := func(exclude ...int) int {
		for {
			r := job.Rand.Intn(n)
			ok := true
			for _, e := range exclude {
				if r == e {
					ok = false
					break
				}
			}
			if ok {
				return r
			}
		}
	}
	r1 := pick(target)
	r2 := pick(target, r1)
	r3 := pick(target, r1, r2)
	return r1, r2, r3
}
