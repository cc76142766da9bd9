// Package genetic implements a steady budget genetic algorithm with
// tournament selection and elitist (μ+λ) replacement.
package genetic

import (
	"context"

	"go.uber.org/zap"

	"github.com/copyleftdev/hopbench/internal/optimization"
)

const (
	tournamentSize       = 3
	defaultCrossoverRate = 0.9
	defaultMutationRate  = 0.15
	similarityRetries    = 3
)

// Genetic breeds children from tournament-selected parents with the job's
// crossover and variator, and keeps the best of parents and children.
type Genetic struct {
	optimization.Base
	logger *zap.Logger
}

// New returns a genetic algorithm logging through logger.
func New(logger *zap.Logger) *Genetic {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Genetic{
		Base:   optimization.Base{Component: "genetic"},
		logger: logger.Named("genetic"),
	}
}

func (g *Genetic) Optimize(ctx context.Context, job *optimization.JobSpec) error {
	variate, err := g.Variator(job)
	if err != nil {
		return err
	}
	cross, err := g.Crossover(job)
	if err != nil {
		return err
	}

	popSize := max(job.InitialPopSize, 2)
	children := job.NumberChildren
	if children <= 0 {
		children = popSize
	}
	crossRate := job.CrossoverRate
	if crossRate <= 0 {
		crossRate = defaultCrossoverRate
	}

	if err := g.InitPopulation(ctx, job, popSize); err != nil {
		return err
	}

	generation := 0
	for job.Budget > 0 && len(job.Population) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		offspring := make([]optimization.Candidate, 0, children)
		for len(offspring) < children && job.Budget > 0 {
			p1, p2 := g.parents(job)

			c1, c2 := p1.CopyValues(), p2.CopyValues()
			if job.Rand.Float64() < crossRate {
				c1, c2 = cross(job.Rand, p1.Values, p2.Values)
			}
			for _, values := range [][]float64{c1, c2} {
				if job.Budget <= 0 || len(offspring) >= children {
					break
				}
				if job.Rand.Float64() < defaultMutationRate {
					values = variate(job.Rand, values)
				}
				c, err := g.Evaluate(job, values)
				if err != nil {
					return err
				}
				offspring = append(offspring, c)
				job.Improve(c)
			}
		}

		job.Population = optimization.Truncate(append(job.Population, offspring...), popSize)
		generation++
	}

	g.logger.Debug("evolution finished",
		zap.String("job", job.Key()),
		zap.Int("generations", generation),
		zap.Float64("best", job.RunBest.Fitness))
	return nil
}

// parents selects two parents by tournament, redrawing the second while it
// is more similar to the first than the configured threshold allows.
func (g *Genetic) parents(job *optimization.JobSpec) (optimization.Candidate, optimization.Candidate) {
	pop := job.Population
	i := optimization.Tournament(job.Rand, pop, tournamentSize)
	j := optimization.Tournament(job.Rand, pop, tournamentSize)
	if job.ParentSimilarityThreshold > 0 {
		for r := 0; r < similarityRetries; r++ {
			if optimization.Similarity(pop[i].Values, pop[j].Values) <= job.ParentSimilarityThreshold {
				break
			}
			j = job.Rand.Intn(len(pop))
		}
	}
	return pop[i], pop[j]
}
