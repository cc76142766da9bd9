package optimization

import "math"

// WorstFitness is the fitness of a candidate that has not been evaluated.
// Every attainable fitness compares better (all problems minimize).
var WorstFitness = math.Inf(1)

// Candidate is a point in a problem's search space together with its
// fitness. Values are never modified once the candidate is evaluated;
// perturbations allocate a new slice.
type Candidate struct {
	Values  []float64
	Fitness float64
}

// NewCandidate returns an unevaluated candidate holding values.
func NewCandidate(values []float64) Candidate {
	return Candidate{Values: values, Fitness: WorstFitness}
}

// Evaluated reports whether the candidate carries a real fitness.
func (c Candidate) Evaluated() bool {
	return !math.IsInf(c.Fitness, 1) && c.Values != nil
}

// Better reports whether c is strictly better than other.
func (c Candidate) Better(other Candidate) bool {
	return c.Fitness < other.Fitness
}

// CopyValues returns a fresh copy of the candidate values, suitable as the
// starting point of a perturbation.
func (c Candidate) CopyValues() []float64 {
	return append([]float64(nil), c.Values...)
}

// Best returns the best candidate of cs, or an unevaluated candidate when cs
// is empty.
func Best(cs []Candidate) Candidate {
	best := Candidate{Fitness: WorstFitness}
	for _, c := range cs {
		if c.Better(best) {
			best = c
		}
	}
	return best
}
