package optimization

import "math/rand"

// Bounds is a closed [Lower, Upper] interval applied to every coordinate.
type Bounds struct {
	Lower float64
	Upper float64
}

// Width returns Upper - Lower.
func (b Bounds) Width() float64 {
	return b.Upper - b.Lower
}

// Clamp pins v into the interval.
func (b Bounds) Clamp(v float64) float64 {
	if v < b.Lower {
		return b.Lower
	}
	if v > b.Upper {
		return b.Upper
	}
	return v
}

// GeneratorFunc produces a fresh candidate vector within b.
type GeneratorFunc func(rng *rand.Rand, b Bounds) []float64

// VariatorFunc returns a neighbour of values. It must not modify values.
type VariatorFunc func(rng *rand.Rand, values []float64) []float64

// CrossoverFunc combines two parents into two children. It must not modify
// the parents.
type CrossoverFunc func(rng *rand.Rand, a, b []float64) ([]float64, []float64)

// Strategies is the typed bundle of strategy functions resolved for a job
// at build time. Names are kept for reporting.
type Strategies struct {
	GeneratorCont     GeneratorFunc
	GeneratorContName string
	GeneratorComb     GeneratorFunc
	GeneratorCombName string
	Variator          VariatorFunc
	VariatorName      string
	Crossover         CrossoverFunc
	CrossoverName     string
}
