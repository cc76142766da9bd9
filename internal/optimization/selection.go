package optimization

import (
	"math/rand"
	"sort"
)

// Tournament draws size members of pop at random and returns the index of
// the fittest. pop must not be empty.
func Tournament(rng *rand.Rand, pop []Candidate, size int) int {
	best := rng.Intn(len(pop))
	for i := 1; i < size; i++ {
		c := rng.Intn(len(pop))
		if pop[c].Better(pop[best]) {
			best = c
		}
	}
	return best
}

// SortByFitness orders cs best first. The sort is stable so equal fitness
// keeps insertion order.
func SortByFitness(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].Better(cs[j])
	})
}

// Truncate keeps the size best members of cs, sorted best first.
func Truncate(cs []Candidate, size int) []Candidate {
	SortByFitness(cs)
	if len(cs) > size {
		cs = cs[:size]
	}
	return cs
}

// Similarity is the fraction of positions at which a and b hold the same
// value.
func Similarity(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	same := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			same++
		}
	}
	return float64(same) / float64(n)
}
