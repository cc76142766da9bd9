package strategy

import (
	"math/rand"

	"github.com/copyleftdev/hopbench/internal/optimization"
)

// OrderCrossover is the order crossover (OX). Each child keeps a random
// segment of one parent and takes the remaining genes in the other parent's
// order, starting after the segment. Permutations stay permutations.
func OrderCrossover(rng *rand.Rand, p1, p2 []float64) ([]float64, []float64) {
	n := len(p1)
	if n < 2 || len(p2) != n {
		return append([]float64(nil), p1...), append([]float64(nil), p2...)
	}

	a, b := rng.Intn(n), rng.Intn(n)
	if a > b {
		a, b = b, a
	}
	if a == b {
		b = (a + 1) % n
		if a > b {
			a, b = b, a
		}
	}
	return oxChild(p1, p2, a, b), oxChild(p2, p1, a, b)
}

func oxChild(keep, fill []float64, a, b int) []float64 {
	n := len(keep)
	child := make([]float64, n)
	set := make([]bool, n)
	used := make(map[float64]int, b-a)
	for i := a; i < b; i++ {
		child[i] = keep[i]
		set[i] = true
		used[keep[i]]++
	}

	pos := b % n
	placed := b - a
	for i := 0; i < n && placed < n; i++ {
		gene := fill[(b+i)%n]
		if used[gene] > 0 {
			used[gene]--
			continue
		}
		for set[pos] {
			pos = (pos + 1) % n
		}
		child[pos] = gene
		set[pos] = true
		placed++
	}
	// Parents that are not permutations of each other may leave gaps.
	for i := range child {
		if !set[i] {
			child[i] = keep[i]
		}
	}
	return child
}

// UniformCrossover takes every coordinate from either parent with equal
// probability.
func UniformCrossover(rng *rand.Rand, p1, p2 []float64) ([]float64, []float64) {
	c1 := append([]float64(nil), p1...)
	c2 := append([]float64(nil), p2...)
	for i := 0; i < len(c1) && i < len(c2); i++ {
		if rng.Intn(2) == 0 {
			c1[i], c2[i] = c2[i], c1[i]
		}
	}
	return c1, c2
}

// OnePointCrossover exchanges the tails of the parents after a random cut.
func OnePointCrossover(rng *rand.Rand, p1, p2 []float64) ([]float64, []float64) {
	c1 := append([]float64(nil), p1...)
	c2 := append([]float64(nil), p2...)
	n := min(len(c1), len(c2))
	if n < 2 {
		return c1, c2
	}
	cut := 1 + rng.Intn(n-1)
	for i := cut; i < n; i++ {
		c1[i], c2[i] = c2[i], c1[i]
	}
	return c1, c2
}

// newArithmetic blends the parents with a random weight α,
// c1 = α·p1 + (1-α)·p2 and c2 = (1-α)·p1 + α·p2, clamped into the bounds.
func newArithmetic(job *optimization.JobSpec) (optimization.CrossoverFunc, error) {
	b := job.ProblemBounds
	return func(rng *rand.Rand, p1, p2 []float64) ([]float64, []float64) {
		n := min(len(p1), len(p2))
		c1 := make([]float64, n)
		c2 := make([]float64, n)
		alpha := rng.Float64()
		for i := 0; i < n; i++ {
			c1[i] = b.Clamp(alpha*p1[i] + (1-alpha)*p2[i])
			c2[i] = b.Clamp((1-alpha)*p1[i] + alpha*p2[i])
		}
		return c1, c2
	}, nil
}
