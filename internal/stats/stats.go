// Package stats computes the comparative statistics of a benchmark summary.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary describes the global best fitness of one optimizer across runs.
type Summary struct {
	ID    string
	N     int
	Min   float64
	Max   float64
	Mean  float64
	Stdev float64

	// Wilcoxon is the two-sided rank-sum p-value of this optimizer against
	// Reference, the optimizer with the lowest mean. NaN when either sample
	// is empty.
	Wilcoxon  float64
	Reference string
}

// Summarize describes every sample and compares each against the sample
// with the best (lowest) mean. The result is sorted by id.
func Summarize(samples map[string][]float64) []Summary {
	ids := make([]string, 0, len(samples))
	for id := range samples {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Summary, 0, len(ids))
	ref, refMean := "", math.Inf(1)
	for _, id := range ids {
		s := Describe(samples[id])
		s.ID = id
		if s.N > 0 && (ref == "" || s.Mean < refMean) {
			ref, refMean = id, s.Mean
		}
		out = append(out, s)
	}

	for i := range out {
		out[i].Reference = ref
		switch {
		case ref == "" || out[i].N == 0:
			out[i].Wilcoxon = math.NaN()
		case out[i].ID == ref:
			out[i].Wilcoxon = 1
		default:
			_, out[i].Wilcoxon = RankSum(samples[out[i].ID], samples[ref])
		}
	}
	return out
}

// Describe returns min, max, mean and sample standard deviation of x. An
// empty x yields NaN for every statistic, a single value a zero deviation.
func Describe(x []float64) Summary {
	s := Summary{N: len(x)}
	if len(x) == 0 {
		nan := math.NaN()
		s.Min, s.Max, s.Mean, s.Stdev = nan, nan, nan, nan
		return s
	}
	s.Min = floats.Min(x)
	s.Max = floats.Max(x)
	s.Mean = stat.Mean(x, nil)
	if len(x) > 1 {
		s.Stdev = stat.StdDev(x, nil)
	}
	return s
}

// RankSum runs the Wilcoxon rank-sum test of x against y using the normal
// approximation with tie correction. It returns the z statistic and the
// two-sided p-value.
func RankSum(x, y []float64) (z, p float64) {
	n1, n2 := float64(len(x)), float64(len(y))
	if n1 == 0 || n2 == 0 {
		return math.NaN(), math.NaN()
	}

	type obs struct {
		v     float64
		fromX bool
	}
	all := make([]obs, 0, len(x)+len(y))
	for _, v := range x {
		all = append(all, obs{v, true})
	}
	for _, v := range y {
		all = append(all, obs{v, false})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].v < all[j].v })

	var r1, ties float64
	for i := 0; i < len(all); {
		j := i
		for j < len(all) && all[j].v == all[i].v {
			j++
		}
		// ranks i+1..j share their average
		rank := float64(i+1+j) / 2
		t := float64(j - i)
		ties += t*t*t - t
		for k := i; k < j; k++ {
			if all[k].fromX {
				r1 += rank
			}
		}
		i = j
	}

	n := n1 + n2
	u := r1 - n1*(n1+1)/2
	mean := n1 * n2 / 2
	variance := n1 * n2 / 12 * ((n + 1) - ties/(n*(n-1)))
	if variance <= 0 {
		return 0, 1
	}
	z = (u - mean) / math.Sqrt(variance)
	p = 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))
	return z, math.Min(p, 1)
}
