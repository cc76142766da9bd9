package strategy

import (
	"math/rand"

	"github.com/copyleftdev/hopbench/internal/optimization"
)

// Swap returns a copy of values with two distinct positions exchanged.
func Swap(rng *rand.Rand, values []float64) []float64 {
	out := append([]float64(nil), values...)
	if len(out) < 2 {
		return out
	}
	i, j := twoPositions(rng, len(out))
	out[i], out[j] = out[j], out[i]
	return out
}

// Insert returns a copy of values with the element at one position moved
// to another, shifting the elements between.
func Insert(rng *rand.Rand, values []float64) []float64 {
	out := append([]float64(nil), values...)
	if len(out) < 2 {
		return out
	}
	i, j := twoPositions(rng, len(out))
	val := out[i]
	if i < j {
		copy(out[i:j], out[i+1:j+1])
	} else {
		copy(out[j+1:i+1], out[j:i])
	}
	out[j] = val
	return out
}

func twoPositions(rng *rand.Rand, n int) (int, int) {
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}

// newGaussian perturbs every coordinate by N(0, σ²), σ being the job's
// mutation factor times the bounds width (0.1 when unset), and clamps the
// result into the problem bounds.
func newGaussian(job *optimization.JobSpec) (optimization.VariatorFunc, error) {
	b := job.ProblemBounds
	scale := job.MutationFactor
	if scale <= 0 {
		scale = 0.1
	}
	sigma := scale * b.Width()
	return func(rng *rand.Rand, values []float64) []float64 {
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = b.Clamp(v + rng.NormFloat64()*sigma)
		}
		return out
	}, nil
}

// newBitFlip encodes each coordinate on bit_computing bits, flips one
// random bit of one random coordinate and decodes the result.
func newBitFlip(job *optimization.JobSpec) (optimization.VariatorFunc, error) {
	width := job.BitComputing
	if width <= 0 || width > 52 {
		return nil, optimization.NewConfigurationError("optimizer %q: bit_flip needs bit_computing in [1, 52], got %d", job.OptimizerID, width)
	}
	b := job.ProblemBounds
	return func(rng *rand.Rand, values []float64) []float64 {
		if len(values) == 0 {
			return nil
		}
		bits := optimization.FloatToBinary(values, width, b)
		word := bits[rng.Intn(len(bits))]
		k := rng.Intn(width)
		word[k] ^= 1
		return optimization.BinaryToFloat(bits, b)
	}, nil
}
