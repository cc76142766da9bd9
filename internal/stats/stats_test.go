package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name  string
		x     []float64
		min   float64
		max   float64
		mean  float64
		stdev float64
	}{
		{"single", []float64{7}, 7, 7, 7, 0},
		{"four", []float64{4, 1, 3, 2}, 1, 4, 2.5, 1.2909944487358056},
		{"constant", []float64{5, 5, 5}, 5, 5, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Describe(tt.x)
			assert.Equal(t, len(tt.x), s.N)
			assert.Equal(t, tt.min, s.Min)
			assert.Equal(t, tt.max, s.Max)
			assert.InDelta(t, tt.mean, s.Mean, 1e-12)
			assert.InDelta(t, tt.stdev, s.Stdev, 1e-12)
		})
	}
}

func TestDescribeEmpty(t *testing.T) {
	s := Describe(nil)
	assert.Zero(t, s.N)
	assert.True(t, math.IsNaN(s.Min))
	assert.True(t, math.IsNaN(s.Mean))
	assert.True(t, math.IsNaN(s.Stdev))
}

func TestRankSum(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		z, p float64
	}{
		{"separated", []float64{1, 2, 3}, []float64{4, 5, 6}, -1.9639610121239315, 0.049534613435626706},
		{"ties", []float64{1, 2, 2}, []float64{2, 3, 4}, -1.6230861351605887, 0.10457099306437279},
		{"identical", []float64{3, 3}, []float64{3, 3}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z, p := RankSum(tt.x, tt.y)
			assert.InDelta(t, tt.z, z, 1e-9)
			assert.InDelta(t, tt.p, p, 1e-6)
		})
	}

	z, p := RankSum(nil, []float64{1})
	assert.True(t, math.IsNaN(z))
	assert.True(t, math.IsNaN(p))
}

func TestRankSumSymmetric(t *testing.T) {
	x := []float64{10, 12, 9, 15}
	y := []float64{11, 20, 18, 14, 13}
	z1, p1 := RankSum(x, y)
	z2, p2 := RankSum(y, x)
	assert.InDelta(t, -z1, z2, 1e-12)
	assert.InDelta(t, p1, p2, 1e-12)
}

func TestSummarize(t *testing.T) {
	out := Summarize(map[string][]float64{
		"SA":  {4, 5, 6},
		"GA":  {1, 2, 3},
		"PSO": nil,
	})
	require.Len(t, out, 3)

	assert.Equal(t, []string{"GA", "PSO", "SA"}, []string{out[0].ID, out[1].ID, out[2].ID})
	for _, s := range out {
		assert.Equal(t, "GA", s.Reference)
	}

	assert.Equal(t, 1.0, out[0].Wilcoxon, "reference against itself")
	assert.True(t, math.IsNaN(out[1].Wilcoxon), "empty sample")
	assert.InDelta(t, 0.049534613435626706, out[2].Wilcoxon, 1e-6)
	assert.InDelta(t, 5.0, out[2].Mean, 1e-12)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Empty(t, Summarize(nil))

	out := Summarize(map[string][]float64{"SA": {}})
	require.Len(t, out, 1)
	assert.Empty(t, out[0].Reference)
	assert.True(t, math.IsNaN(out[0].Wilcoxon))
}
