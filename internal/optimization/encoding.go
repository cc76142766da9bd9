package optimization

import "math"

// BinaryToFloat decodes one bit string per coordinate into a real value
// rescaled within b. Every bit string is read most significant bit first;
// its width should match the configured bit_computing.
func BinaryToFloat(bits [][]uint8, b Bounds) []float64 {
	out := make([]float64, len(bits))
	for i, word := range bits {
		if len(word) == 0 {
			out[i] = b.Lower
			continue
		}
		var v uint64
		for _, bit := range word {
			v = v<<1 | uint64(bit&1)
		}
		max := math.Exp2(float64(len(word))) - 1
		out[i] = float64(v)/max*b.Width() + b.Lower
	}
	return out
}

// FloatToBinary is the inverse of BinaryToFloat, rounding each coordinate to
// the nearest representable width-bit value.
func FloatToBinary(values []float64, width int, b Bounds) [][]uint8 {
	out := make([][]uint8, len(values))
	max := math.Exp2(float64(width)) - 1
	for i, x := range values {
		frac := 0.0
		if b.Width() > 0 {
			frac = (b.Clamp(x) - b.Lower) / b.Width()
		}
		v := uint64(math.Round(frac * max))
		word := make([]uint8, width)
		for k := width - 1; k >= 0; k-- {
			word[k] = uint8(v & 1)
			v >>= 1
		}
		out[i] = word
	}
	return out
}
