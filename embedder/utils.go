package embedder

import (
	"fmt"
	"math"
)

// Check verifies that a backend answered with exactly want vectors of
// length dim. Anything else is reported as ErrUnavailable.
func Check(vectors [][]float32, want int, dim int) error {
	if len(vectors) != want {
		return fmt.Errorf("%w: expected %d vectors, got %d", ErrUnavailable, want, len(vectors))
	}

	for i, vec := range vectors {
		if len(vec) == 0 {
			return fmt.Errorf("%w: empty vector at position %d", ErrUnavailable, i)
		}
		if dim > 0 && len(vec) != dim {
			return fmt.Errorf("%w: vector at position %d has dimension %d, expected %d", ErrUnavailable, i, len(vec), dim)
		}
	}

	return nil
}

// Normalize scales vec to unit length. Zero vectors are returned as is.
func Normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}

	return normalized
}

// Unavailable wraps a transport or decoding failure.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
