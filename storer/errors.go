package storer

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable        = errors.New("vector store unavailable")
	ErrDimensionMismatch  = errors.New("vector dimension mismatch")
	ErrCollectionMismatch = errors.New("existing collection does not match configuration")
	ErrUnsupportedMetric  = errors.New("unsupported metric")
)

func Unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

// CheckDimension rejects vectors whose length differs from dim.
func CheckDimension(vector []float32, dim int) error {
	if len(vector) != dim {
		return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(vector), dim)
	}
	return nil
}
