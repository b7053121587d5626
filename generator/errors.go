package generator

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable   = errors.New("generation unavailable")
	ErrEmptyResponse = errors.New("model returned no text")
)

func Unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
