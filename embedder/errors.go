package embedder

import "errors"

// ErrUnavailable is returned when the backing model cannot be reached or
// answers with something that is not a usable vector.
var ErrUnavailable = errors.New("embedding unavailable")
