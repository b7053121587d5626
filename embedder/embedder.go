package embedder

import "context"

// Embedder turns text into fixed-length vectors. EmbedMany must issue a
// single backend round trip for the whole batch and return the vectors
// in input order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
}
