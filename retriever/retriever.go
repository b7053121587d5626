package retriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/w-h-a/support/storer"
)

var ErrUnavailable = errors.New("retrieval unavailable")

type Retriever struct {
	options Options
}

// Retrieve embeds query and returns the store's ranked matches as is.
// Either dependency failing fails the whole call.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts ...RetrieveOption) ([]storer.Match, error) {
	options := NewRetrieveOptions(opts...)

	if options.TopK < 1 {
		return nil, nil
	}

	vector, err := r.options.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var filter *storer.Filter
	if len(options.Category) > 0 {
		filter = storer.Eq(storer.KeyCategory, options.Category)
	}

	matches, err := r.options.Storer.Query(ctx, vector, options.TopK, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return matches, nil
}

func NewRetriever(opts ...Option) *Retriever {
	options := NewOptions(opts...)

	if options.Embedder == nil || options.Storer == nil {
		panic("retriever requires an embedder and a storer")
	}

	return &Retriever{
		options: options,
	}
}
