package retriever

import (
	"context"

	"github.com/w-h-a/support/embedder"
	"github.com/w-h-a/support/storer"
)

type Option func(*Options)

type Options struct {
	Embedder embedder.Embedder
	Storer   storer.Storer
	Context  context.Context
}

func WithEmbedder(e embedder.Embedder) Option {
	return func(o *Options) {
		o.Embedder = e
	}
}

func WithStorer(s storer.Storer) Option {
	return func(o *Options) {
		o.Storer = s
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type RetrieveOption func(*RetrieveOptions)

type RetrieveOptions struct {
	TopK     int
	Category string
}

func RetrieveWithTopK(k int) RetrieveOption {
	return func(o *RetrieveOptions) {
		o.TopK = k
	}
}

// RetrieveWithCategory restricts matches to one category. An empty
// category means no restriction.
func RetrieveWithCategory(category string) RetrieveOption {
	return func(o *RetrieveOptions) {
		o.Category = category
	}
}

func NewRetrieveOptions(opts ...RetrieveOption) RetrieveOptions {
	options := RetrieveOptions{
		TopK: 5,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
