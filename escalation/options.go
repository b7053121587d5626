package escalation

import (
	"context"
	"slices"
)

type Option func(*Options)

type Options struct {
	Threshold float64
	Lexicon   []string
	Context   context.Context
}

func WithThreshold(threshold float64) Option {
	return func(o *Options) {
		o.Threshold = threshold
	}
}

// WithLexicon replaces the default phrase list.
func WithLexicon(phrases ...string) Option {
	return func(o *Options) {
		o.Lexicon = phrases
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Threshold: DefaultThreshold,
		Lexicon:   slices.Clone(DefaultLexicon),
		Context:   context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
