package support

import (
	"context"

	"github.com/w-h-a/support/escalation"
	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	TopK         int
	HistoryLimit int
	Policy       escalation.Policy
	BatchSize    int
	FanOut       int
	Retries      uint
	Backends     Backends
	Logger       *zap.Logger
	Context      context.Context
}

// Backends names the configured implementations for stats reporting.
type Backends struct {
	Embedder string `json:"embedder"`
	VectorDB string `json:"vector_db"`
	LLM      string `json:"llm"`
	Ticketer string `json:"ticketing,omitempty"`
}

func WithTopK(k int) Option {
	return func(o *Options) {
		o.TopK = k
	}
}

func WithHistoryLimit(n int) Option {
	return func(o *Options) {
		o.HistoryLimit = n
	}
}

func WithPolicy(p escalation.Policy) Option {
	return func(o *Options) {
		o.Policy = p
	}
}

func WithBatchSize(n int) Option {
	return func(o *Options) {
		o.BatchSize = n
	}
}

func WithFanOut(n int) Option {
	return func(o *Options) {
		o.FanOut = n
	}
}

func WithRetries(n uint) Option {
	return func(o *Options) {
		o.Retries = n
	}
}

func WithBackends(b Backends) Option {
	return func(o *Options) {
		o.Backends = b
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		TopK:         5,
		HistoryLimit: 5,
		Policy:       escalation.NewPolicy(),
		BatchSize:    32,
		FanOut:       4,
		Retries:      3,
		Logger:       zap.L(),
		Context:      context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
