package storer

import (
	"context"
	"time"
)

type Option func(*Options)

type Options struct {
	Location   string
	ApiKey     string
	Collection string
	Dimension  int
	Metric     Metric
	BatchSize  int
	Timeout    time.Duration
	Context    context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithCollection(name string) Option {
	return func(o *Options) {
		o.Collection = name
	}
}

func WithDimension(dim int) Option {
	return func(o *Options) {
		o.Dimension = dim
	}
}

func WithMetric(metric Metric) Option {
	return func(o *Options) {
		o.Metric = metric
	}
}

func WithBatchSize(size int) Option {
	return func(o *Options) {
		o.BatchSize = size
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Collection: "customer-support",
		Dimension:  384,
		Metric:     MetricCosine,
		BatchSize:  100,
		Timeout:    30 * time.Second,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
