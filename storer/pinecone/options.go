package pinecone

import (
	"context"

	"github.com/w-h-a/support/storer"
)

type controlPlaneKey struct{}

// WithControlPlane overrides the index management endpoint.
func WithControlPlane(loc string) storer.Option {
	return func(o *storer.Options) {
		o.Context = context.WithValue(o.Context, controlPlaneKey{}, loc)
	}
}

func ControlPlaneFrom(ctx context.Context) (string, bool) {
	loc, ok := ctx.Value(controlPlaneKey{}).(string)
	return loc, ok
}

type regionKey struct{}

// WithServerless sets the cloud and region used when the index has to be
// created.
func WithServerless(cloud string, region string) storer.Option {
	return func(o *storer.Options) {
		o.Context = context.WithValue(o.Context, regionKey{}, serverless{Cloud: cloud, Region: region})
	}
}

func ServerlessFrom(ctx context.Context) (serverless, bool) {
	s, ok := ctx.Value(regionKey{}).(serverless)
	return s, ok
}
