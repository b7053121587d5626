package storer

import "context"

// Storer persists document vectors in a single collection fixed at
// construction time and answers nearest-neighbour queries over them.
type Storer interface {
	// EnsureCollection creates the configured collection when absent. An
	// existing collection with a different dimension or metric is reported
	// as ErrCollectionMismatch.
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, rec Record) error
	// UpsertBatch writes records in chunks of the backend batch size.
	// Chunks are committed independently, so a failure leaves earlier
	// chunks in place.
	UpsertBatch(ctx context.Context, recs []Record) error
	Query(ctx context.Context, vector []float32, topK int, filter *Filter) ([]Match, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}
