package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/w-h-a/support/storer"
)

type memoryStorer struct {
	options storer.Options
	records map[string]storer.Record
	mtx     sync.RWMutex
}

func (s *memoryStorer) EnsureCollection(ctx context.Context) error {
	switch s.options.Metric {
	case storer.MetricCosine, storer.MetricDot, storer.MetricEuclidean:
		return nil
	default:
		return storer.ErrUnsupportedMetric
	}
}

func (s *memoryStorer) Upsert(ctx context.Context, rec storer.Record) error {
	if err := storer.CheckDimension(rec.Vector, s.options.Dimension); err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.put(rec)

	return nil
}

func (s *memoryStorer) UpsertBatch(ctx context.Context, recs []storer.Record) error {
	return storer.UpsertChunked(ctx, recs, s.options.BatchSize, func(ctx context.Context, chunk []storer.Record) error {
		for _, rec := range chunk {
			if err := storer.CheckDimension(rec.Vector, s.options.Dimension); err != nil {
				return err
			}
		}

		s.mtx.Lock()
		defer s.mtx.Unlock()

		for _, rec := range chunk {
			s.put(rec)
		}

		return nil
	})
}

func (s *memoryStorer) put(rec storer.Record) {
	cpy := make([]float32, len(rec.Vector))
	copy(cpy, rec.Vector)

	s.records[rec.Id] = storer.Record{
		Id:       rec.Id,
		Vector:   cpy,
		Metadata: maps.Clone(rec.Metadata),
	}
}

func (s *memoryStorer) Query(ctx context.Context, vector []float32, topK int, filter *storer.Filter) ([]storer.Match, error) {
	if topK < 1 {
		return nil, nil
	}

	if err := storer.CheckDimension(vector, s.options.Dimension); err != nil {
		return nil, err
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	candidates := make([]storer.Match, 0, len(s.records))

	for _, rec := range s.records {
		if !filter.Matches(rec.Metadata) {
			continue
		}

		score, err := storer.Similarity(s.options.Metric, vector, rec.Vector)
		if err != nil {
			return nil, err
		}

		candidates = append(candidates, storer.NewMatch(rec.Id, score, rec.Metadata))
	}

	storer.SortMatches(candidates)

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	return candidates, nil
}

func (s *memoryStorer) Count(ctx context.Context) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.records), nil
}

func (s *memoryStorer) DeleteAll(ctx context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.records = map[string]storer.Record{}
	return nil
}

func NewStorer(opts ...storer.Option) storer.Storer {
	options := storer.NewOptions(opts...)

	s := &memoryStorer{
		options: options,
		records: map[string]storer.Record{},
		mtx:     sync.RWMutex{},
	}

	return s
}
