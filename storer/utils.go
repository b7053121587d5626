package storer

import (
	"context"
	"math"
	"sort"
)

// SortMatches orders matches by descending score, breaking ties by id so
// results are reproducible.
func SortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Id < matches[j].Id
	})
}

// Chunk splits recs into consecutive slices of at most size records.
func Chunk(recs []Record, size int) [][]Record {
	if size < 1 {
		size = 1
	}

	chunks := make([][]Record, 0, (len(recs)+size-1)/size)
	for start := 0; start < len(recs); start += size {
		end := min(start+size, len(recs))
		chunks = append(chunks, recs[start:end])
	}

	return chunks
}

// UpsertChunked applies write to each chunk in order and stops at the
// first failure. Chunks written before the failure stay committed.
func UpsertChunked(ctx context.Context, recs []Record, size int, write func(ctx context.Context, chunk []Record) error) error {
	for _, chunk := range Chunk(recs, size) {
		if err := write(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

// CountOrZero reports the number of stored vectors. An unreachable
// backend counts as empty: the figure is informational and must never fail
// the caller.
func CountOrZero(ctx context.Context, s Storer) int {
	n, err := s.Count(ctx)
	if err != nil {
		return 0
	}
	return n
}

func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func DotProduct(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}

	return sum
}

// EuclideanSimilarity maps distance into (0, 1], identical vectors scoring 1.
func EuclideanSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}

	return 1 / (1 + math.Sqrt(sum))
}

func Similarity(metric Metric, a, b []float32) (float64, error) {
	switch metric {
	case MetricCosine:
		return CosineSimilarity(a, b), nil
	case MetricDot:
		return DotProduct(a, b), nil
	case MetricEuclidean:
		return EuclideanSimilarity(a, b), nil
	default:
		return 0, ErrUnsupportedMetric
	}
}
