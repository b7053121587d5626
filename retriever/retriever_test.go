package retriever

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/support/embedder"
	"github.com/w-h-a/support/storer"
	"github.com/w-h-a/support/storer/memory"
)

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.vectors[text], nil
}

func (e *stubEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type brokenStorer struct {
	storer.Storer
}

func (brokenStorer) Query(ctx context.Context, vec []float32, topK int, filter *storer.Filter) ([]storer.Match, error) {
	return nil, storer.Unavailable(errors.New("connection reset"))
}

func seeded(t *testing.T) storer.Storer {
	s := memory.NewStorer(storer.WithDimension(2))

	docs := []struct {
		doc storer.Document
		vec []float32
	}{
		{storer.Document{Id: "doc_1", Title: "Returns", Content: "30 days", Category: "returns"}, []float32{1, 0}},
		{storer.Document{Id: "doc_2", Title: "Shipping", Content: "3-5 days", Category: "shipping"}, []float32{0, 1}},
		{storer.Document{Id: "doc_3", Title: "Refunds", Content: "to card", Category: "returns"}, []float32{0.8, 0.2}},
	}

	for _, d := range docs {
		require.NoError(t, s.Upsert(context.Background(), storer.Record{Id: d.doc.Id, Vector: d.vec, Metadata: d.doc.Metadata()}))
	}

	return s
}

func TestRetrieve(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{"how do I return?": {1, 0}}}
	r := NewRetriever(WithEmbedder(emb), WithStorer(seeded(t)))

	t.Run("ranked by similarity", func(t *testing.T) {
		matches, err := r.Retrieve(context.Background(), "how do I return?", RetrieveWithTopK(2))
		require.NoError(t, err)

		require.Len(t, matches, 2)
		assert.Equal(t, "doc_1", matches[0].Id)
		assert.Equal(t, "doc_3", matches[1].Id)
		assert.Equal(t, "Returns", matches[0].Title)
	})

	t.Run("category filter", func(t *testing.T) {
		matches, err := r.Retrieve(context.Background(), "how do I return?", RetrieveWithCategory("shipping"))
		require.NoError(t, err)

		require.Len(t, matches, 1)
		assert.Equal(t, "doc_2", matches[0].Id)
	})

	t.Run("deterministic", func(t *testing.T) {
		first, err := r.Retrieve(context.Background(), "how do I return?")
		require.NoError(t, err)
		second, err := r.Retrieve(context.Background(), "how do I return?")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestRetrieve_EmptyStore(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{"q": {1, 0}}}
	r := NewRetriever(WithEmbedder(emb), WithStorer(memory.NewStorer(storer.WithDimension(2))))

	matches, err := r.Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRetrieve_Failures(t *testing.T) {
	t.Run("embedder down", func(t *testing.T) {
		emb := &stubEmbedder{err: embedder.Unavailable(errors.New("503"))}
		r := NewRetriever(WithEmbedder(emb), WithStorer(seeded(t)))

		matches, err := r.Retrieve(context.Background(), "q")
		assert.Nil(t, matches)
		assert.True(t, errors.Is(err, ErrUnavailable))
		assert.True(t, errors.Is(err, embedder.ErrUnavailable))
	})

	t.Run("store down", func(t *testing.T) {
		emb := &stubEmbedder{vectors: map[string][]float32{"q": {1, 0}}}
		r := NewRetriever(WithEmbedder(emb), WithStorer(brokenStorer{}))

		matches, err := r.Retrieve(context.Background(), "q")
		assert.Nil(t, matches)
		assert.True(t, errors.Is(err, ErrUnavailable))
		assert.True(t, errors.Is(err, storer.ErrUnavailable))
	})

	t.Run("zero top k skips the backends", func(t *testing.T) {
		emb := &stubEmbedder{}
		r := NewRetriever(WithEmbedder(emb), WithStorer(brokenStorer{}))

		matches, err := r.Retrieve(context.Background(), "q", RetrieveWithTopK(0))
		require.NoError(t, err)
		assert.Empty(t, matches)
		assert.Zero(t, emb.calls)
	})
}
