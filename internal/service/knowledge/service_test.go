package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/support/embedder"
	"github.com/w-h-a/support/retriever"
	"github.com/w-h-a/support/storer"
	"github.com/w-h-a/support/storer/memory"
)

// indexEmbedder maps "Q<n> ..." to the vector (n, 1) so every document
// gets a distinct direction that can be found again.
type indexEmbedder struct {
	mtx      sync.Mutex
	failures int
	calls    int
	sizes    []int
}

func (e *indexEmbedder) vector(text string) []float32 {
	var n int
	fmt.Sscanf(text, "Q%d", &n)
	return []float32{float32(n), 1}
}

func (e *indexEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *indexEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.calls++
	if e.failures > 0 {
		e.failures--
		return nil, embedder.Unavailable(errors.New("model loading"))
	}

	e.sizes = append(e.sizes, len(texts))

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

type downStorer struct {
	storer.Storer
}

func (downStorer) Count(ctx context.Context) (int, error) {
	return 0, storer.Unavailable(errors.New("dial tcp: refused"))
}

func newService(emb embedder.Embedder, s storer.Storer, batchSize int, retries uint) *Service {
	r := retriever.NewRetriever(retriever.WithEmbedder(emb), retriever.WithStorer(s))
	svc := New(emb, s, r, batchSize, 2, retries, nil)
	svc.retryInterval = time.Millisecond
	return svc
}

func docs(n int) []storer.Document {
	out := make([]storer.Document, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, storer.Document{
			Id:       fmt.Sprintf("doc_%d", i),
			Title:    fmt.Sprintf("Q%d question", i),
			Content:  strings.Repeat("word ", 300),
			Category: "orders",
		})
	}
	return out
}

func TestAdd(t *testing.T) {
	emb := &indexEmbedder{}
	store := memory.NewStorer(storer.WithDimension(2))
	svc := newService(emb, store, 32, 0)

	doc, err := svc.Add(context.Background(), storer.Document{Title: "Q7 Where is my order?", Content: "Track it in your account."})
	require.NoError(t, err)

	assert.NotEmpty(t, doc.Id)
	assert.Equal(t, DefaultCategory, doc.Category)
	assert.Equal(t, DefaultProduct, doc.Product)

	matches, err := svc.Search(context.Background(), "Q7", 1, "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, doc.Id, matches[0].Id)
	assert.Equal(t, "general", matches[0].Category)

	_, err = svc.Add(context.Background(), storer.Document{Title: "  ", Content: "x"})
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestAddBatch_PreservesAssociation(t *testing.T) {
	emb := &indexEmbedder{}
	store := memory.NewStorer(storer.WithDimension(2))
	svc := newService(emb, store, 3, 0)

	n, err := svc.AddBatch(context.Background(), docs(10))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, 10, svc.Count(context.Background()))

	assert.Equal(t, 4, emb.calls)
	assert.ElementsMatch(t, []int{3, 3, 3, 1}, emb.sizes)

	for i := 1; i <= 10; i++ {
		matches, err := store.Query(context.Background(), emb.vector(fmt.Sprintf("Q%d", i)), 1, nil)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, fmt.Sprintf("doc_%d", i), matches[0].Id)
		assert.LessOrEqual(t, utf8.RuneCountInString(matches[0].Content), ContentBudget)
	}
}

func TestAddBatch_Retries(t *testing.T) {
	t.Run("recovers within budget", func(t *testing.T) {
		emb := &indexEmbedder{failures: 2}
		store := memory.NewStorer(storer.WithDimension(2))
		svc := newService(emb, store, 10, 3)

		n, err := svc.AddBatch(context.Background(), docs(4))
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.Equal(t, 3, emb.calls)
	})

	t.Run("gives up and stores nothing", func(t *testing.T) {
		emb := &indexEmbedder{failures: 5}
		store := memory.NewStorer(storer.WithDimension(2))
		svc := newService(emb, store, 10, 1)

		_, err := svc.AddBatch(context.Background(), docs(4))
		assert.True(t, errors.Is(err, embedder.ErrUnavailable))
		assert.Equal(t, 2, emb.calls)
		assert.Equal(t, 0, svc.Count(context.Background()))
	})
}

func TestAddBatch_RejectsInvalidUpFront(t *testing.T) {
	emb := &indexEmbedder{}
	svc := newService(emb, memory.NewStorer(storer.WithDimension(2)), 3, 0)

	batch := docs(3)
	batch[1].Content = ""

	_, err := svc.AddBatch(context.Background(), batch)
	assert.ErrorIs(t, err, ErrInvalidDocument)
	assert.Zero(t, emb.calls)
}

func TestCountAndClear(t *testing.T) {
	emb := &indexEmbedder{}
	store := memory.NewStorer(storer.WithDimension(2))
	svc := newService(emb, store, 3, 0)

	_, err := svc.AddBatch(context.Background(), docs(5))
	require.NoError(t, err)
	assert.Equal(t, 5, svc.Count(context.Background()))

	require.NoError(t, svc.Clear(context.Background()))
	assert.Equal(t, 0, svc.Count(context.Background()))

	down := newService(emb, downStorer{}, 3, 0)
	assert.Equal(t, 0, down.Count(context.Background()))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short", in: "hello world", limit: 20, want: "hello world"},
		{name: "cut on space", in: "hello world again", limit: 11, want: "hello world"},
		{name: "backs off mid word", in: "hello world again", limit: 14, want: "hello world"},
		{name: "single long word", in: "abcdefghij", limit: 4, want: "abcd"},
		{name: "multibyte", in: "héllo wörld ünïcode", limit: 13, want: "héllo wörld"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Truncate(tc.in, tc.limit)
			assert.Equal(t, tc.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, utf8.RuneCountInString(got), tc.limit)
		})
	}
}

func TestCategories(t *testing.T) {
	got := Categories()
	assert.Len(t, got, 20)
	assert.Contains(t, got, "tech_support")

	got[0] = "changed"
	assert.Equal(t, "shipping", Categories()[0])
}
