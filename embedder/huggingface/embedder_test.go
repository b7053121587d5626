package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/support/embedder"
)

func TestEmbedMany_SingleRoundTrip(t *testing.T) {
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++

		assert.Equal(t, "/pipeline/feature-extraction/test-model", r.URL.Path)
		assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))

		var req featureExtractionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"a", "b", "c"}, req.Inputs)
		assert.True(t, req.Options.WaitForModel)

		json.NewEncoder(w).Encode([][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	}))
	defer srv.Close()

	e := NewEmbedder(
		embedder.WithLocation(srv.URL),
		embedder.WithApiKey("hf-token"),
		embedder.WithModel("test-model"),
		embedder.WithDimension(3),
	)

	vectors, err := e.EmbedMany(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, [][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, vectors)
}

func TestEmbed_MeanPoolsTokenVectors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([][][]float32{{{1, 2}, {3, 4}}})
	}))
	defer srv.Close()

	e := NewEmbedder(embedder.WithLocation(srv.URL), embedder.WithDimension(2))

	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 3}, vec)
}

func TestEmbed_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model loading", http.StatusServiceUnavailable)
			},
		},
		{
			name: "wrong dimension",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode([][]float32{{1, 2}})
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":"nope"}`))
			},
		},
		{
			name: "empty vector",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[[]]`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			e := NewEmbedder(embedder.WithLocation(srv.URL), embedder.WithDimension(3))

			_, err := e.Embed(context.Background(), "hello")
			require.Error(t, err)
			assert.True(t, errors.Is(err, embedder.ErrUnavailable))
		})
	}
}

func TestEmbed_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	location := srv.URL
	srv.Close()

	e := NewEmbedder(embedder.WithLocation(location))

	_, err := e.Embed(context.Background(), "hello")
	assert.True(t, errors.Is(err, embedder.ErrUnavailable))
}
