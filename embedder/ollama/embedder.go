package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/w-h-a/support/embedder"
)

const (
	defaultLocation = "http://localhost:11434"
	defaultModel    = "all-minilm"
)

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// ollamaEmbedder talks to a locally served model. Vectors are normalized
// so cosine and dot product rank the same way.
type ollamaEmbedder struct {
	options embedder.Options
	client  *http.Client
}

func (e *ollamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *ollamaEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	data, err := json.Marshal(embedRequest{Model: e.options.Model, Input: texts})
	if err != nil {
		return nil, embedder.Unavailable(err)
	}

	u := strings.TrimRight(e.options.Location, "/") + "/api/embed"

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, embedder.Unavailable(err)
	}

	request.Header.Set("Content-Type", "application/json")

	response, err := e.client.Do(request)
	if err != nil {
		return nil, embedder.Unavailable(err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, embedder.Unavailable(err)
	}

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ollama http %d: %s", embedder.ErrUnavailable, response.StatusCode, string(payload))
	}

	var rsp embedResponse
	if err := json.Unmarshal(payload, &rsp); err != nil {
		return nil, embedder.Unavailable(err)
	}

	if err := embedder.Check(rsp.Embeddings, len(texts), e.options.Dimension); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(rsp.Embeddings))
	for i, vec := range rsp.Embeddings {
		vectors[i] = embedder.Normalize(vec)
	}

	return vectors, nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Location) == 0 {
		options.Location = defaultLocation
	}

	if len(options.Model) == 0 {
		options.Model = defaultModel
	}

	e := &ollamaEmbedder{
		options: options,
		client: &http.Client{
			Timeout: options.Timeout,
		},
	}

	return e
}
