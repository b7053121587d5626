package huggingface

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
	defaultLocation = "https://api-inference.huggingface.co"
	defaultModel    = "sentence-transformers/all-MiniLM-L6-v2"
)

type huggingFaceEmbedder struct {
	options embedder.Options
	client  *http.Client
}

func (e *huggingFaceEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *huggingFaceEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := featureExtractionRequest{
		Inputs:  texts,
		Options: featureExtractionOptions{WaitForModel: true},
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, embedder.Unavailable(err)
	}

	u := fmt.Sprintf("%s/pipeline/feature-extraction/%s", strings.TrimRight(e.options.Location, "/"), e.options.Model)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, embedder.Unavailable(err)
	}

	request.Header.Set("Content-Type", "application/json")

	if len(e.options.ApiKey) > 0 {
		request.Header.Set("Authorization", "Bearer "+e.options.ApiKey)
	}

	response, err := e.client.Do(request)
	if err != nil {
		return nil, embedder.Unavailable(err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, embedder.Unavailable(err)
	}

	if response.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: huggingface http %d: %s", embedder.ErrUnavailable, response.StatusCode, string(payload))
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, embedder.Unavailable(err)
	}

	vectors := make([][]float32, 0, len(raw))
	for _, item := range raw {
		vec, err := decodeVector(item)
		if err != nil {
			return nil, embedder.Unavailable(err)
		}
		vectors = append(vectors, vec)
	}

	if err := embedder.Check(vectors, len(texts), e.options.Dimension); err != nil {
		return nil, err
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

	e := &huggingFaceEmbedder{
		options: options,
		client: &http.Client{
			Timeout: options.Timeout,
		},
	}

	return e
}
