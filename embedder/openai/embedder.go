package openai

import (
	"context"
	"errors"
	"net/http"
	"sort"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/support/embedder"
)

type openAIEmbedder struct {
	options embedder.Options
	client  *openai.Client
}

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *openAIEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	rsp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.options.Model),
		Dimensions: e.options.Dimension,
	})
	if err != nil {
		return nil, embedder.Unavailable(err)
	}

	if len(rsp.Data) == 0 {
		return nil, embedder.Unavailable(errors.New("no response from OpenAI"))
	}

	data := rsp.Data
	sort.SliceStable(data, func(i, j int) bool {
		return data[i].Index < data[j].Index
	})

	vectors := make([][]float32, 0, len(data))
	for _, d := range data {
		vectors = append(vectors, d.Embedding)
	}

	if err := embedder.Check(vectors, len(texts), e.options.Dimension); err != nil {
		return nil, err
	}

	return vectors, nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = string(openai.SmallEmbedding3)
	}

	e := &openAIEmbedder{
		options: options,
	}

	config := openai.DefaultConfig(options.ApiKey)
	if len(options.Location) > 0 {
		config.BaseURL = options.Location
	}
	config.HTTPClient = &http.Client{
		Timeout: options.Timeout,
	}

	e.client = openai.NewClientWithConfig(config)

	return e
}
