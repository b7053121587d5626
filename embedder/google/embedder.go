package google

import (
	"context"
	"errors"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/support/embedder"
	"go.uber.org/zap"
	genaiopt "google.golang.org/api/option"
)

type googleEmbedder struct {
	options embedder.Options
	client  *genai.Client
}

func (e *googleEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedMany(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *googleEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.options.Timeout)
	defer cancel()

	model := e.client.EmbeddingModel(e.options.Model)

	batch := model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	rsp, err := model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, embedder.Unavailable(err)
	}

	return vectors(rsp, len(texts), e.options.Dimension)
}

// vectors unpacks a batch response in input order and validates it.
func vectors(rsp *genai.BatchEmbedContentsResponse, want int, dim int) ([][]float32, error) {
	if rsp == nil || len(rsp.Embeddings) == 0 {
		return nil, embedder.Unavailable(errors.New("no response from Google"))
	}

	out := make([][]float32, 0, len(rsp.Embeddings))
	for _, emb := range rsp.Embeddings {
		if emb == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, emb.Values)
	}

	if err := embedder.Check(out, want, dim); err != nil {
		return nil, err
	}

	return out, nil
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = "text-embedding-004"
	}

	e := &googleEmbedder{
		options: options,
	}

	client, err := genai.NewClient(
		context.Background(),
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		detail := "failed to create google embedder"
		zap.L().Error(detail, zap.Error(err))
		panic(detail)
	}

	e.client = client

	return e
}
