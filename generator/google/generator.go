package google

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/w-h-a/support/generator"
	"go.uber.org/zap"
	genaiopt "google.golang.org/api/option"
)

type googleGenerator struct {
	options generator.Options
	client  *genai.Client
}

func (g *googleGenerator) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.options.Timeout)
	defer cancel()

	model := g.client.GenerativeModel(g.options.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	model.SetTemperature(g.options.Temperature)
	model.SetMaxOutputTokens(int32(g.options.MaxTokens))

	rsp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", generator.Unavailable(err)
	}

	return completion(rsp)
}

// completion joins the text parts of the first candidate. A candidate
// without text, such as a lone function call, counts as no completion.
func completion(rsp *genai.GenerateContentResponse) (string, error) {
	if rsp == nil || len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil {
		return "", generator.Unavailable(generator.ErrEmptyResponse)
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	if len(strings.TrimSpace(b.String())) == 0 {
		return "", generator.Unavailable(generator.ErrEmptyResponse)
	}

	return b.String(), nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = "gemini-1.5-flash"
	}

	g := &googleGenerator{
		options: options,
	}

	client, err := genai.NewClient(
		context.Background(),
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		detail := "failed to create google generator client"
		zap.L().Error(detail, zap.Error(err))
		panic(detail)
	}

	g.client = client

	return g
}
