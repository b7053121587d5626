package openai

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/w-h-a/support/generator"
)

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *openAIGenerator) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.options.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: g.options.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		Temperature: g.options.Temperature,
		MaxTokens:   g.options.MaxTokens,
	}

	rsp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", generator.Unavailable(err)
	}

	if len(rsp.Choices) == 0 || len(strings.TrimSpace(rsp.Choices[0].Message.Content)) == 0 {
		return "", generator.Unavailable(generator.ErrEmptyResponse)
	}

	return rsp.Choices[0].Message.Content, nil
}

// NewGenerator talks to any OpenAI-compatible chat endpoint. Pointing
// Location at https://api.groq.com/openai/v1 serves Groq-hosted models.
func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	if len(options.Model) == 0 {
		options.Model = openai.GPT4oMini
	}

	g := &openAIGenerator{
		options: options,
	}

	config := openai.DefaultConfig(options.ApiKey)
	if len(options.Location) > 0 {
		config.BaseURL = strings.TrimRight(options.Location, "/")
	}

	g.client = openai.NewClientWithConfig(config)

	return g
}
