package main

import (
	"fmt"

	"github.com/w-h-a/support"
	"github.com/w-h-a/support/embedder"
	googleembedder "github.com/w-h-a/support/embedder/google"
	hfembedder "github.com/w-h-a/support/embedder/huggingface"
	ollamaembedder "github.com/w-h-a/support/embedder/ollama"
	openaiembedder "github.com/w-h-a/support/embedder/openai"
	"github.com/w-h-a/support/escalation"
	"github.com/w-h-a/support/generator"
	"github.com/w-h-a/support/generator/anthropic"
	googlegenerator "github.com/w-h-a/support/generator/google"
	openaigenerator "github.com/w-h-a/support/generator/openai"
	sessionmemory "github.com/w-h-a/support/session/memory"
	"github.com/w-h-a/support/storer"
	storermemory "github.com/w-h-a/support/storer/memory"
	"github.com/w-h-a/support/storer/pinecone"
	"github.com/w-h-a/support/storer/postgres"
	"github.com/w-h-a/support/storer/qdrant"
	"github.com/w-h-a/support/ticketer"
	"github.com/w-h-a/support/ticketer/webhook"
	"go.uber.org/zap"
)

func newEmbedder(g *Globals) embedder.Embedder {
	opts := []embedder.Option{
		embedder.WithApiKey(g.EmbedderKey),
		embedder.WithDimension(g.Dimension),
		embedder.WithTimeout(g.EmbedTimeout),
	}

	if len(g.EmbedderLocation) > 0 {
		opts = append(opts, embedder.WithLocation(g.EmbedderLocation))
	}

	if len(g.EmbedderModel) > 0 {
		opts = append(opts, embedder.WithModel(g.EmbedderModel))
	}

	switch g.Embedder {
	case "ollama":
		return ollamaembedder.NewEmbedder(opts...)
	case "openai":
		return openaiembedder.NewEmbedder(opts...)
	case "google":
		return googleembedder.NewEmbedder(opts...)
	default:
		return hfembedder.NewEmbedder(opts...)
	}
}

func newStorer(g *Globals) storer.Storer {
	opts := []storer.Option{
		storer.WithApiKey(g.StorerKey),
		storer.WithCollection(g.Collection),
		storer.WithDimension(g.Dimension),
		storer.WithMetric(storer.Metric(g.Metric)),
		storer.WithTimeout(g.StoreTimeout),
	}

	if len(g.StorerLocation) > 0 {
		opts = append(opts, storer.WithLocation(g.StorerLocation))
	}

	switch g.Storer {
	case "memory":
		return storermemory.NewStorer(opts...)
	case "qdrant":
		return qdrant.NewStorer(opts...)
	case "postgres":
		return postgres.NewStorer(opts...)
	default:
		opts = append(opts, pinecone.WithServerless(g.PineconeCloud, g.PineconeRegion))
		return pinecone.NewStorer(opts...)
	}
}

// generatorOptions fills backend defaults. The openai backend points at
// Groq unless told otherwise; the other backends keep their own model.
func generatorOptions(g *Globals) []generator.Option {
	opts := []generator.Option{
		generator.WithApiKey(g.GeneratorKey),
		generator.WithTemperature(g.Temperature),
		generator.WithMaxTokens(g.MaxTokens),
		generator.WithTimeout(g.GenerateTimeout),
	}

	location := g.GeneratorLocation
	model := g.GeneratorModel

	if g.Generator == "openai" {
		if len(location) == 0 {
			location = groqLocation
		}
		if len(model) == 0 {
			model = groqModel
		}
	}

	if len(location) > 0 && g.Generator != "google" {
		opts = append(opts, generator.WithLocation(location))
	}

	if len(model) > 0 {
		opts = append(opts, generator.WithModel(model))
	}

	return opts
}

func newGenerator(g *Globals) generator.Generator {
	opts := generatorOptions(g)

	switch g.Generator {
	case "anthropic":
		return anthropic.NewGenerator(opts...)
	case "google":
		return googlegenerator.NewGenerator(opts...)
	default:
		return openaigenerator.NewGenerator(opts...)
	}
}

func newTicketer(g *Globals) ticketer.Ticketer {
	return webhook.NewTicketer(
		ticketer.WithLocation(g.WebhookUrl),
		ticketer.WithTimeout(g.WebhookTimeout),
	)
}

func backends(g *Globals) support.Backends {
	b := support.Backends{
		Embedder: g.Embedder,
		VectorDB: g.Storer,
		LLM:      g.Generator,
	}

	if model := generator.NewOptions(generatorOptions(g)...).Model; len(model) > 0 {
		b.LLM = fmt.Sprintf("%s (%s)", g.Generator, model)
	}

	if len(g.WebhookUrl) > 0 {
		b.Ticketer = "webhook"
	}

	return b
}

// newSupport assembles the assistant from the configured backends. Extra
// options are applied after the shared ones.
func newSupport(g *Globals, logger *zap.Logger, opts ...support.Option) *support.Support {
	base := []support.Option{
		support.WithTopK(g.TopK),
		support.WithHistoryLimit(g.History),
		support.WithPolicy(escalation.NewPolicy(escalation.WithThreshold(g.Threshold))),
		support.WithBackends(backends(g)),
		support.WithLogger(logger),
	}

	return support.New(
		newEmbedder(g),
		newStorer(g),
		newGenerator(g),
		sessionmemory.NewStore(),
		newTicketer(g),
		append(base, opts...)...,
	)
}
