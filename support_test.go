package support

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sessionmemory "github.com/w-h-a/support/session/memory"
	"github.com/w-h-a/support/storer"
	storermemory "github.com/w-h-a/support/storer/memory"
	"github.com/w-h-a/support/ticketer"
	"go.uber.org/zap"
)

type axisEmbedder struct{}

// Texts mentioning "ship" point one way, everything else the other.
func (axisEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if containsShip(text) {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

func (e axisEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i], _ = e.Embed(ctx, text)
	}
	return out, nil
}

func containsShip(s string) bool {
	for i := 0; i+4 <= len(s); i++ {
		if s[i:i+4] == "ship" {
			return true
		}
	}
	return false
}

type echoGenerator struct{}

func (echoGenerator) Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	return "Orders ship in two days.", nil
}

type nopTicketer struct{}

func (nopTicketer) Deliver(ctx context.Context, ticket ticketer.Ticket) error {
	return nil
}

func newSupport(t *testing.T, opts ...Option) *Support {
	opts = append([]Option{WithLogger(zap.NewNop())}, opts...)

	s := New(
		axisEmbedder{},
		storermemory.NewStorer(storer.WithDimension(2)),
		echoGenerator{},
		sessionmemory.NewStore(),
		nopTicketer{},
		opts...,
	)
	require.NoError(t, s.Init(context.Background()))

	return s
}

func TestSupport_ConversationFlow(t *testing.T) {
	ctx := context.Background()
	s := newSupport(t, WithTopK(3))

	n, err := s.AddKnowledgeBatch(ctx, []storer.Document{
		{Id: "doc_1", Title: "Shipping times", Content: "We ship in two days.", Category: "shipping"},
		{Id: "doc_2", Title: "Shipping costs", Content: "Free shipping over $50.", Category: "shipping"},
		{Id: "doc_3", Title: "International shipping", Content: "We ship to 40 countries.", Category: "shipping"},
		{Id: "doc_4", Title: "Warranty", Content: "One year coverage.", Category: "warranty"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 4, s.CountKnowledge(ctx))

	reply, err := s.Chat(ctx, ChatRequest{Message: "how fast do you ship?"})
	require.NoError(t, err)

	assert.True(t, reply.ContextUsed)
	assert.False(t, reply.NeedsEscalation)
	assert.InDelta(t, 1.0, reply.Confidence, 1e-9)
	assert.Len(t, reply.Sources, 3)

	history, err := s.History(ctx, reply.SessionId)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	stats := s.Stats(ctx)
	assert.Equal(t, 1, stats.ActiveSessions)
	assert.Equal(t, 4, stats.KnowledgeItems)

	result, err := s.Escalate(ctx, EscalationRequest{
		SessionId:     reply.SessionId,
		UserEmail:     "jo@example.com",
		OriginalQuery: "how fast do you ship?",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)

	history, err = s.History(ctx, reply.SessionId)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestSupport_SearchByCategory(t *testing.T) {
	ctx := context.Background()
	s := newSupport(t)

	_, err := s.AddKnowledge(ctx, storer.Document{Id: "doc_1", Title: "Shipping times", Content: "Two days."})
	require.NoError(t, err)
	_, err = s.AddKnowledge(ctx, storer.Document{Id: "doc_2", Title: "Warranty", Content: "One year.", Category: "warranty"})
	require.NoError(t, err)

	matches, err := s.SearchKnowledge(ctx, "anything", 5, "warranty")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "doc_2", matches[0].Id)

	require.NoError(t, s.ClearKnowledge(ctx))
	assert.Equal(t, 0, s.CountKnowledge(ctx))
}

func TestSupport_Options(t *testing.T) {
	options := NewOptions(WithTopK(3), WithRetries(0), WithBackends(Backends{LLM: "anthropic"}))

	assert.Equal(t, 3, options.TopK)
	assert.Equal(t, uint(0), options.Retries)
	assert.Equal(t, "anthropic", options.Backends.LLM)
	assert.Equal(t, 5, options.HistoryLimit)
	assert.Len(t, newSupport(t).Categories(), 20)
}
