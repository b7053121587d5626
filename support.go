package support

import (
	"context"

	"github.com/w-h-a/support/embedder"
	"github.com/w-h-a/support/generator"
	"github.com/w-h-a/support/internal/service/chat"
	escalationsvc "github.com/w-h-a/support/internal/service/escalation"
	"github.com/w-h-a/support/internal/service/knowledge"
	"github.com/w-h-a/support/retriever"
	"github.com/w-h-a/support/session"
	"github.com/w-h-a/support/storer"
	"github.com/w-h-a/support/ticketer"
)

const Version = "2.0.0"

type (
	ChatRequest       = chat.Request
	ChatReply         = chat.Reply
	EscalationRequest = escalationsvc.Request
	EscalationResult  = escalationsvc.Result
)

type Stats struct {
	ActiveSessions int `json:"active_sessions"`
	KnowledgeItems int `json:"knowledge_items"`
	Backends
}

// Support is the assembled customer-support assistant: chat turns,
// knowledge management and hand-off to human agents.
type Support struct {
	options    Options
	storer     storer.Storer
	sessions   session.Store
	chat       *chat.Service
	knowledge  *knowledge.Service
	escalation *escalationsvc.Service
}

// Init makes sure the configured collection exists and matches the
// configured dimension and metric.
func (s *Support) Init(ctx context.Context) error {
	return s.storer.EnsureCollection(ctx)
}

func (s *Support) Chat(ctx context.Context, req ChatRequest) (ChatReply, error) {
	return s.chat.Respond(ctx, req)
}

func (s *Support) Escalate(ctx context.Context, req EscalationRequest) (EscalationResult, error) {
	return s.escalation.Escalate(ctx, req)
}

func (s *Support) AddKnowledge(ctx context.Context, doc storer.Document) (storer.Document, error) {
	return s.knowledge.Add(ctx, doc)
}

func (s *Support) AddKnowledgeBatch(ctx context.Context, docs []storer.Document) (int, error) {
	return s.knowledge.AddBatch(ctx, docs)
}

func (s *Support) SearchKnowledge(ctx context.Context, query string, topK int, category string) ([]storer.Match, error) {
	return s.knowledge.Search(ctx, query, topK, category)
}

func (s *Support) ClearKnowledge(ctx context.Context) error {
	return s.knowledge.Clear(ctx)
}

func (s *Support) CountKnowledge(ctx context.Context) int {
	return s.knowledge.Count(ctx)
}

func (s *Support) Categories() []string {
	return knowledge.Categories()
}

func (s *Support) Stats(ctx context.Context) Stats {
	return Stats{
		ActiveSessions: s.sessions.Count(ctx),
		KnowledgeItems: s.knowledge.Count(ctx),
		Backends:       s.options.Backends,
	}
}

func (s *Support) History(ctx context.Context, sessionId string) ([]session.Message, error) {
	return s.sessions.History(ctx, sessionId)
}

func New(
	embedder embedder.Embedder,
	storer storer.Storer,
	generator generator.Generator,
	sessions session.Store,
	ticketer ticketer.Ticketer,
	opts ...Option,
) *Support {
	options := NewOptions(opts...)

	re := retriever.NewRetriever(
		retriever.WithEmbedder(embedder),
		retriever.WithStorer(storer),
	)

	chat := chat.New(
		re,
		generator,
		sessions,
		options.Policy,
		options.TopK,
		options.HistoryLimit,
		options.Logger,
	)

	knowledge := knowledge.New(
		embedder,
		storer,
		re,
		options.BatchSize,
		options.FanOut,
		options.Retries,
		options.Logger,
	)

	escalation := escalationsvc.New(
		ticketer,
		sessions,
		options.Logger,
	)

	return &Support{
		options:    options,
		storer:     storer,
		sessions:   sessions,
		chat:       chat,
		knowledge:  knowledge,
		escalation: escalation,
	}
}
