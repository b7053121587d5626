package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/w-h-a/support/escalation"
	"github.com/w-h-a/support/generator"
	"github.com/w-h-a/support/prompt"
	"github.com/w-h-a/support/retriever"
	"github.com/w-h-a/support/scorer"
	"github.com/w-h-a/support/session"
	"github.com/w-h-a/support/storer"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	ErrUnavailable  = errors.New("the assistant is temporarily unavailable, please try again shortly")
	ErrEmptyMessage = errors.New("message is required")
)

// HandOff is appended to a reply when the turn escalates and no contact
// channel is known yet.
const HandOff = "\n\n---\n📧 **I'd be happy to connect you with our support team!** Please provide your email address, and I'll have someone reach out to you shortly."

var tracer = otel.Tracer("github.com/w-h-a/support/internal/service/chat")

type Request struct {
	Message   string
	SessionId string
	UserEmail string
	Category  string
}

type Reply struct {
	Response         string   `json:"response"`
	SessionId        string   `json:"session_id"`
	Sources          []string `json:"sources"`
	NeedsEscalation  bool     `json:"needs_escalation"`
	EscalationReason string   `json:"escalation_reason,omitempty"`
	Confidence       float64  `json:"confidence_score"`
	ContextUsed      bool     `json:"context_used"`
}

type Service struct {
	retriever    *retriever.Retriever
	generator    generator.Generator
	sessions     session.Store
	policy       escalation.Policy
	topK         int
	historyLimit int
	systemPrompt string
	logger       *zap.Logger
}

// Respond runs one chat turn. The user message is stored before retrieval
// starts, so a failed turn leaves it without an assistant reply.
func (s *Service) Respond(ctx context.Context, req Request) (Reply, error) {
	ctx, span := tracer.Start(ctx, "chat.Respond")
	defer span.End()

	if len(strings.TrimSpace(req.Message)) == 0 {
		return Reply{}, ErrEmptyMessage
	}

	sessionId, _, err := s.sessions.GetOrCreate(ctx, req.SessionId)
	if err != nil {
		return Reply{}, s.fail(span, sessionId, "session", err)
	}

	span.SetAttributes(attribute.String("session.id", sessionId))

	prior, err := s.sessions.Append(ctx, sessionId, session.NewMessage(session.RoleUser, req.Message))
	if err != nil {
		return Reply{}, s.fail(span, sessionId, "session", err)
	}

	matches, err := s.retrieve(ctx, req)
	if err != nil {
		return Reply{}, s.orphaned(span, sessionId, "retrieve", err)
	}

	userPrompt := prompt.Build(matches, prior, s.historyLimit, req.Message)

	text, err := s.generate(ctx, userPrompt)
	if err != nil {
		return Reply{}, s.orphaned(span, sessionId, "generate", err)
	}

	confidence := scorer.Score(matches)
	decision := s.policy.Evaluate(confidence, req.Message)

	if decision.Escalate && len(strings.TrimSpace(req.UserEmail)) == 0 {
		text += HandOff
	}

	if _, err := s.sessions.Append(ctx, sessionId, session.NewMessage(session.RoleAssistant, text)); err != nil {
		return Reply{}, s.fail(span, sessionId, "session", err)
	}

	span.SetAttributes(
		attribute.Int("retrieval.matches", len(matches)),
		attribute.Float64("confidence", confidence),
		attribute.Bool("escalate", decision.Escalate),
	)

	s.logger.Info(
		"chat turn",
		zap.String("session_id", sessionId),
		zap.Int("matches", len(matches)),
		zap.Float64("confidence", confidence),
		zap.Bool("escalate", decision.Escalate),
		zap.String("reason", string(decision.Reason)),
	)

	return Reply{
		Response:         text,
		SessionId:        sessionId,
		Sources:          sources(matches),
		NeedsEscalation:  decision.Escalate,
		EscalationReason: string(decision.Reason),
		Confidence:       confidence,
		ContextUsed:      len(matches) > 0,
	}, nil
}

func (s *Service) retrieve(ctx context.Context, req Request) ([]storer.Match, error) {
	ctx, span := tracer.Start(ctx, "retrieve")
	defer span.End()

	matches, err := s.retriever.Retrieve(
		ctx,
		req.Message,
		retriever.RetrieveWithTopK(s.topK),
		retriever.RetrieveWithCategory(req.Category),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "retrieval failed")
		return nil, err
	}

	return matches, nil
}

func (s *Service) generate(ctx context.Context, userPrompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "generate")
	defer span.End()

	text, err := s.generator.Generate(ctx, s.systemPrompt, userPrompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return "", err
	}

	return text, nil
}

func (s *Service) orphaned(span trace.Span, sessionId string, stage string, err error) error {
	s.logger.Warn(
		"user turn left without reply",
		zap.String("session_id", sessionId),
		zap.String("stage", stage),
	)
	return s.fail(span, sessionId, stage, err)
}

func (s *Service) fail(span trace.Span, sessionId string, stage string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, stage)

	s.logger.Error(
		"chat turn failed",
		zap.String("session_id", sessionId),
		zap.String("stage", stage),
		zap.Error(err),
	)

	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}

func sources(matches []storer.Match) []string {
	titles := make([]string, 0, len(matches))
	for _, m := range matches {
		titles = append(titles, m.Title)
	}
	return titles
}

func New(
	retriever *retriever.Retriever,
	generator generator.Generator,
	sessions session.Store,
	policy escalation.Policy,
	topK int,
	historyLimit int,
	logger *zap.Logger,
) *Service {
	if topK <= 0 {
		topK = 5
	}

	if historyLimit < 0 {
		historyLimit = prompt.DefaultHistory
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		retriever:    retriever,
		generator:    generator,
		sessions:     sessions,
		policy:       policy,
		topK:         topK,
		historyLimit: historyLimit,
		systemPrompt: prompt.System,
		logger:       logger.Named("chat"),
	}
}
