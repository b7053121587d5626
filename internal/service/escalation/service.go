package escalation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/w-h-a/support/prompt"
	"github.com/w-h-a/support/session"
	"github.com/w-h-a/support/ticketer"
	"go.uber.org/zap"
)

const Confirmation = "Your request has been sent to our support team. You'll receive an email shortly."

var ErrInvalidRequest = errors.New("escalation needs a session id, an email and the original query")

type Request struct {
	SessionId           string
	UserEmail           string
	UserName            string
	ConversationSummary string
	OriginalQuery       string
}

type Result struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	TicketId string `json:"ticket_id,omitempty"`
}

type Service struct {
	ticketer ticketer.Ticketer
	sessions session.Store
	now      func() time.Time
	logger   *zap.Logger
}

// Escalate files a ticket with the human support workflow. It only reads
// session history and never changes it, whatever the delivery outcome.
func (s *Service) Escalate(ctx context.Context, req Request) (Result, error) {
	if len(strings.TrimSpace(req.SessionId)) == 0 ||
		len(strings.TrimSpace(req.UserEmail)) == 0 ||
		len(strings.TrimSpace(req.OriginalQuery)) == 0 {
		return Result{}, ErrInvalidRequest
	}

	now := s.now()

	ticket := ticketer.Ticket{
		TicketId:            ticketer.NewTicketId(now),
		SessionId:           req.SessionId,
		UserEmail:           req.UserEmail,
		UserName:            req.UserName,
		ConversationSummary: req.ConversationSummary,
		OriginalQuery:       req.OriginalQuery,
		Timestamp:           now.Format(time.RFC3339),
		Priority:            ticketer.PriorityNormal,
	}

	if len(strings.TrimSpace(ticket.UserName)) == 0 {
		ticket.UserName = ticketer.DefaultName
	}

	if len(strings.TrimSpace(ticket.ConversationSummary)) == 0 {
		ticket.ConversationSummary = s.summarize(ctx, req)
	}

	if err := s.ticketer.Deliver(ctx, ticket); err != nil {
		s.logger.Error(
			"escalation delivery failed",
			zap.String("ticket_id", ticket.TicketId),
			zap.String("session_id", ticket.SessionId),
			zap.Error(err),
		)
		return Result{}, err
	}

	s.logger.Info("escalated", zap.String("ticket_id", ticket.TicketId), zap.String("session_id", ticket.SessionId))

	return Result{
		Success:  true,
		Message:  Confirmation,
		TicketId: ticket.TicketId,
	}, nil
}

// summarize falls back to the original query when the session is unknown
// or empty.
func (s *Service) summarize(ctx context.Context, req Request) string {
	history, err := s.sessions.History(ctx, req.SessionId)
	if err != nil || len(history) == 0 {
		return req.OriginalQuery
	}
	return prompt.History(history, len(history))
}

func New(
	ticketer ticketer.Ticketer,
	sessions session.Store,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		ticketer: ticketer,
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.Named("escalation"),
	}
}
