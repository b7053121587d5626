package ticketer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrDeliveryFailed = errors.New("escalation delivery failed")

const (
	PriorityNormal = "normal"
	DefaultName    = "Customer"
)

type Ticket struct {
	TicketId            string `json:"ticket_id"`
	SessionId           string `json:"session_id"`
	UserEmail           string `json:"user_email"`
	UserName            string `json:"user_name"`
	ConversationSummary string `json:"conversation_summary"`
	OriginalQuery       string `json:"original_query"`
	Timestamp           string `json:"timestamp"`
	Priority            string `json:"priority"`
}

// Ticketer hands a ticket to whatever human support workflow is configured.
// Failures wrap ErrDeliveryFailed and are safe to retry.
type Ticketer interface {
	Deliver(ctx context.Context, ticket Ticket) error
}

// NewTicketId formats ids like TKT-20250114-3FA2C1.
func NewTicketId(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("TKT-%s-%s", now.Format("20060102"), suffix)
}

func DeliveryFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
}
