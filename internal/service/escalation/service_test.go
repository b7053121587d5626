package escalation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/support/session"
	"github.com/w-h-a/support/session/memory"
	"github.com/w-h-a/support/ticketer"
)

type recordingTicketer struct {
	tickets []ticketer.Ticket
	err     error
}

func (r *recordingTicketer) Deliver(ctx context.Context, ticket ticketer.Ticket) error {
	r.tickets = append(r.tickets, ticket)
	return r.err
}

func newService(tk ticketer.Ticketer, sessions session.Store) *Service {
	svc := New(tk, sessions, nil)
	svc.now = func() time.Time { return time.Date(2025, 1, 14, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestEscalate(t *testing.T) {
	tk := &recordingTicketer{}
	svc := newService(tk, memory.NewStore())

	res, err := svc.Escalate(context.Background(), Request{
		SessionId:           "s-1",
		UserEmail:           "jo@example.com",
		ConversationSummary: "screen cracked on arrival",
		OriginalQuery:       "my screen is broken",
	})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, Confirmation, res.Message)
	assert.Regexp(t, `^TKT-20250114-[0-9A-F]{6}$`, res.TicketId)

	require.Len(t, tk.tickets, 1)
	got := tk.tickets[0]
	assert.Equal(t, res.TicketId, got.TicketId)
	assert.Equal(t, ticketer.DefaultName, got.UserName)
	assert.Equal(t, "screen cracked on arrival", got.ConversationSummary)
	assert.Equal(t, "2025-01-14T09:30:00Z", got.Timestamp)
	assert.Equal(t, ticketer.PriorityNormal, got.Priority)
}

func TestEscalate_SummaryFromHistory(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewStore()

	id, _, err := sessions.GetOrCreate(ctx, "")
	require.NoError(t, err)
	_, err = sessions.Append(ctx, id, session.NewMessage(session.RoleUser, "my order is late"))
	require.NoError(t, err)
	_, err = sessions.Append(ctx, id, session.NewMessage(session.RoleAssistant, "sorry to hear that"))
	require.NoError(t, err)

	tk := &recordingTicketer{}
	svc := newService(tk, sessions)

	_, err = svc.Escalate(ctx, Request{SessionId: id, UserEmail: "a@b.co", UserName: "Ana", OriginalQuery: "late order"})
	require.NoError(t, err)

	require.Len(t, tk.tickets, 1)
	assert.Equal(t, "USER: my order is late\nASSISTANT: sorry to hear that", tk.tickets[0].ConversationSummary)
	assert.Equal(t, "Ana", tk.tickets[0].UserName)

	_, err = svc.Escalate(ctx, Request{SessionId: "unknown", UserEmail: "a@b.co", OriginalQuery: "late order"})
	require.NoError(t, err)
	assert.Equal(t, "late order", tk.tickets[1].ConversationSummary)
}

func TestEscalate_DeliveryFailureLeavesSessionAlone(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewStore()

	id, _, err := sessions.GetOrCreate(ctx, "")
	require.NoError(t, err)
	_, err = sessions.Append(ctx, id, session.NewMessage(session.RoleUser, "help"))
	require.NoError(t, err)

	tk := &recordingTicketer{err: ticketer.DeliveryFailed(errors.New("502"))}
	svc := newService(tk, sessions)

	res, err := svc.Escalate(ctx, Request{SessionId: id, UserEmail: "a@b.co", OriginalQuery: "help"})
	assert.True(t, errors.Is(err, ticketer.ErrDeliveryFailed))
	assert.False(t, res.Success)

	history, err := sessions.History(ctx, id)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestEscalate_Invalid(t *testing.T) {
	tk := &recordingTicketer{}
	svc := newService(tk, memory.NewStore())

	_, err := svc.Escalate(context.Background(), Request{SessionId: "s", OriginalQuery: "q"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, tk.tickets)
}
