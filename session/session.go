package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// Store holds ordered per-session history. Writes to one session are
// serialized; different sessions never block each other.
type Store interface {
	// GetOrCreate returns the session for id when it exists. An empty or
	// unknown id yields a freshly issued id with empty history.
	GetOrCreate(ctx context.Context, id string) (string, []Message, error)
	// Append adds msg to the end of the session and returns the history as
	// it stood just before msg.
	Append(ctx context.Context, id string, msg Message) ([]Message, error)
	History(ctx context.Context, id string) ([]Message, error)
	Count(ctx context.Context) int
}
