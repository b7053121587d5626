// Package prompt turns ranked matches and session history into the text
// handed to a generator. Everything here is pure.
package prompt

import (
	"fmt"
	"strings"

	"github.com/w-h-a/support/session"
	"github.com/w-h-a/support/storer"
)

const (
	// NoContext stands in for an empty match list so the model is never
	// handed a blank context section.
	NoContext = "No specific information found."

	Delimiter = "\n\n---\n\n"

	DefaultHistory = 5
)

const System = `You are a helpful customer support assistant for TechStore.
Answer based on the provided context. Be concise and helpful.
If you can't answer from context, offer to connect with human support.`

// Context renders matches in ranked order, one titled passage each.
func Context(matches []storer.Match) string {
	if len(matches) == 0 {
		return NoContext
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, fmt.Sprintf("**%s**\n%s", m.Title, m.Content))
	}

	return strings.Join(parts, Delimiter)
}

// History renders the last n messages oldest first as "ROLE: content".
// The caller passes history that excludes the message being answered.
func History(messages []session.Message, n int) string {
	if n <= 0 || len(messages) == 0 {
		return ""
	}

	if len(messages) > n {
		messages = messages[len(messages)-n:]
	}

	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(string(m.Role)), m.Content))
	}

	return strings.Join(lines, "\n")
}

// User composes the user prompt from the two assembled blocks and the
// question.
func User(context string, history string, question string) string {
	var b strings.Builder

	b.WriteString("Context:\n")
	b.WriteString(context)
	b.WriteString("\n\nConversation:\n")
	b.WriteString(history)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nProvide a helpful response.")

	return b.String()
}

// Build assembles the full user prompt for one turn.
func Build(matches []storer.Match, history []session.Message, n int, question string) string {
	return User(Context(matches), History(history, n), question)
}
