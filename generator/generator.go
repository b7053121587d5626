package generator

import "context"

// Generator produces a reply from a system instruction and a composed user
// prompt. Implementations make a single attempt; callers decide what a
// failure means for the conversation.
type Generator interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
