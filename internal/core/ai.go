package core

import "context"

// LLMProvider generates a completion for a prompt. The entity recognizer
// uses it for named entity recognition.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
