package advisor

import "context"

// Prompt is a structured LLM request.
type Prompt struct {
	// System sets the assistant behavior.
	System string

	// User is the question or instruction.
	User string
}

// LLMClient abstracts the language model so implementations can be
// swapped or mocked.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}
