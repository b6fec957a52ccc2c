package advisor

import "context"

// MockClient is a canned LLMClient for tests and offline runs.
// It returns Response, or delegates to Fn when set.
type MockClient struct {
	Response string
	Err      error
	Fn       func(ctx context.Context, prompt Prompt) (string, error)

	// Prompts records every prompt received, for assertions.
	Prompts []Prompt
}

// Complete implements LLMClient.
func (m *MockClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Fn != nil {
		return m.Fn(ctx, prompt)
	}
	return m.Response, m.Err
}
