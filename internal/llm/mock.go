package llm

import "context"

// MockClient is a test double for the Client interface.
type MockClient struct {
	Response  string
	Err       error
	Responses []string // when set, consumed in order before falling back to Response
	Calls     []string // records prompts sent
}

// Complete records the call and returns the next mock response.
func (m *MockClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.Calls = append(m.Calls, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) > 0 {
		next := m.Responses[0]
		m.Responses = m.Responses[1:]
		return next, nil
	}
	return m.Response, nil
}
