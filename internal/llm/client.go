package llm

import "context"

// Client is the interface for LLM completion providers.
type Client interface {
	// Complete runs a single prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)
}
