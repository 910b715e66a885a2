package llm

import "context"

// Client defines the interface to a model provider. Implementations send one
// system prompt and one user prompt per call and return the raw completion
// text; callers own JSON validation of that text.
type Client interface {
	// Complete sends a single-shot completion request.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Ping verifies the provider is reachable with current credentials.
	Ping(ctx context.Context) error
	// Provider returns the provider name, e.g. "openai".
	Provider() string
	// Model returns the configured model name.
	Model() string
	// Close releases provider resources.
	Close() error
}
