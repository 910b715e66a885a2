package client

import (
	"context"
	"encoding/json"

	"resume-reviewer/internal/config"
	"resume-reviewer/internal/domain"
)

// StubClient implements llm.Client without any network calls. It returns the
// canned stub review as strict JSON so the rest of the flow (normalizer,
// history, metrics) behaves exactly as with a live provider.
type StubClient struct{}

// NewStubClient creates the no-network stub provider.
func NewStubClient() *StubClient {
	return &StubClient{}
}

// Provider returns the provider name.
func (s *StubClient) Provider() string {
	return config.ProviderMock
}

// Model returns the stub model name.
func (s *StubClient) Model() string {
	return config.ProviderMock
}

// Close releases provider resources.
func (s *StubClient) Close() error {
	return nil
}

// Ping always succeeds.
func (s *StubClient) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Complete returns the canned stub review serialized as JSON.
func (s *StubClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := json.Marshal(domain.StubResult())
	if err != nil {
		return "", err
	}
	return string(data), nil
}
