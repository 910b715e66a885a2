package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-reviewer/internal/config"
	"resume-reviewer/internal/types"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaAdapter implements llm.Client against a local Ollama server via
// langchaingo. Completions run in JSON mode; small local models drift out of
// the result contract without it.
type OllamaAdapter struct {
	llm     *ollama.LLM
	model   string
	timeout time.Duration
	sem     chan struct{}
}

// NewOllamaAdapter creates a new Ollama adapter for the given server URL.
func NewOllamaAdapter(serverURL, model string, timeout time.Duration, maxConcurrency int) (*OllamaAdapter, error) {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	lcLLM, err := ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return &OllamaAdapter{
		llm:     lcLLM,
		model:   model,
		timeout: timeout,
		sem:     make(chan struct{}, maxConcurrency),
	}, nil
}

// Provider returns the provider name.
func (a *OllamaAdapter) Provider() string {
	return config.ProviderOllama
}

// Model returns the configured model name.
func (a *OllamaAdapter) Model() string {
	return a.model
}

// Close releases provider resources.
func (a *OllamaAdapter) Close() error {
	return nil
}

// Ping sends a minimal request to verify the local server is up.
func (a *OllamaAdapter) Ping(ctx context.Context) error {
	_, err := a.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, "hello"),
		},
		llms.WithMaxTokens(1),
	)
	if err != nil {
		return fmt.Errorf("ollama ping failed: %w", err)
	}
	return nil
}

// Complete sends a single completion request and returns the raw response text.
func (a *OllamaAdapter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	select {
	case a.sem <- struct{}{}:
		defer func() { <-a.sem }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	resp, err := a.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(config.OllamaTemperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		// A local server that refused or timed out may accept the next attempt.
		return "", types.NewGatewayError(a.Provider(), fmt.Errorf("ollama request: %w", err), true)
	}

	if len(resp.Choices) == 0 {
		return "", types.NewGatewayError(a.Provider(), errors.New("no ollama response"), false)
	}

	return resp.Choices[0].Content, nil
}
