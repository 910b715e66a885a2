package client

import (
	"context"
	"fmt"

	"resume-reviewer/internal/agent"
	"resume-reviewer/internal/config"
	"resume-reviewer/internal/llm"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// NewLLM creates the provider client selected by configuration.
// IMPORTANT: The returned client is safe for concurrent use from multiple goroutines,
// as long as its configuration (API key, endpoint) is NOT modified after creation.
// This is the standard practice for http.Client based libraries.
func NewLLM(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	base, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.LLM.MaxRetries > 0 {
		return WithRetry(base, cfg.LLM.MaxRetries), nil
	}
	return base, nil
}

func newProvider(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	concurrency := int(cfg.Server.ConcurrencyLimit)

	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		oc := openai.NewClient(
			option.WithAPIKey(cfg.LLM.OpenAI.APIKey),
			option.WithBaseURL(cfg.LLM.OpenAI.BaseURL),
		)
		return NewOpenAIAdapter(&oc, cfg.LLM.OpenAI.Model, cfg.LLM.Timeout, concurrency), nil

	case config.ProviderOllama:
		return NewOllamaAdapter(cfg.LLM.Ollama.URL, cfg.LLM.Ollama.Model, cfg.LLM.Timeout, concurrency)

	case config.ProviderGemini:
		return agent.NewReviewAgent(ctx, cfg.LLM.Gemini, cfg.LLM.Timeout, concurrency)

	case config.ProviderMock:
		return NewStubClient(), nil

	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}
