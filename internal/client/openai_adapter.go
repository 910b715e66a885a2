package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"resume-reviewer/internal/config"
	"resume-reviewer/internal/types"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

// OpenAIAdapter implements llm.Client using the official OpenAI client.
// It also serves any OpenAI-compatible endpoint via a custom base URL.
type OpenAIAdapter struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	sem     chan struct{}
}

// NewOpenAIAdapter creates a new OpenAI adapter. maxConcurrency bounds the
// number of in-flight completions; values below 1 collapse to 1.
func NewOpenAIAdapter(client *openai.Client, model string, timeout time.Duration, maxConcurrency int) *OpenAIAdapter {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &OpenAIAdapter{
		client:  client,
		model:   model,
		timeout: timeout,
		sem:     make(chan struct{}, maxConcurrency),
	}
}

// Provider returns the provider name.
func (a *OpenAIAdapter) Provider() string {
	return config.ProviderOpenAI
}

// Model returns the configured model name.
func (a *OpenAIAdapter) Model() string {
	return a.model
}

// Close releases provider resources. The underlying client is http based and
// has nothing to release.
func (a *OpenAIAdapter) Close() error {
	return nil
}

// Ping sends a minimal request to verify connection
func (a *OpenAIAdapter) Ping(ctx context.Context) error {
	slog.Info("checking llm connection...")
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("hello"),
		},
		MaxTokens: openai.Int(1),
	}
	_, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return fmt.Errorf("llm ping failed: %w", err)
	}
	slog.Info("llm connection verified")
	return nil
}

// Complete sends a single completion request and returns the raw response
// text. The request pins the JSON-object response format so the model stays
// inside the result contract.
func (a *OpenAIAdapter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
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

	jsonObject := shared.NewResponseFormatJSONObjectParam()
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(config.OpenAITemperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &jsonObject,
		},
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", a.wrapError(fmt.Errorf("openai request: %w", err))
	}

	if len(resp.Choices) == 0 {
		return "", types.NewGatewayError(a.Provider(), errors.New("no openai response"), false)
	}

	return resp.Choices[0].Message.Content, nil
}

// wrapError wraps openai failures into GatewayError with the retryable flag
// set for rate limits and server errors.
func (a *OpenAIAdapter) wrapError(err error) error {
	if err == nil {
		return nil
	}

	retryable := false
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		statusCode := apiErr.StatusCode
		// 429 (Rate Limit) and 5xx (Server Errors) are retryable
		retryable = statusCode == 429 || (statusCode >= 500 && statusCode < 600)
	}

	return types.NewGatewayError(a.Provider(), err, retryable)
}
