package client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"resume-reviewer/internal/llm"
	"resume-reviewer/internal/types"
)

// RetryingClient decorates an llm.Client with bounded retries on transient
// failures. Only errors the adapter marked retryable (rate limits, 5xx) are
// retried; everything else fails fast so the caller can fall back.
type RetryingClient struct {
	llm.Client
	maxRetries int
}

// WithRetry wraps a client with up to maxRetries additional attempts per call.
func WithRetry(base llm.Client, maxRetries int) *RetryingClient {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryingClient{Client: base, maxRetries: maxRetries}
}

// Complete sends the request, retrying retryable failures with linear backoff.
func (c *RetryingClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			slog.Warn("retrying llm call", "attempt", attempt+1, "max", c.maxRetries+1)
		}

		text, err := c.Client.Complete(ctx, systemPrompt, userPrompt)
		if err == nil {
			return text, nil
		}

		lastErr = err

		if !retryable(err) {
			break
		}
		slog.Warn("llm call failed", "attempt", attempt+1, "error", err)
	}

	return "", lastErr
}

// retryable honors the GatewayError flag set by the adapters; a bare
// RetryableError marks transient failures from clients outside this package.
func retryable(err error) bool {
	var gwErr *types.GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Retryable
	}
	var retryErr *types.RetryableError
	return errors.As(err, &retryErr)
}
