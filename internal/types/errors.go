package types

import "fmt"

// ExtractionError indicates an uploaded file could not be turned into plain text,
// either because the type is not on the allow-list or the content is unreadable.
type ExtractionError struct {
	Filename string
	Reason   string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Filename, e.Reason, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.Filename, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError creates an ExtractionError for the given file.
func NewExtractionError(filename, reason string, err error) error {
	return &ExtractionError{Filename: filename, Reason: reason, Err: err}
}

// GatewayError indicates the model provider was unreachable or returned an error.
// Callers fall back to a labeled stub result instead of failing the action.
// Retryable marks transient failures (rate limits, 5xx) worth another attempt.
type GatewayError struct {
	Provider  string
	Retryable bool
	Err       error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s gateway: %v", e.Provider, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError wraps a provider failure with the provider name and whether
// a retry is worthwhile.
func NewGatewayError(provider string, err error, retryable bool) error {
	return &GatewayError{Provider: provider, Retryable: retryable, Err: err}
}

// NormalizationError indicates model output could not be coerced into the
// result contract even after the repair pass. The accompanying result is
// degraded (zero score, empty fields) with the failure explained in its notes.
type NormalizationError struct {
	Reason string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize response: %s", e.Reason)
}

// NewNormalizationError creates a NormalizationError with the given reason.
func NewNormalizationError(reason string) error {
	return &NormalizationError{Reason: reason}
}

// ValidationError indicates a request failed local validation and was rejected
// before any outbound call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// RetryableError represents an error that indicates the operation can be retried.
// This is typically used for transient errors like network timeouts, rate limits, or temporary server unavailability.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError wraps an existing error as a RetryableError.
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
