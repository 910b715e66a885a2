package types

import (
	"errors"
	"testing"
)

func TestGatewayError(t *testing.T) {
	baseErr := errors.New("connection refused")
	gwErr := NewGatewayError("openai", baseErr, true)

	expectedMsg := "openai gateway: connection refused"
	if gwErr.Error() != expectedMsg {
		t.Errorf("expected error message %q, got %q", expectedMsg, gwErr.Error())
	}

	var target *GatewayError
	if !errors.As(gwErr, &target) {
		t.Fatal("expected errors.As to match GatewayError")
	}
	if target.Provider != "openai" {
		t.Errorf("expected provider openai, got %q", target.Provider)
	}
	if !target.Retryable {
		t.Error("expected retryable flag to be carried through")
	}

	if !errors.Is(gwErr, baseErr) {
		t.Error("expected errors.Is to match base error")
	}
}

func TestExtractionError(t *testing.T) {
	extErr := NewExtractionError("resume.xlsx", "unsupported file type", nil)

	expectedMsg := "extract resume.xlsx: unsupported file type"
	if extErr.Error() != expectedMsg {
		t.Errorf("expected error message %q, got %q", expectedMsg, extErr.Error())
	}

	var target *ExtractionError
	if !errors.As(extErr, &target) {
		t.Fatal("expected errors.As to match ExtractionError")
	}
	if target.Filename != "resume.xlsx" {
		t.Errorf("expected filename resume.xlsx, got %q", target.Filename)
	}
}

func TestValidationError(t *testing.T) {
	valErr := NewValidationError("user_feedback", "must not be empty")

	var target *ValidationError
	if !errors.As(valErr, &target) {
		t.Fatal("expected errors.As to match ValidationError")
	}
	if target.Field != "user_feedback" {
		t.Errorf("expected field user_feedback, got %q", target.Field)
	}
}

func TestRetryableError(t *testing.T) {
	baseErr := errors.New("base error")
	retryErr := NewRetryableError(baseErr)

	expectedMsg := "retryable error: base error"
	if retryErr.Error() != expectedMsg {
		t.Errorf("expected error message %q, got %q", expectedMsg, retryErr.Error())
	}

	unwrapped := errors.Unwrap(retryErr)
	if unwrapped != baseErr {
		t.Errorf("expected unwrapped error to be %v, got %v", baseErr, unwrapped)
	}

	var target *RetryableError
	if !errors.As(retryErr, &target) {
		t.Error("expected errors.As to match RetryableError")
	}

	if !errors.Is(retryErr, baseErr) {
		t.Error("expected errors.Is to match base error")
	}
}
