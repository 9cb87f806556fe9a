package glosslive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "text", Message: "text to translate is required"}

	if err.Error() != "invalid request: text: text to translate is required" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestProviderError(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ProviderError{Category: CategoryProviderOther, StatusCode: 500, Message: "internal", Cause: cause}

	if err.Error() != "provider error (500): internal: underlying error" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}
}

func TestTransportError(t *testing.T) {
	err := &TransportError{Message: "no response"}

	if err.Error() != "transport error: no response" {
		t.Errorf("unexpected error message: %s", err.Error())
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status    int
		category  ErrorCategory
		retryable bool
	}{
		{403, CategoryProviderAuth, false},
		{401, CategoryProviderAuth, false},
		{456, CategoryProviderQuota, false},
		{429, CategoryProviderOther, true},
		{500, CategoryProviderOther, true},
		{503, CategoryProviderOther, true},
		{400, CategoryProviderOther, false},
		{413, CategoryProviderOther, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := ClassifyStatus(tt.status, "")
			if err.Category != tt.category {
				t.Errorf("Category = %q, want %q", err.Category, tt.category)
			}
			if err.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", err.Retryable, tt.retryable)
			}
			if err.StatusCode != tt.status {
				t.Errorf("StatusCode = %d", err.StatusCode)
			}
		})
	}

	if msg := ClassifyStatus(400, "Value for 'target_lang' not supported.").Message; msg != "Value for 'target_lang' not supported." {
		t.Errorf("provider message should pass through, got %q", msg)
	}
}

func TestCategory_Wrapped(t *testing.T) {
	err := fmt.Errorf("translate: %w", ClassifyStatus(456, ""))

	if Category(err) != CategoryProviderQuota {
		t.Errorf("Category should see through wrapping, got %q", Category(err))
	}
	if Category(nil) != CategoryNone {
		t.Error("nil error should have no category")
	}
	if Category(errors.New("x")) != CategoryNone {
		t.Error("plain error should have no category")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err      error
		contains string
	}{
		{&ValidationError{Field: "text", Message: "text to translate is required"}, "text to translate is required"},
		{ClassifyStatus(403, ""), "API key"},
		{ClassifyStatus(456, ""), "usage limit"},
		{ClassifyStatus(400, "Bad target"), "Bad target"},
		{&TransportError{Message: "dial"}, "could not reach"},
		{context.Canceled, "cancelled"},
	}

	for _, tt := range tests {
		if msg := UserMessage(tt.err); !strings.Contains(msg, tt.contains) {
			t.Errorf("UserMessage(%v) = %q, want it to contain %q", tt.err, msg, tt.contains)
		}
	}

	if UserMessage(nil) != "" {
		t.Error("nil error should have empty message")
	}
}
