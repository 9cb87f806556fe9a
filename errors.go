package glosslive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCategory tags an error with the class of failure it represents.
type ErrorCategory string

const (
	CategoryNone          ErrorCategory = ""
	CategoryValidation    ErrorCategory = "validation"
	CategoryProviderAuth  ErrorCategory = "provider_auth"
	CategoryProviderQuota ErrorCategory = "provider_quota"
	CategoryProviderOther ErrorCategory = "provider_other"
	CategoryTransport     ErrorCategory = "transport"
)

// StatusQuotaExceeded is the status DeepL uses when the usage limit is reached.
const StatusQuotaExceeded = 456

// ValidationError rejects a request before any external call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Message)
}

// ProviderError indicates the translation provider answered with a failure.
type ProviderError struct {
	Category   ErrorCategory
	StatusCode int
	Message    string
	Cause      error
	Retryable  bool          // Whether the operation can be retried
	RetryAfter time.Duration // Server-requested pause before retrying, if any
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error (%d): %s: %v", e.StatusCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error (%d): %s", e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// TransportError indicates the request never got a response from the provider.
type TransportError struct {
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("transport error: %s", e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// GlossaryError indicates the glossary file exists but could not be read.
type GlossaryError struct {
	Path  string
	Cause error
}

func (e *GlossaryError) Error() string {
	return fmt.Sprintf("glossary error (%s): %v", e.Path, e.Cause)
}

func (e *GlossaryError) Unwrap() error {
	return e.Cause
}

// ClassifyStatus maps a provider HTTP status to a categorized ProviderError.
func ClassifyStatus(status int, message string) *ProviderError {
	err := &ProviderError{
		Category:   CategoryProviderOther,
		StatusCode: status,
		Message:    message,
	}

	switch {
	case status == http.StatusForbidden || status == http.StatusUnauthorized:
		err.Category = CategoryProviderAuth
	case status == StatusQuotaExceeded:
		err.Category = CategoryProviderQuota
	case status == http.StatusTooManyRequests || status >= 500:
		err.Retryable = true
	}

	if err.Message == "" {
		err.Message = http.StatusText(status)
	}
	return err
}

// Category returns the category of err, or CategoryNone for unclassified errors.
func Category(err error) ErrorCategory {
	if err == nil {
		return CategoryNone
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return CategoryValidation
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Category
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return CategoryTransport
	}

	return CategoryNone
}

// UserMessage renders err as a message suitable for showing in place of a translation.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch Category(err) {
	case CategoryValidation:
		var validationErr *ValidationError
		errors.As(err, &validationErr)
		return validationErr.Message
	case CategoryProviderAuth:
		return "translation failed: the API key was rejected"
	case CategoryProviderQuota:
		return "translation failed: the usage limit has been exceeded"
	case CategoryProviderOther:
		var providerErr *ProviderError
		errors.As(err, &providerErr)
		return "translation failed: " + providerErr.Message
	case CategoryTransport:
		return "translation failed: could not reach the translation service"
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "translation failed: request cancelled"
	}
	return "translation failed: " + err.Error()
}
