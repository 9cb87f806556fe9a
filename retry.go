package glosslive

import (
	"context"
	"errors"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns defaults suited to live captions: a short,
// bounded backoff so a stale transcript is not translated seconds late.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  250 * time.Millisecond,
		MaxDelay:   2 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry calls fn until it succeeds, fails with a non-retryable error, or
// cfg.MaxRetries retries have been spent. A provider's Retry-After hint
// stretches the backoff; a hint longer than cfg.MaxDelay ends the loop
// since the transcript would be stale by the time it is translated.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !IsRetryable(err) || attempt >= cfg.MaxRetries {
			return zero, err
		}

		delay, ok := retryDelay(cfg, attempt, err)
		if !ok {
			return zero, err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// retryDelay returns the pause before retry number attempt+1.
func retryDelay(cfg RetryConfig, attempt int, err error) (time.Duration, bool) {
	delay := cfg.BaseDelay << attempt
	if delay > cfg.MaxDelay || delay <= 0 {
		delay = cfg.MaxDelay
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) && providerErr.RetryAfter > 0 {
		if providerErr.RetryAfter > cfg.MaxDelay {
			return 0, false
		}
		if providerErr.RetryAfter > delay {
			delay = providerErr.RetryAfter
		}
	}
	return delay, true
}

// IsRetryable reports whether err is worth another attempt.
// Authentication, quota and validation failures never are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return true
	}

	return false
}

// RetryableProvider wraps a TranslationProvider with bounded retry logic.
type RetryableProvider struct {
	provider TranslationProvider
	config   RetryConfig
}

// NewRetryableProvider creates a new provider with retry logic.
func NewRetryableProvider(provider TranslationProvider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{
		provider: provider,
		config:   cfg,
	}
}

// Translate implements TranslationProvider with retry logic.
func (p *RetryableProvider) Translate(ctx context.Context, req ProviderRequest) ([]ProviderTranslation, error) {
	return WithRetry(ctx, p.config, func() ([]ProviderTranslation, error) {
		return p.provider.Translate(ctx, req)
	})
}
