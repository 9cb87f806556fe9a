package glosslive

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket limiting outbound translation requests.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	now        func() time.Time
	mu         sync.Mutex
}

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute (default: 120)
	BurstSize         int // Maximum burst size (default: 10)
	MaxKeys           int // Buckets kept by RateLimitedProvider (default: 1024)
}

func (c RateLimitConfig) withDefaults() RateLimitConfig {
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = 120
	}
	if c.BurstSize <= 0 {
		c.BurstSize = 10
	}
	if c.MaxKeys <= 0 {
		c.MaxKeys = 1024
	}
	return c
}

// NewRateLimiter creates a rate limiter that starts with a full bucket.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return newRateLimiter(cfg, time.Now)
}

func newRateLimiter(cfg RateLimitConfig, now func() time.Time) *RateLimiter {
	cfg = cfg.withDefaults()
	return &RateLimiter{
		tokens:     float64(cfg.BurstSize),
		maxTokens:  float64(cfg.BurstSize),
		refillRate: float64(cfg.RequestsPerMinute) / 60.0,
		lastRefill: now(),
		now:        now,
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait := r.reserve()
		if wait == 0 {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve takes a token and returns 0, or returns how long until one is due.
func (r *RateLimiter) reserve() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return 0
	}
	deficit := 1 - r.tokens
	return time.Duration(deficit / r.refillRate * float64(time.Second))
}

// TryAcquire takes a token without blocking and reports whether it got one.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

// refill must be called with r.mu held.
func (r *RateLimiter) refill() {
	now := r.now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.lastRefill = now

	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
}

// Available returns the current number of available tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

// RateLimitedProvider throttles calls to a TranslationProvider. Every API key
// gets its own bucket since provider limits are enforced per key and one
// server may relay requests for several users. At most MaxKeys buckets are
// kept: refilled buckets go first, then the least recently used.
type RateLimitedProvider struct {
	provider TranslationProvider
	config   RateLimitConfig
	now      func() time.Time

	mu       sync.Mutex
	limiters map[string]*keyedLimiter
}

type keyedLimiter struct {
	limiter  *RateLimiter
	lastUsed time.Time
}

// NewRateLimitedProvider creates a new rate-limited provider.
func NewRateLimitedProvider(provider TranslationProvider, cfg RateLimitConfig) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider: provider,
		config:   cfg.withDefaults(),
		now:      time.Now,
		limiters: make(map[string]*keyedLimiter),
	}
}

// Translate implements TranslationProvider with rate limiting.
func (p *RateLimitedProvider) Translate(ctx context.Context, req ProviderRequest) ([]ProviderTranslation, error) {
	if err := p.Limiter(req.APIKey).Wait(ctx); err != nil {
		return nil, &TransportError{
			Message: "rate limit wait cancelled",
			Cause:   err,
		}
	}

	return p.provider.Translate(ctx, req)
}

// Limiter returns the bucket used for apiKey, creating it on first use.
func (p *RateLimitedProvider) Limiter(apiKey string) *RateLimiter {
	key := HashText(apiKey)

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	entry, ok := p.limiters[key]
	if !ok {
		if len(p.limiters) >= p.config.MaxKeys {
			p.evict()
		}
		entry = &keyedLimiter{limiter: newRateLimiter(p.config, p.now)}
		p.limiters[key] = entry
	}
	entry.lastUsed = now
	return entry.limiter
}

// Keys returns the number of buckets currently held.
func (p *RateLimitedProvider) Keys() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.limiters)
}

// evict must be called with p.mu held. A full bucket carries no state a new
// one would not, so those are dropped first.
func (p *RateLimitedProvider) evict() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range p.limiters {
		if entry.limiter.Available() >= entry.limiter.maxTokens {
			delete(p.limiters, key)
			continue
		}
		if oldestKey == "" || entry.lastUsed.Before(oldest) {
			oldestKey, oldest = key, entry.lastUsed
		}
	}
	if len(p.limiters) >= p.config.MaxKeys && oldestKey != "" {
		delete(p.limiters, oldestKey)
	}
}
