package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ZaguanLabs/glosslive"
	"github.com/ZaguanLabs/glosslive/cache"
	"github.com/ZaguanLabs/glosslive/history"
	"github.com/ZaguanLabs/glosslive/internal/config"
	"github.com/ZaguanLabs/glosslive/internal/logging"
	"github.com/ZaguanLabs/glosslive/provider"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app is the wired pipeline a command runs against.
type app struct {
	cfg        *config.Config
	logger     *zap.SugaredLogger
	glossary   *glosslive.Glossary
	translator *glosslive.Translator
	store      *history.Store
	redis      *redis.Client
}

// loadConfig reads the environment and applies command-line overrides.
func (c *cli) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.flags.envFile)
	if err != nil {
		return nil, err
	}

	if c.flags.translator != "" {
		cfg.Translator = strings.ToLower(c.flags.translator)
	}
	if c.flags.glossary != "" {
		cfg.GlossaryPath = c.flags.glossary
	}
	if c.flags.historyDir != "" {
		cfg.HistoryDir = c.flags.historyDir
	}
	if c.flags.redisURL != "" {
		cfg.RedisURL = c.flags.redisURL
	}
	if c.flags.logLevel != "" {
		cfg.LogLevel = c.flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp wires configuration into a translator and a history store.
// The caller must call close.
func (c *cli) newApp(ctx context.Context) (*app, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	logger := c.logger
	if logger == nil {
		logger, err = logging.New(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("building logger: %w", err)
		}
	}

	a := &app{cfg: cfg, logger: logger}

	a.glossary, err = glosslive.LoadGlossary(cfg.GlossaryPath)
	if err != nil {
		return nil, err
	}
	if a.glossary.Len(glosslive.DirectionKOJA)+a.glossary.Len(glosslive.DirectionJAKO) == 0 {
		logger.Infow("glossary empty, terms will not be protected", "path", cfg.GlossaryPath)
	} else {
		logger.Infow("glossary loaded",
			"path", cfg.GlossaryPath,
			"ko_to_ja", a.glossary.Len(glosslive.DirectionKOJA),
			"ja_to_ko", a.glossary.Len(glosslive.DirectionJAKO))
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		a.redis = redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.redis.Ping(pingCtx).Err(); err != nil {
			a.redis.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
	}

	var translationCache glosslive.TranslationCache
	if a.redis != nil {
		translationCache = cache.NewRedisCacheFromClient(a.redis, cache.RedisConfig{
			TTL:    24 * time.Hour,
			Logger: logger,
		})
	} else if cfg.CacheSize > 0 {
		translationCache = cache.NewInMemoryCache(cfg.CacheSize, time.Hour)
	}

	p, err := c.buildProvider(cfg)
	if err != nil {
		a.close()
		return nil, err
	}

	opts := []glosslive.TranslatorOption{
		glosslive.WithGlossary(a.glossary),
		glosslive.WithLogger(logger.Named("translator")),
	}
	if translationCache != nil {
		opts = append(opts, glosslive.WithCache(translationCache))
	}
	a.translator = glosslive.NewTranslator(p, opts...)

	var backend history.Backend
	if a.redis != nil {
		backend = history.NewRedisBackend(a.redis, "")
	} else {
		backend, err = history.NewFileBackend(cfg.HistoryDir)
		if err != nil {
			a.close()
			return nil, err
		}
	}

	a.store, err = history.NewStore(ctx, backend, history.WithLogger(logger.Named("history")))
	if err != nil {
		a.close()
		return nil, err
	}

	return a, nil
}

// buildProvider selects the backend and wraps it in the configured decorators.
func (c *cli) buildProvider(cfg *config.Config) (glosslive.TranslationProvider, error) {
	var p glosslive.TranslationProvider
	switch {
	case c.provider != nil:
		p = c.provider
	case cfg.Translator == config.TranslatorDeepL:
		p = provider.NewDeepLProvider(provider.DeepLConfig{
			BaseURL:    cfg.DeepLAPIURL,
			HTTPClient: provider.NewHTTPClient(cfg.RequestTimeout),
		})
	case cfg.Translator == config.TranslatorOpenAI:
		p = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		})
	case cfg.Translator == config.TranslatorMock:
		p = provider.NewMockProvider()
	default:
		return nil, errors.New("no translation backend configured")
	}

	if cfg.RateLimitRPM > 0 {
		p = glosslive.NewRateLimitedProvider(p, glosslive.RateLimitConfig{RequestsPerMinute: cfg.RateLimitRPM})
	}
	if cfg.MaxRetries > 0 {
		retry := glosslive.DefaultRetryConfig()
		retry.MaxRetries = cfg.MaxRetries
		p = glosslive.NewRetryableProvider(p, retry)
	}
	return p, nil
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warnw("closing redis", "error", err)
		}
	}
	_ = a.logger.Sync()
}

// apiKey picks the request key, falling back to the configured one.
func (a *app) apiKey(requested string) string {
	if strings.TrimSpace(requested) != "" {
		return requested
	}
	if a.cfg.Translator == config.TranslatorMock {
		return "mock"
	}
	return a.cfg.APIKey()
}

// recordLatest appends a one-shot translation to the most recently saved
// session, so repeated runs do not push listening sessions out of the
// saved list.
func (a *app) recordLatest(ctx context.Context, result *glosslive.Result) error {
	if sessions := a.store.Sessions(); len(sessions) > 0 {
		if _, err := a.store.LoadSession(ctx, sessions[0].ID); err != nil {
			return err
		}
	}
	if _, err := a.store.Append(ctx, result.Source, result.Translated, glosslive.LowerCode(result.DetectedSourceLang)); err != nil {
		return err
	}
	return a.store.Save(ctx)
}
