package glosslive

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Translator runs transcripts through detection, glossary masking, the
// external provider and term restoration.
type Translator struct {
	provider TranslationProvider
	glossary *Glossary
	token    MarkupToken
	cache    TranslationCache
	logger   *zap.SugaredLogger

	masker   *Masker
	restorer *Restorer
}

// TranslationProvider is the interface for external translation backends.
type TranslationProvider interface {
	Translate(ctx context.Context, req ProviderRequest) ([]ProviderTranslation, error)
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithGlossary sets the term glossary used for masking.
func WithGlossary(glossary *Glossary) TranslatorOption {
	return func(t *Translator) {
		t.glossary = glossary
	}
}

// WithMarkupToken sets the placeholder syntax. It must match what the
// provider preserves in markup mode.
func WithMarkupToken(token MarkupToken) TranslatorOption {
	return func(t *Translator) {
		t.token = token
	}
}

// WithCache memoizes provider output keyed by masked text and language pair.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.SugaredLogger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// NewTranslator creates a new Translator backed by provider.
func NewTranslator(provider TranslationProvider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		provider: provider,
		logger:   zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.glossary == nil {
		t.glossary = EmptyGlossary()
	}
	if t.token == nil {
		t.token = NewXMLTagToken()
	}
	t.masker = NewMasker(t.glossary, t.token)
	t.restorer = NewRestorer(t.token)

	return t
}

// Translate translates one transcript. Each call makes at most one provider
// request; retries are left to the caller or a RetryableProvider.
func (t *Translator) Translate(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	start := time.Now()
	route := t.Route(req)

	masked := MaskResult{Text: req.Text}
	if route.Direction != DirectionNone {
		masked = t.masker.Mask(req.Text, route.Direction)
		if len(masked.Replacements) > 0 {
			t.logger.Debugw("glossary terms masked",
				"direction", route.Direction,
				"count", len(masked.Replacements))
		}
	}

	translation, cached, err := t.translateMasked(ctx, route, masked.Text, req.APIKey)
	if err != nil {
		t.logger.Warnw("translation failed",
			"source", route.Source,
			"target", route.Target,
			"category", Category(err),
			"error", err)
		return nil, err
	}

	translated := translation.Text
	if len(masked.Replacements) > 0 {
		translated = t.restorer.Restore(translated, masked.Replacements)
		if residual := t.restorer.Residual(translated); len(residual) > 0 {
			t.logger.Warnw("placeholders left after restoration", "count", len(residual))
		}
	}

	detected := NormalizeLanguage(translation.DetectedSourceLang)
	if detected == LangAuto {
		detected = route.Source
	}

	result := &Result{
		Source:             req.Text,
		Translated:         translated,
		DetectedSourceLang: detected,
		TargetLang:         route.Target,
		Direction:          route.Direction,
		Replacements:       masked.Replacements,
		Cached:             cached,
		Elapsed:            time.Since(start),
	}

	t.logger.Debugw("translation complete",
		"detected", result.DetectedSourceLang,
		"target", result.TargetLang,
		"cached", cached,
		"elapsed", result.Elapsed)

	return result, nil
}

// Route resolves the source, target and glossary direction for req.
func (t *Translator) Route(req Request) Route {
	if req.AutoDetect {
		return RouteFor(DetectLanguage(req.Text))
	}
	return ExplicitRoute(req.From, req.To)
}

func validate(req Request) error {
	if strings.TrimSpace(req.Text) == "" {
		return &ValidationError{Field: "text", Message: "text to translate is required"}
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return &ValidationError{Field: "apiKey", Message: "translation API key is required"}
	}
	return nil
}

// translateMasked calls the provider, consulting the cache first.
func (t *Translator) translateMasked(ctx context.Context, route Route, text, apiKey string) (ProviderTranslation, bool, error) {
	cacheKey := CacheKey(HashText(text), route.Source, route.Target, apiKey)

	if t.cache != nil {
		if cached, ok := t.cache.Get(cacheKey); ok {
			var pt ProviderTranslation
			if err := json.Unmarshal([]byte(cached), &pt); err == nil {
				return pt, true, nil
			}
		}
	}

	if t.provider == nil {
		return ProviderTranslation{}, false, &ProviderError{
			Category: CategoryProviderOther,
			Message:  "no translation provider configured",
		}
	}

	results, err := t.provider.Translate(ctx, ProviderRequest{
		Texts:          []string{text},
		TargetLang:     route.Target,
		SourceLang:     route.Source,
		PreserveMarkup: true,
		APIKey:         apiKey,
	})
	if err != nil {
		return ProviderTranslation{}, false, categorize(err)
	}
	if len(results) == 0 {
		return ProviderTranslation{}, false, &ProviderError{
			Category: CategoryProviderOther,
			Message:  "provider returned no translations",
		}
	}

	if t.cache != nil {
		if data, err := json.Marshal(results[0]); err == nil {
			if err := t.cache.Set(cacheKey, string(data)); err != nil {
				t.logger.Debugw("cache set failed", "error", err)
			}
		}
	}

	return results[0], false, nil
}

// categorize makes sure every provider failure carries a category.
func categorize(err error) error {
	if Category(err) != CategoryNone {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Message: "request aborted", Cause: err}
	}
	return &ProviderError{
		Category: CategoryProviderOther,
		Message:  err.Error(),
		Cause:    err,
	}
}

// Glossary returns the glossary used for masking.
func (t *Translator) Glossary() *Glossary {
	return t.glossary
}

// Token returns the placeholder syntax.
func (t *Translator) Token() MarkupToken {
	return t.token
}
