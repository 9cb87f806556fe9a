package glosslive

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// mockProvider echoes text back unless a translation is registered.
type mockProvider struct {
	translations map[string]string
	detected     Language
	failures     []error // returned in order before succeeding
	callCount    int
	lastRequest  *ProviderRequest
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		translations: map[string]string{},
		detected:     LangEN,
	}
}

func (m *mockProvider) Translate(ctx context.Context, req ProviderRequest) ([]ProviderTranslation, error) {
	m.callCount++
	m.lastRequest = &req

	if len(m.failures) > 0 {
		err := m.failures[0]
		m.failures = m.failures[1:]
		return nil, err
	}

	detected := req.SourceLang
	if detected == LangAuto {
		detected = m.detected
	}

	results := make([]ProviderTranslation, len(req.Texts))
	for i, text := range req.Texts {
		out := text
		if translation, ok := m.translations[text]; ok {
			out = translation
		}
		results[i] = ProviderTranslation{Text: out, DetectedSourceLang: detected}
	}
	return results, nil
}

// mockCache is a simple map-backed cache for testing
type mockCache struct {
	data map[string]string
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]string)}
}

func (c *mockCache) Get(key string) (string, bool) {
	val, ok := c.data[key]
	return val, ok
}

func (c *mockCache) Set(key string, value string) error {
	c.data[key] = value
	return nil
}

func testGlossary() *Glossary {
	return NewGlossary([]GlossaryEntry{
		{KO: "사업자등록번호", JA: "事業者登録番号"},
		{KO: "계좌", JA: "口座"},
		{KO: "계좌번호", JA: "口座番号"},
	})
}

func TestTranslator_KoreanToJapaneseWithGlossary(t *testing.T) {
	p := newMockProvider()
	tr := NewTranslator(p, WithGlossary(testGlossary()))

	result, err := tr.Translate(context.Background(), Request{
		Text:       "사업자등록번호를 알려주세요",
		APIKey:     "key",
		AutoDetect: true,
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	sent := p.lastRequest.Texts[0]
	if strings.Contains(sent, "사업자등록번호") {
		t.Errorf("glossary term should be masked before translation, sent %q", sent)
	}
	if !strings.Contains(sent, `<x id="0"/>`) {
		t.Errorf("expected placeholder 0 in %q", sent)
	}
	if !p.lastRequest.PreserveMarkup {
		t.Error("markup preservation should be enabled")
	}
	if p.lastRequest.SourceLang != LangKO || p.lastRequest.TargetLang != LangJA {
		t.Errorf("unexpected route %s → %s", p.lastRequest.SourceLang, p.lastRequest.TargetLang)
	}

	if result.Translated != "事業者登録番号를 알려주세요" {
		t.Errorf("Translated = %q", result.Translated)
	}
	if result.Direction != DirectionKOJA || result.TargetLang != LangJA {
		t.Errorf("unexpected direction %q / target %q", result.Direction, result.TargetLang)
	}
	if result.DetectedSourceLang != LangKO {
		t.Errorf("DetectedSourceLang = %q", result.DetectedSourceLang)
	}
}

func TestTranslator_JapaneseToKorean(t *testing.T) {
	p := newMockProvider()
	tr := NewTranslator(p, WithGlossary(testGlossary()))

	result, err := tr.Translate(context.Background(), Request{
		Text:       "口座番号と口座",
		APIKey:     "key",
		AutoDetect: true,
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	if result.Translated != "계좌번호と계좌" {
		t.Errorf("Translated = %q", result.Translated)
	}
	if len(result.Replacements) != 2 {
		t.Errorf("expected 2 replacements, got %d", len(result.Replacements))
	}
}

func TestTranslator_OtherLanguageSkipsGlossary(t *testing.T) {
	p := newMockProvider()
	p.translations["hello world"] = "안녕 세상"
	tr := NewTranslator(p, WithGlossary(testGlossary()))

	result, err := tr.Translate(context.Background(), Request{
		Text:       "hello world",
		APIKey:     "key",
		AutoDetect: true,
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	if p.lastRequest.SourceLang != LangAuto {
		t.Errorf("source should be left to the provider, got %q", p.lastRequest.SourceLang)
	}
	if p.lastRequest.TargetLang != LangKO {
		t.Errorf("target should default to KO, got %q", p.lastRequest.TargetLang)
	}
	if result.Direction != DirectionNone || len(result.Replacements) != 0 {
		t.Errorf("glossary should be skipped, got %q with %d replacements", result.Direction, len(result.Replacements))
	}
	if result.DetectedSourceLang != LangEN {
		t.Errorf("DetectedSourceLang = %q, want EN", result.DetectedSourceLang)
	}
}

func TestTranslator_ExplicitRoute(t *testing.T) {
	p := newMockProvider()
	tr := NewTranslator(p, WithGlossary(testGlossary()))

	result, err := tr.Translate(context.Background(), Request{
		Text:   "계좌",
		APIKey: "key",
		From:   "ko",
		To:     "ja",
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if result.Translated != "口座" {
		t.Errorf("Translated = %q", result.Translated)
	}

	// Pairs outside KO/JA are passed through without the glossary.
	_, err = tr.Translate(context.Background(), Request{
		Text:   "계좌",
		APIKey: "key",
		From:   "ko",
		To:     "en-us",
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if p.lastRequest.Texts[0] != "계좌" {
		t.Errorf("text should not be masked for KO→EN, got %q", p.lastRequest.Texts[0])
	}
	if p.lastRequest.TargetLang != "EN-US" {
		t.Errorf("regional target should reach the provider as EN-US, got %q", p.lastRequest.TargetLang)
	}
}

func TestTranslator_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"empty text", Request{Text: "", APIKey: "key"}, "text"},
		{"blank text", Request{Text: "   ", APIKey: "key"}, "text"},
		{"missing key", Request{Text: "안녕"}, "apiKey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newMockProvider()
			tr := NewTranslator(p)

			_, err := tr.Translate(context.Background(), tt.req)

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if validationErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", validationErr.Field, tt.field)
			}
			if p.callCount != 0 {
				t.Errorf("provider should not be called, got %d calls", p.callCount)
			}
		})
	}
}

func TestTranslator_ProviderErrorsPassThrough(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category ErrorCategory
	}{
		{"auth", ClassifyStatus(403, "Forbidden"), CategoryProviderAuth},
		{"quota", ClassifyStatus(456, "Quota exceeded"), CategoryProviderQuota},
		{"other", ClassifyStatus(400, "Bad request"), CategoryProviderOther},
		{"transport", &TransportError{Message: "connection refused"}, CategoryTransport},
		{"unclassified", errors.New("boom"), CategoryProviderOther},
		{"cancelled", context.Canceled, CategoryTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newMockProvider()
			p.failures = []error{tt.err}
			tr := NewTranslator(p)

			_, err := tr.Translate(context.Background(), Request{Text: "안녕", APIKey: "key", AutoDetect: true})
			if Category(err) != tt.category {
				t.Errorf("Category = %q, want %q (err %v)", Category(err), tt.category, err)
			}
			if p.callCount != 1 {
				t.Errorf("expected exactly one attempt, got %d", p.callCount)
			}
		})
	}
}

func TestTranslator_Cache(t *testing.T) {
	p := newMockProvider()
	c := newMockCache()
	tr := NewTranslator(p, WithGlossary(testGlossary()), WithCache(c))

	req := Request{Text: "계좌번호", APIKey: "key", AutoDetect: true}

	first, err := tr.Translate(context.Background(), req)
	if err != nil {
		t.Fatalf("first Translate failed: %v", err)
	}
	if first.Cached {
		t.Error("first call should not be cached")
	}

	second, err := tr.Translate(context.Background(), req)
	if err != nil {
		t.Fatalf("second Translate failed: %v", err)
	}
	if !second.Cached {
		t.Error("second call should be served from cache")
	}
	if second.Translated != first.Translated {
		t.Errorf("cached translation %q differs from %q", second.Translated, first.Translated)
	}
	if p.callCount != 1 {
		t.Errorf("expected 1 provider call, got %d", p.callCount)
	}
}

// keyCheckingProvider rejects every API key except good.
type keyCheckingProvider struct {
	mockProvider
	good string
}

func (p *keyCheckingProvider) Translate(ctx context.Context, req ProviderRequest) ([]ProviderTranslation, error) {
	if req.APIKey != p.good {
		p.callCount++
		return nil, ClassifyStatus(403, "Wrong API key")
	}
	return p.mockProvider.Translate(ctx, req)
}

func TestTranslator_CacheDoesNotBypassRejectedKey(t *testing.T) {
	p := &keyCheckingProvider{mockProvider: *newMockProvider(), good: "good"}
	p.translations["안녕하세요"] = "こんにちは"
	c := newMockCache()
	tr := NewTranslator(p, WithCache(c))

	if _, err := tr.Translate(context.Background(), Request{Text: "안녕하세요", APIKey: "good", AutoDetect: true}); err != nil {
		t.Fatalf("Translate with good key failed: %v", err)
	}

	result, err := tr.Translate(context.Background(), Request{Text: "안녕하세요", APIKey: "revoked", AutoDetect: true})
	if Category(err) != CategoryProviderAuth {
		t.Fatalf("expected provider_auth for a rejected key, got result %+v err %v", result, err)
	}
	if p.callCount != 2 {
		t.Errorf("rejected key should reach the provider, got %d calls", p.callCount)
	}

	again, err := tr.Translate(context.Background(), Request{Text: "안녕하세요", APIKey: "good", AutoDetect: true})
	if err != nil || !again.Cached {
		t.Errorf("good key should still hit the cache, got cached=%v err=%v", again != nil && again.Cached, err)
	}
}

func TestTranslator_FailuresNotCached(t *testing.T) {
	p := newMockProvider()
	p.failures = []error{ClassifyStatus(500, "")}
	c := newMockCache()
	tr := NewTranslator(p, WithCache(c))

	req := Request{Text: "안녕", APIKey: "key", AutoDetect: true}
	if _, err := tr.Translate(context.Background(), req); err == nil {
		t.Fatal("expected error")
	}
	if len(c.data) != 0 {
		t.Errorf("failed translation should not be cached, got %d entries", len(c.data))
	}

	if _, err := tr.Translate(context.Background(), req); err != nil {
		t.Fatalf("second attempt failed: %v", err)
	}
	if p.callCount != 2 {
		t.Errorf("expected 2 provider calls, got %d", p.callCount)
	}
}

func TestTranslator_NoProvider(t *testing.T) {
	tr := NewTranslator(nil)

	_, err := tr.Translate(context.Background(), Request{Text: "안녕", APIKey: "key"})
	if Category(err) != CategoryProviderOther {
		t.Errorf("expected provider error, got %v", err)
	}
}

func TestTranslator_ResidualPlaceholderKept(t *testing.T) {
	p := newMockProvider()
	// The provider drops the closing slash, breaking the placeholder.
	p.translations[`<x id="0"/>는`] = `<x id="0">は`
	tr := NewTranslator(p, WithGlossary(testGlossary()))

	result, err := tr.Translate(context.Background(), Request{Text: "계좌는", APIKey: "key", AutoDetect: true})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if result.Translated != `<x id="0">は` {
		t.Errorf("mangled placeholder should be left verbatim, got %q", result.Translated)
	}
}
