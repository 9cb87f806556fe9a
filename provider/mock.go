package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/ZaguanLabs/glosslive"
)

// MockProvider is a canned translation provider for tests and offline runs.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	Detected     glosslive.Language
	Err          error
	CallCount    int
	LastRequest  *ProviderRequest

	mu sync.Mutex
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"안녕하세요":               "こんにちは",
			"こんにちは":               "안녕하세요",
			`<x id="0"/>를 알려주세요`:  `<x id="0"/>を教えてください`,
			`<x id="0"/>を教えてください`: `<x id="0"/>를 알려주세요`,
		},
	}
}

// Translate returns canned translations. Unknown texts come back bracketed.
func (m *MockProvider) Translate(ctx context.Context, req ProviderRequest) ([]ProviderTranslation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastRequest = &req

	if m.Err != nil {
		return nil, m.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, &glosslive.TransportError{Message: "request cancelled", Cause: err}
	}

	results := make([]ProviderTranslation, len(req.Texts))
	for i, text := range req.Texts {
		detected := m.Detected
		if detected == "" {
			detected = glosslive.DetectLanguage(text)
		}
		results[i].DetectedSourceLang = detected

		if translation, ok := m.Translations[text]; ok {
			results[i].Text = translation
		} else {
			results[i].Text = fmt.Sprintf("[%s]", text)
		}
	}

	return results, nil
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastRequest = nil
}

// Verify MockProvider implements TranslationProvider
var _ TranslationProvider = (*MockProvider)(nil)
