package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ZaguanLabs/glosslive"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements TranslationProvider using OpenAI's chat API.
type OpenAIProvider struct {
	apiKey      string
	baseURL     string
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key, used when the request carries none
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.2)
	BaseURL     string  // Custom base URL (optional)
}

type openaiItem struct {
	Translation            string `json:"translation"`
	DetectedSourceLanguage string `json:"detected_source_language"`
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	return &OpenAIProvider{
		apiKey:      cfg.APIKey,
		baseURL:     cfg.BaseURL,
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate translates a batch of texts with one chat completion.
func (p *OpenAIProvider) Translate(ctx context.Context, req ProviderRequest) ([]ProviderTranslation, error) {
	if len(req.Texts) == 0 {
		return []ProviderTranslation{}, nil
	}

	resp, err := p.clientFor(req.APIKey).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: p.buildUserMessage(req)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &glosslive.ProviderError{
			Category:  glosslive.CategoryProviderOther,
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return p.parseResponse(resp.Choices[0].Message.Content, len(req.Texts))
}

func (p *OpenAIProvider) clientFor(apiKey string) *openai.Client {
	if apiKey == "" || apiKey == p.apiKey {
		return p.client
	}
	config := openai.DefaultConfig(apiKey)
	if p.baseURL != "" {
		config.BaseURL = p.baseURL
	}
	return openai.NewClientWithConfig(config)
}

func (p *OpenAIProvider) buildSystemPrompt(req ProviderRequest) string {
	targetName := glosslive.GetLanguageName(req.TargetLang)

	source := "Detect the source language of each text."
	if req.SourceLang != glosslive.LangAuto {
		source = fmt.Sprintf("The source language is %s.", glosslive.GetLanguageName(req.SourceLang))
	}

	prompt := fmt.Sprintf(`# Role
You are a professional interpreter translating live conversation into %s.

# Task
%s Translate each text into natural, spoken %s.`, targetName, source, targetName)

	if req.PreserveMarkup {
		prompt += `

# Placeholders
Texts may contain self-closing tags such as <x id="0"/>. They stand for fixed terms.
- Copy every tag into the translation exactly once, unchanged.
- Do NOT translate, reorder the attributes of, or remove the tags.`
	}

	prompt += `

# Format
Return a valid JSON object with a single key "translations" holding one object per input text, in the same order.
Each object has "translation" (the translated text) and "detected_source_language" (an upper-case ISO 639-1 code such as "KO" or "JA").
Example: { "translations": [{"translation": "...", "detected_source_language": "KO"}] }
- Do NOT wrap in Markdown code blocks.`

	return prompt
}

func (p *OpenAIProvider) buildUserMessage(req ProviderRequest) string {
	data, _ := json.Marshal(req.Texts)
	return string(data)
}

func (p *OpenAIProvider) parseResponse(content string, expectedCount int) ([]ProviderTranslation, error) {
	var parsed struct {
		Translations []openaiItem `json:"translations"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil || parsed.Translations == nil {
		// A single text may come back as a bare object.
		var single openaiItem
		if err := json.Unmarshal([]byte(content), &single); err != nil || single.Translation == "" {
			return nil, &glosslive.ProviderError{
				Category: glosslive.CategoryProviderOther,
				Message:  "invalid response format from OpenAI",
			}
		}
		parsed.Translations = []openaiItem{single}
	}

	if len(parsed.Translations) != expectedCount {
		return nil, &glosslive.ProviderError{
			Category: glosslive.CategoryProviderOther,
			Message:  fmt.Sprintf("expected %d translations, got %d", expectedCount, len(parsed.Translations)),
		}
	}

	results := make([]ProviderTranslation, len(parsed.Translations))
	for i, item := range parsed.Translations {
		results[i] = ProviderTranslation{
			Text:               item.Translation,
			DetectedSourceLang: glosslive.NormalizeLanguage(glosslive.Language(item.DetectedSourceLanguage)),
		}
	}
	return results, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests && isQuotaCode(apiErr.Code) {
			return &glosslive.ProviderError{
				Category:   glosslive.CategoryProviderQuota,
				StatusCode: apiErr.HTTPStatusCode,
				Message:    apiErr.Message,
				Cause:      err,
			}
		}
		providerErr := glosslive.ClassifyStatus(apiErr.HTTPStatusCode, apiErr.Message)
		providerErr.Cause = err
		return providerErr
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		providerErr := glosslive.ClassifyStatus(reqErr.HTTPStatusCode, "")
		providerErr.Cause = err
		return providerErr
	}

	return &glosslive.TransportError{Message: "OpenAI request failed", Cause: err}
}

func isQuotaCode(code any) bool {
	s, ok := code.(string)
	return ok && strings.EqualFold(s, "insufficient_quota")
}

// Verify OpenAIProvider implements TranslationProvider
var _ TranslationProvider = (*OpenAIProvider)(nil)
