package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ZaguanLabs/glosslive"
)

const (
	// DeepLFreeURL is the API host for free-plan keys (suffix ":fx").
	DeepLFreeURL = "https://api-free.deepl.com"
	// DeepLProURL is the API host for paid keys.
	DeepLProURL = "https://api.deepl.com"
)

// DeepLProvider implements TranslationProvider using the DeepL v2 API.
type DeepLProvider struct {
	baseURL     string
	client      *http.Client
	tagHandling string
}

// DeepLConfig holds configuration for the DeepL provider.
type DeepLConfig struct {
	BaseURL     string       // API host (default: chosen from the key suffix)
	HTTPClient  *http.Client // HTTP client (default: http.Client with no timeout)
	TagHandling string       // Markup mode when PreserveMarkup is set (default: "xml")
}

type deeplRequest struct {
	Text        []string `json:"text"`
	TargetLang  string   `json:"target_lang"`
	SourceLang  string   `json:"source_lang,omitempty"`
	TagHandling string   `json:"tag_handling,omitempty"`
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

type deeplErrorBody struct {
	Message string `json:"message"`
}

// NewDeepLProvider creates a new DeepL provider.
func NewDeepLProvider(cfg DeepLConfig) *DeepLProvider {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	tagHandling := cfg.TagHandling
	if tagHandling == "" {
		tagHandling = "xml"
	}

	return &DeepLProvider{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		client:      client,
		tagHandling: tagHandling,
	}
}

// Translate sends the texts to DeepL in a single request.
func (p *DeepLProvider) Translate(ctx context.Context, req ProviderRequest) ([]ProviderTranslation, error) {
	if len(req.Texts) == 0 {
		return []ProviderTranslation{}, nil
	}

	body := deeplRequest{
		Text:       req.Texts,
		TargetLang: string(req.TargetLang),
		SourceLang: string(req.SourceLang),
	}
	if req.PreserveMarkup {
		body.TagHandling = p.tagHandling
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &glosslive.ProviderError{
			Category: glosslive.CategoryProviderOther,
			Message:  "encoding request",
			Cause:    err,
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(req.APIKey), bytes.NewReader(payload))
	if err != nil {
		return nil, &glosslive.TransportError{Message: "building request", Cause: err}
	}
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+req.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", glosslive.UserAgent())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &glosslive.TransportError{Message: "DeepL request failed", Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &glosslive.TransportError{Message: "reading DeepL response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody deeplErrorBody
		_ = json.Unmarshal(data, &errBody)
		perr := glosslive.ClassifyStatus(resp.StatusCode, errBody.Message)
		perr.RetryAfter = retryAfter(resp.Header)
		return nil, perr
	}

	var parsed deeplResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &glosslive.ProviderError{
			Category:   glosslive.CategoryProviderOther,
			StatusCode: resp.StatusCode,
			Message:    "invalid response format from DeepL",
			Cause:      err,
		}
	}

	if len(parsed.Translations) != len(req.Texts) {
		return nil, &glosslive.ProviderError{
			Category:   glosslive.CategoryProviderOther,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("expected %d translations, got %d", len(req.Texts), len(parsed.Translations)),
		}
	}

	results := make([]ProviderTranslation, len(parsed.Translations))
	for i, tr := range parsed.Translations {
		results[i] = ProviderTranslation{
			Text:               tr.Text,
			DetectedSourceLang: glosslive.Language(strings.ToUpper(tr.DetectedSourceLanguage)),
		}
	}
	return results, nil
}

// endpoint picks the API host; keys ending in ":fx" belong to the free plan.
func (p *DeepLProvider) endpoint(apiKey string) string {
	base := p.baseURL
	if base == "" {
		base = DeepLProURL
		if strings.HasSuffix(apiKey, ":fx") {
			base = DeepLFreeURL
		}
	}
	return base + "/v2/translate"
}

// NewHTTPClient returns an HTTP client suitable for DeepL; a zero timeout
// leaves cancellation to the caller's context.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// Verify DeepLProvider implements TranslationProvider
var _ TranslationProvider = (*DeepLProvider)(nil)

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
