package glosslive

import "time"

// Language is an upper-case language code as used by the translation provider.
type Language string

const (
	// LangKO is Korean.
	LangKO Language = "KO"
	// LangJA is Japanese.
	LangJA Language = "JA"
	// LangEN is English.
	LangEN Language = "EN"
	// LangUnknown means the script heuristic could not classify the text.
	LangUnknown Language = "UNKNOWN"
	// LangAuto leaves source detection to the provider.
	LangAuto Language = ""
)

// Direction names which glossary mapping applies to a request.
type Direction string

const (
	// DirectionNone skips glossary handling entirely.
	DirectionNone Direction = ""
	// DirectionKOJA translates Korean to Japanese using the forward mapping.
	DirectionKOJA Direction = "ko-ja"
	// DirectionJAKO translates Japanese to Korean using the reverse mapping.
	DirectionJAKO Direction = "ja-ko"
)

// Route is the resolved source/target pair for one translation request.
type Route struct {
	Source    Language // LangAuto when the provider should detect it
	Target    Language
	Direction Direction
}

// GlossaryEntry is one pair of equivalent terms.
type GlossaryEntry struct {
	KO string `json:"ko"`
	JA string `json:"ja"`
}

// Replacement links a placeholder id to the term that must replace it after translation.
type Replacement struct {
	ID     int    `json:"id"`     // Placeholder identifier, unique within one masking pass
	Source string `json:"source"` // Masked source-language term
	Term   string `json:"term"`   // Target-language term restored in its place
}

// MaskResult is the output of a masking pass.
type MaskResult struct {
	Text         string
	Replacements []Replacement
}

// Request is a translate call as received from a caller.
type Request struct {
	Text       string   `json:"text"`
	APIKey     string   `json:"apiKey"`
	AutoDetect bool     `json:"autoDetect"`
	From       Language `json:"from,omitempty"`
	To         Language `json:"to,omitempty"`
}

// Result is the outcome of a successful translation.
type Result struct {
	Source             string        `json:"source"`       // Original transcript text
	Translated         string        `json:"translated"`   // Translated text with glossary terms restored
	DetectedSourceLang Language      `json:"detectedLang"` // Source language reported by the provider
	TargetLang         Language      `json:"targetLang"`   // Resolved target language
	Direction          Direction     `json:"direction,omitempty"`
	Replacements       []Replacement `json:"replacements,omitempty"`
	Cached             bool          `json:"cached"`
	Elapsed            time.Duration `json:"elapsedNs"`
}

// ProviderRequest is the call contract for external translators.
type ProviderRequest struct {
	Texts          []string // Text units to translate (the pipeline always sends one)
	TargetLang     Language
	SourceLang     Language // LangAuto lets the provider detect the source
	PreserveMarkup bool     // Keep inline markup tags untouched
	APIKey         string
}

// ProviderTranslation is one translated text unit.
type ProviderTranslation struct {
	Text               string
	DetectedSourceLang Language
}
