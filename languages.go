package glosslive

import "strings"

// LanguageNames maps provider language codes to human-readable names.
var LanguageNames = map[Language]string{
	LangKO: "Korean",
	LangJA: "Japanese",
	LangEN: "English",
	"ZH":   "Chinese",
	"DE":   "German",
	"ES":   "Spanish",
	"FR":   "French",
	"IT":   "Italian",
	"PT":   "Portuguese",
	"RU":   "Russian",
}

// NormalizeLanguage converts locale-style codes to the provider form
// (e.g., "ja_JP" → "JA", "ko-KR" → "KO", "en" → "EN").
func NormalizeLanguage(lang Language) Language {
	code := strings.TrimSpace(string(lang))
	if i := strings.IndexAny(code, "_-"); i > 0 {
		code = code[:i]
	}
	return Language(strings.ToUpper(code))
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(lang Language) string {
	if name, ok := LanguageNames[NormalizeLanguage(lang)]; ok {
		return name
	}
	return string(lang)
}

// LowerCode returns the lower-case form of a language code ("JA" → "ja").
func LowerCode(lang Language) string {
	return strings.ToLower(string(lang))
}
