package glosslive

import (
	"strings"
	"unicode"
)

// hangul covers Hangul syllables plus the conjoining and compatibility jamo blocks.
var hangul = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x1100, Hi: 0x11FF, Stride: 1},
		{Lo: 0x3130, Hi: 0x318F, Stride: 1},
		{Lo: 0xAC00, Hi: 0xD7A3, Stride: 1},
	},
}

// japanese covers Hiragana, Katakana and the CJK unified ideographs.
var japanese = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3040, Hi: 0x309F, Stride: 1},
		{Lo: 0x30A0, Hi: 0x30FF, Stride: 1},
		{Lo: 0x4E00, Hi: 0x9FAF, Stride: 1},
	},
}

// DetectLanguage classifies text by script.
// Hangul wins over Japanese scripts when both occur; text made only of ASCII
// letters and whitespace is English; anything else is LangUnknown.
func DetectLanguage(text string) Language {
	if strings.IndexFunc(text, func(r rune) bool { return unicode.Is(hangul, r) }) >= 0 {
		return LangKO
	}
	if strings.IndexFunc(text, func(r rune) bool { return unicode.Is(japanese, r) }) >= 0 {
		return LangJA
	}
	if isASCIIWords(text) {
		return LangEN
	}
	return LangUnknown
}

func isASCIIWords(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r < unicode.MaxASCII && unicode.IsSpace(r):
		default:
			return false
		}
	}
	return true
}

// RouteFor maps a detected language to the route used for translation.
// Korean goes to Japanese, Japanese to Korean, and everything else is
// translated to Korean with provider-side detection and no glossary.
func RouteFor(lang Language) Route {
	switch lang {
	case LangKO:
		return Route{Source: LangKO, Target: LangJA, Direction: DirectionKOJA}
	case LangJA:
		return Route{Source: LangJA, Target: LangKO, Direction: DirectionJAKO}
	default:
		return Route{Source: LangAuto, Target: LangKO, Direction: DirectionNone}
	}
}

// ExplicitRoute builds a route from caller-supplied language codes. Codes
// are upper-cased and otherwise passed through, so regional variants such as
// EN-US reach the provider intact. An empty target defaults to Korean. The
// glossary direction is set only when the base codes are KO/JA or JA/KO.
func ExplicitRoute(from, to Language) Route {
	route := Route{
		Source: upperCode(from),
		Target: upperCode(to),
	}
	if route.Target == LangAuto {
		route.Target = LangKO
	}

	src, dst := NormalizeLanguage(route.Source), NormalizeLanguage(route.Target)
	switch {
	case src == LangKO && dst == LangJA:
		route.Direction = DirectionKOJA
	case src == LangJA && dst == LangKO:
		route.Direction = DirectionJAKO
	}
	return route
}

func upperCode(lang Language) Language {
	return Language(strings.ToUpper(strings.TrimSpace(string(lang))))
}
