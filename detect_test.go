package glosslive

import "testing"

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Language
	}{
		{"hangul syllables", "안녕하세요", LangKO},
		{"compatibility jamo", "ㅋㅋㅋ", LangKO},
		{"conjoining jamo", "\u1100\u1161", LangKO},
		{"hiragana", "こんにちは", LangJA},
		{"katakana", "カタカナ", LangJA},
		{"kanji only", "日本語", LangJA},
		{"korean wins over kanji", "日本語 공부", LangKO},
		{"english", "Hello world", LangEN},
		{"english with newline", "Hello\nworld", LangEN},
		{"english with punctuation", "Hello, world!", LangUnknown},
		{"digits", "12345", LangUnknown},
		{"empty", "", LangUnknown},
		{"cyrillic", "Привет", LangUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLanguage(tt.text); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
			}
			// Pure: a second call gives the same answer.
			if again := DetectLanguage(tt.text); again != tt.want {
				t.Errorf("second DetectLanguage(%q) = %q", tt.text, again)
			}
		})
	}
}

func TestRouteFor(t *testing.T) {
	tests := []struct {
		lang Language
		want Route
	}{
		{LangKO, Route{Source: LangKO, Target: LangJA, Direction: DirectionKOJA}},
		{LangJA, Route{Source: LangJA, Target: LangKO, Direction: DirectionJAKO}},
		{LangEN, Route{Source: LangAuto, Target: LangKO, Direction: DirectionNone}},
		{LangUnknown, Route{Source: LangAuto, Target: LangKO, Direction: DirectionNone}},
	}

	for _, tt := range tests {
		if got := RouteFor(tt.lang); got != tt.want {
			t.Errorf("RouteFor(%q) = %+v, want %+v", tt.lang, got, tt.want)
		}
	}
}

func TestExplicitRoute(t *testing.T) {
	tests := []struct {
		from, to Language
		want     Route
	}{
		{"ko", "ja", Route{Source: LangKO, Target: LangJA, Direction: DirectionKOJA}},
		{"JA", "KO", Route{Source: LangJA, Target: LangKO, Direction: DirectionJAKO}},
		{"ja_JP", "ko-KR", Route{Source: "JA_JP", Target: "KO-KR", Direction: DirectionJAKO}},
		{"ko", "en-us", Route{Source: LangKO, Target: "EN-US", Direction: DirectionNone}},
		{"", "PT-BR", Route{Source: LangAuto, Target: "PT-BR", Direction: DirectionNone}},
		{"ja", "zh-hant", Route{Source: LangJA, Target: "ZH-HANT", Direction: DirectionNone}},
		{"", "", Route{Source: LangAuto, Target: LangKO, Direction: DirectionNone}},
		{"en", "ja", Route{Source: LangEN, Target: LangJA, Direction: DirectionNone}},
		{"ko", "", Route{Source: LangKO, Target: LangKO, Direction: DirectionNone}},
	}

	for _, tt := range tests {
		if got := ExplicitRoute(tt.from, tt.to); got != tt.want {
			t.Errorf("ExplicitRoute(%q, %q) = %+v, want %+v", tt.from, tt.to, got, tt.want)
		}
	}
}
