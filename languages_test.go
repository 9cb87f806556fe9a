package glosslive

import "testing"

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		in   Language
		want Language
	}{
		{"ko", LangKO},
		{"JA", LangJA},
		{"ja_JP", LangJA},
		{"en-US", LangEN},
		{" ko ", LangKO},
		{"", LangAuto},
	}

	for _, tt := range tests {
		if got := NormalizeLanguage(tt.in); got != tt.want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetLanguageName(t *testing.T) {
	if got := GetLanguageName("ja"); got != "Japanese" {
		t.Errorf("GetLanguageName(ja) = %q", got)
	}
	if got := GetLanguageName("xx"); got != "xx" {
		t.Errorf("unknown code should fall back to itself, got %q", got)
	}
}

func TestLowerCode(t *testing.T) {
	if got := LowerCode(LangJA); got != "ja" {
		t.Errorf("LowerCode(JA) = %q", got)
	}
}
