package glosslive_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ZaguanLabs/glosslive"
	"github.com/ZaguanLabs/glosslive/cache"
	"github.com/ZaguanLabs/glosslive/provider"
)

// Benchmarks for performance validation

func benchmarkGlossary(size int) *glosslive.Glossary {
	entries := []glosslive.GlossaryEntry{
		{KO: "사업자등록번호", JA: "事業者登録番号"},
		{KO: "사업자", JA: "事業者"},
		{KO: "부가가치세", JA: "付加価値税"},
	}
	for i := len(entries); i < size; i++ {
		entries = append(entries, glosslive.GlossaryEntry{
			KO: fmt.Sprintf("용어%d", i),
			JA: fmt.Sprintf("用語%d", i),
		})
	}
	return glosslive.NewGlossary(entries)
}

func BenchmarkHashText(b *testing.B) {
	text := "사업자등록번호를 알려주세요"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		glosslive.HashText(text)
	}
}

func BenchmarkCacheKey(b *testing.B) {
	hash := "a591a6d40bf420404a011733cfb7b190d62c65bf0bcda32b57b277d9ad9f146e"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		glosslive.CacheKey(hash, glosslive.LangKO, glosslive.LangJA, "key")
	}
}

func BenchmarkDetectLanguage(b *testing.B) {
	texts := []string{
		"사업자등록번호를 알려주세요",
		"事業者登録番号を教えてください",
		"hello there",
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		glosslive.DetectLanguage(texts[i%len(texts)])
	}
}

func BenchmarkInMemoryCache_Get(b *testing.B) {
	c := cache.NewInMemoryCache(cache.DefaultMaxEntries, time.Hour)
	_ = c.Set("test-key", "test-value")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("test-key")
	}
}

func BenchmarkInMemoryCache_Set(b *testing.B) {
	c := cache.NewInMemoryCache(cache.DefaultMaxEntries, time.Hour)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Set(fmt.Sprintf("key-%d", i%2000), "value")
	}
}

func BenchmarkMask_Small(b *testing.B) {
	m := glosslive.NewMasker(benchmarkGlossary(3), glosslive.NewXMLTagToken())
	text := "사업자등록번호를 알려주세요"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Mask(text, glosslive.DirectionKOJA)
	}
}

func BenchmarkMask_LargeGlossary(b *testing.B) {
	m := glosslive.NewMasker(benchmarkGlossary(500), glosslive.NewXMLTagToken())
	text := strings.Repeat("사업자등록번호와 부가가치세, 용어42 그리고 용어499를 확인합니다. ", 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Mask(text, glosslive.DirectionKOJA)
	}
}

func BenchmarkRestore(b *testing.B) {
	token := glosslive.NewXMLTagToken()
	masked := glosslive.NewMasker(benchmarkGlossary(3), token).
		Mask("사업자등록번호와 부가가치세를 알려주세요", glosslive.DirectionKOJA)
	r := glosslive.NewRestorer(token)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Restore(masked.Text, masked.Replacements)
	}
}

func BenchmarkTranslator_Translate_Cached(b *testing.B) {
	p := provider.NewMockProvider()
	tr := glosslive.NewTranslator(p,
		glosslive.WithGlossary(benchmarkGlossary(3)),
		glosslive.WithCache(cache.NewInMemoryCache(cache.DefaultMaxEntries, time.Hour)),
	)
	ctx := context.Background()
	req := glosslive.Request{Text: "사업자등록번호를 알려주세요", APIKey: "key", AutoDetect: true}

	// Warm up cache
	_, _ = tr.Translate(ctx, req)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tr.Translate(ctx, req)
	}
}

func BenchmarkTranslator_Translate_Uncached(b *testing.B) {
	p := provider.NewMockProvider()
	tr := glosslive.NewTranslator(p, glosslive.WithGlossary(benchmarkGlossary(3)))
	ctx := context.Background()
	req := glosslive.Request{Text: "사업자등록번호를 알려주세요", APIKey: "key", AutoDetect: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tr.Translate(ctx, req)
	}
}

func BenchmarkGetLanguageName(b *testing.B) {
	for i := 0; i < b.N; i++ {
		glosslive.GetLanguageName(glosslive.LangJA)
	}
}
