package glosslive

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText computes the SHA-256 hash of text.
// Masked text is hashed as-is: surrounding whitespace is part of the transcript.
func HashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}

// CacheKey generates a cache key from a text hash, the language pair and the
// API key that produced the translation, so a cached result is only served
// back to the same credential. An auto-detected source is keyed as "auto".
func CacheKey(hash string, source, target Language, apiKey string) string {
	src := string(source)
	if source == LangAuto {
		src = "auto"
	}
	return hash + ":" + src + ":" + string(target) + ":" + HashText(apiKey)[:16]
}
