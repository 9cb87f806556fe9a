// Package cache memoizes provider output for repeated transcripts.
//
// Keys come from glosslive.CacheKey, so a hit only ever replays the output
// for the same masked text and language pair.
package cache

import "github.com/ZaguanLabs/glosslive"

// TranslationCache is an alias to the main package interface for convenience.
type TranslationCache = glosslive.TranslationCache
