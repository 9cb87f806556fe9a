// Package provider contains the external translation backends.
package provider

import "github.com/ZaguanLabs/glosslive"

// TranslationProvider is an alias to the main package interface for convenience.
type TranslationProvider = glosslive.TranslationProvider

// ProviderRequest is an alias to the main package type.
type ProviderRequest = glosslive.ProviderRequest

// ProviderTranslation is an alias to the main package type.
type ProviderTranslation = glosslive.ProviderTranslation
