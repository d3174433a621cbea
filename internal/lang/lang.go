// Package lang holds the language configuration shared by the pipeline
// stages: code normalization, display labels, the DeepL code mapping that
// decides which translation provider serves a language, and the
// combined-subtitle key used to name bilingual artifacts.
package lang

import (
	"fmt"
	"strings"
)

// validLanguages contains ISO 639-1 language codes supported by Whisper
// transcription. Not exhaustive; covers the languages the pipeline is
// deployed for plus the common European set.
var validLanguages = map[string]bool{
	"ar": true, // Arabic
	"de": true, // German
	"en": true, // English
	"es": true, // Spanish
	"fi": true, // Finnish
	"fr": true, // French
	"it": true, // Italian
	"ja": true, // Japanese
	"kg": true, // Kituba
	"ko": true, // Korean
	"ln": true, // Lingala
	"lua": true,
	"mg": true, // Malagasy
	"nl": true, // Dutch
	"pl": true, // Polish
	"pt": true, // Portuguese
	"ru": true, // Russian
	"sv": true, // Swedish
	"sw": true, // Swahili
	"yo": true, // Yoruba
	"zh": true, // Chinese
}

// Labels maps language codes to the display names shown in warnings and
// used when an instructed-generation translator needs the language spelled
// out.
var Labels = map[string]string{
	"en":    "English",
	"nl":    "Dutch",
	"es":    "Spanish",
	"fr":    "French",
	"de":    "German",
	"it":    "Italian",
	"sv":    "Swedish",
	"fi":    "Finnish",
	"pt-pt": "European Portuguese",
	"pt-br": "Brazilian Portuguese",
	"ln":    "Lingala",
	"lua":   "Tshiluba",
	"kg":    "Kituba",
	"mg":    "Malagasy",
	"yo":    "Yoruba",
}

// DeepLCodes maps pipeline language codes to DeepL target codes. A language
// absent from this map is translated by the instructed-generation provider
// instead.
var DeepLCodes = map[string]string{
	"en":    "EN-US",
	"nl":    "NL",
	"es":    "ES",
	"fr":    "FR",
	"de":    "DE",
	"it":    "IT",
	"sv":    "SV",
	"fi":    "FI",
	"pt-pt": "PT-PT",
	"pt-br": "PT-BR",
}

// Normalize normalizes a language code to lowercase with hyphen separator.
// Accepts: "pt-BR", "pt_BR", "PT-BR", "pt-br" -> "pt-br"
func Normalize(code string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
}

// Validate checks if the language code is valid.
// Accepts ISO 639-1 codes (e.g., "en", "fr") and locales (e.g., "pt-BR").
// Returns ErrInvalid if the base language is not recognized.
func Validate(code string) error {
	if code == "" {
		return nil // Empty means auto-detect, which is valid
	}

	if !validLanguages[BaseCode(code)] {
		return fmt.Errorf("invalid language code %q (use ISO 639-1 codes like 'en', 'fr', 'pt-BR'): %w",
			code, ErrInvalid)
	}

	return nil
}

// BaseCode extracts the ISO 639-1 base language code from a locale.
// Whisper only accepts base codes, not regional variants.
// Examples: "pt-BR" -> "pt", "EN" -> "en"
func BaseCode(code string) string {
	normalized := Normalize(code)
	if idx := strings.Index(normalized, "-"); idx != -1 {
		return normalized[:idx]
	}
	return normalized
}

// Label returns the display name for a code, falling back to the uppercased
// code for unknown languages.
func Label(code string) string {
	if label, ok := Labels[Normalize(code)]; ok {
		return label
	}
	return strings.ToUpper(code)
}

// SupportedByDeepL reports whether DeepL can translate into code.
func SupportedByDeepL(code string) bool {
	_, ok := DeepLCodes[Normalize(code)]
	return ok
}

// DeepLCode returns the DeepL target code for a pipeline language code.
func DeepLCode(code string) (string, bool) {
	deepL, ok := DeepLCodes[Normalize(code)]
	return deepL, ok
}
