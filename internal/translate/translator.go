// Package translate turns transcript segments into per-language
// translation lists. DeepL serves the languages it has models for; an
// instructed chat completion covers the rest. Translation is all-or-nothing
// per language: one failed segment voids that language and records a
// warning, without touching sibling languages.
package translate

import (
	"context"
	"fmt"

	"github.com/alnah/go-dubline/internal/lang"
	"github.com/alnah/go-dubline/internal/segment"
)

// Translator translates a single text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Registry routes each target language to its translation provider.
type Registry struct {
	deepl Translator
	chat  Translator
}

// NewRegistry creates a Registry. deepl may be nil when no DeepL key is
// configured; affected languages then fall through to the chat provider.
func NewRegistry(deepl, chat Translator) (*Registry, error) {
	if chat == nil {
		return nil, fmt.Errorf("chat translator cannot be nil")
	}
	return &Registry{deepl: deepl, chat: chat}, nil
}

// For returns the provider responsible for targetLang.
func (r *Registry) For(targetLang string) Translator {
	if r.deepl != nil && lang.SupportedByDeepL(targetLang) {
		return r.deepl
	}
	return r.chat
}

// Translate routes one text through the provider for targetLang.
func (r *Registry) Translate(ctx context.Context, text, targetLang string) (string, error) {
	return r.For(targetLang).Translate(ctx, text, targetLang)
}

// All translates every segment into every requested target language.
//
// A language is all-or-nothing: the first failed segment discards that
// language's partial output and appends a warning, then the next language
// proceeds. The result map only holds languages that translated fully.
func All(ctx context.Context, translator Translator, segments []segment.Segment, targetLangs []string) (map[string][]segment.Translation, []string) {
	result := make(map[string][]segment.Translation, len(targetLangs))
	var warnings []string

	for _, target := range targetLangs {
		code := lang.Normalize(target)

		translated, err := translateLanguage(ctx, translator, segments, code)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("translation to %s failed: %v", code, err))
			continue
		}
		if len(translated) > 0 {
			result[code] = translated
		}
	}

	return result, warnings
}

func translateLanguage(ctx context.Context, translator Translator, segments []segment.Segment, code string) ([]segment.Translation, error) {
	translated := make([]segment.Translation, 0, len(segments))
	for _, seg := range segments {
		text, err := translator.Translate(ctx, seg.Text, code)
		if err != nil {
			return nil, err
		}
		translated = append(translated, segment.Translation{
			Segment: segment.Segment{
				Start: seg.Start,
				End:   seg.End,
				Text:  text,
			},
			Language: code,
		})
	}
	return translated, nil
}
