package lang

import (
	"fmt"
	"strings"
)

// Key identifies a combined-subtitle track by its ordered language codes.
// Order is part of the identity: a track requested as en,nl is a different
// artifact than nl,en, matching the filenames the pipeline produces.
type Key []string

// NewKey builds a Key from requested language codes, normalizing each and
// dropping empties and duplicates while preserving first-seen order.
// Returns ErrInvalidKey if fewer than two distinct languages remain.
func NewKey(languages []string) (Key, error) {
	seen := make(map[string]bool, len(languages))
	key := make(Key, 0, len(languages))
	for _, code := range languages {
		normalized := Normalize(code)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		key = append(key, normalized)
	}
	if len(key) < 2 {
		return nil, fmt.Errorf("combined subtitles need at least two distinct languages: %w", ErrInvalidKey)
	}
	return key, nil
}

// String returns the underscore-joined form used inside filenames,
// e.g. "en_nl".
func (k Key) String() string {
	return strings.Join(k, "_")
}

// Track returns the plus-joined form stored on merged segments,
// e.g. "en+nl".
func (k Key) Track() string {
	return strings.Join(k, "+")
}

// Filename returns the subtitle filename for this key,
// e.g. "subs_combined_en_nl.vtt".
func (k Key) Filename() string {
	return "subs_combined_" + k.String() + ".vtt"
}

// ParseKey recovers a Key from the underscore-joined form produced by
// String. Round-trips exactly: ParseKey(k.String()) == k.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, "_")
	languages := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			languages = append(languages, part)
		}
	}
	return NewKey(languages)
}

// ParseFilename extracts a Key from a combined-subtitle filename stem,
// e.g. "subs_combined_en_nl" -> {en, nl}. Returns ErrInvalidKey for names
// that are not combined-subtitle files.
func ParseFilename(stem string) (Key, error) {
	const prefix = "subs_combined_"
	if !strings.HasPrefix(stem, prefix) {
		return nil, fmt.Errorf("%q is not a combined subtitle name: %w", stem, ErrInvalidKey)
	}
	return ParseKey(strings.TrimPrefix(stem, prefix))
}
