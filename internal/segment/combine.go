package segment

import (
	"fmt"
	"strings"

	"github.com/alnah/go-dubline/internal/lang"
)

// Combine zips translated segment lists into one multilingual track. Cues
// at the same ordinal position across the languages are merged into a
// single cue whose start is the minimum and end the maximum of the
// contributors, with one "LANG: text" line per language in key order.
// Callers pass lists that are already paired for display.
//
// Every language in key must be present in translations; returns
// ErrMissingLanguage otherwise. The merged segments carry the key's
// plus-joined track name as their language.
func Combine(translations map[string][]Translation, key lang.Key) ([]Translation, error) {
	lists := make([][]Translation, 0, len(key))
	maxLen := 0
	for _, code := range key {
		segs, ok := translations[code]
		if !ok || len(segs) == 0 {
			return nil, fmt.Errorf("subtitles for %q are not available: %w", code, ErrMissingLanguage)
		}
		if len(segs) > maxLen {
			maxLen = len(segs)
		}
		lists = append(lists, segs)
	}

	track := key.Track()
	combined := make([]Translation, 0, maxLen)

	for idx := 0; idx < maxLen; idx++ {
		var (
			start, end float64
			lines      []string
		)
		for i, list := range lists {
			if idx >= len(list) {
				continue
			}
			seg := list[idx]
			if len(lines) == 0 || seg.Start < start {
				start = seg.Start
			}
			if len(lines) == 0 || seg.End > end {
				end = seg.End
			}
			lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(key[i]), normalizeCueText(seg.Text)))
		}
		if len(lines) == 0 {
			continue
		}
		combined = append(combined, Translation{
			Segment: Segment{
				Start: start,
				End:   end,
				Text:  strings.Join(lines, "\n"),
			},
			Language: track,
		})
	}

	return combined, nil
}

// normalizeCueText collapses whitespace runs and strips carriage returns so
// a cue line stays a single display line.
func normalizeCueText(text string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(text, "\r", " ")), " ")
}
