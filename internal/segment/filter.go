package segment

import "strings"

// attributionPhrases are subtitle-credit lines that community subtitle
// tools inject into transcripts. They must never be translated into cues or
// spoken by the dub.
var attributionPhrases = []string{
	"ondertiteling ingediend door",
	"subtitles submitted by",
	"sous-titres soumis par",
	"subtítulos enviados por",
	"sottotitoli inviati da",
}

// isAttribution reports whether text is third-party subtitle-credit
// boilerplate.
func isAttribution(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "amara") && strings.Contains(lower, "org") {
		return true
	}
	for _, phrase := range attributionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// FilterCredits removes empty segments and third-party subtitle-attribution
// boilerplate. Applied before rendering subtitles and before dub synthesis.
func FilterCredits(segments []Translation) []Translation {
	filtered := make([]Translation, 0, len(segments))
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		if isAttribution(seg.Text) {
			continue
		}
		filtered = append(filtered, seg)
	}
	return filtered
}
