// Package segment holds the transcript data model shared by every pipeline
// stage: timestamped segments, their translated counterparts, pairing for
// display, credit filtering, and the combined bilingual merge.
//
// Segments are immutable once created; every transformation returns new
// values so stages can hand lists forward without sharing mutable state.
package segment

import (
	"sort"
	"strings"
)

// Segment is a timestamped piece of transcript text. Times are seconds
// relative to the start of the audio stream.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Translation is a Segment annotated with its target language code.
type Translation struct {
	Segment
	Language string `json:"language"`
}

// Transcript is the reconciled output of transcription: full text, the
// timestamped segments on one continuous timeline, and the detected
// language.
type Transcript struct {
	Text     string
	Segments []Segment
	Language string
}

// Build converts a transcript's raw segments into Segments, shifting both
// start and end by baseOffset and dropping entries whose text is empty or
// whitespace. baseOffset corrects for containers whose audio stream does
// not begin at t=0.
func Build(t Transcript, baseOffset float64) []Segment {
	segments := make([]Segment, 0, len(t.Segments))
	for _, raw := range t.Segments {
		text := strings.TrimSpace(raw.Text)
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Start: raw.Start + baseOffset,
			End:   raw.End + baseOffset,
			Text:  text,
		})
	}
	return segments
}

// Pair greedily groups consecutive segments two at a time. Each pair spans
// from the first member's start to the last member's end, with the texts
// space-joined; a trailing leftover becomes a one-member pair. Halves the
// subtitle cue count for readability.
func Pair(segments []Segment) []Segment {
	pairs := make([]Segment, 0, (len(segments)+1)/2)
	var buffer []Segment

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		pairs = append(pairs, Segment{
			Start: buffer[0].Start,
			End:   buffer[len(buffer)-1].End,
			Text:  joinTexts(buffer),
		})
		buffer = buffer[:0]
	}

	for _, seg := range segments {
		buffer = append(buffer, seg)
		if len(buffer) == 2 {
			flush()
		}
	}
	flush()

	return pairs
}

// PairTranslations groups translated segments two at a time, skipping
// empty-text entries before grouping. Each pair carries the first member's
// language.
func PairTranslations(segments []Translation) []Translation {
	pairs := make([]Translation, 0, (len(segments)+1)/2)
	var buffer []Translation

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		members := make([]Segment, len(buffer))
		for i, t := range buffer {
			members[i] = t.Segment
		}
		pairs = append(pairs, Translation{
			Segment: Segment{
				Start: buffer[0].Start,
				End:   buffer[len(buffer)-1].End,
				Text:  joinTexts(members),
			},
			Language: buffer[0].Language,
		})
		buffer = buffer[:0]
	}

	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		buffer = append(buffer, seg)
		if len(buffer) == 2 {
			flush()
		}
	}
	flush()

	return pairs
}

// SortByStart returns a copy of segments ordered by non-decreasing start
// time. Stages that receive segments from a concurrent producer re-sort
// rather than trusting arrival order.
func SortByStart(segments []Translation) []Translation {
	sorted := make([]Translation, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})
	return sorted
}

// joinTexts space-joins the trimmed texts of non-empty members.
func joinTexts(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
