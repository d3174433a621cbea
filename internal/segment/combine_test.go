package segment_test

import (
	"errors"
	"testing"

	"github.com/alnah/go-dubline/internal/lang"
	"github.com/alnah/go-dubline/internal/segment"
)

func mustKey(t *testing.T, codes ...string) lang.Key {
	t.Helper()
	key, err := lang.NewKey(codes)
	if err != nil {
		t.Fatalf("NewKey(%v): %v", codes, err)
	}
	return key
}

func TestCombine(t *testing.T) {
	t.Parallel()

	translations := map[string][]segment.Translation{
		"en": {
			{Segment: segment.Segment{Start: 0.0, End: 1.5, Text: "Hello world"}, Language: "en"},
			{Segment: segment.Segment{Start: 2.0, End: 3.5, Text: "How are you?"}, Language: "en"},
		},
		"nl": {
			{Segment: segment.Segment{Start: 0.0, End: 1.6, Text: "Hallo wereld"}, Language: "nl"},
			{Segment: segment.Segment{Start: 2.0, End: 3.2, Text: "Hoe gaat het?"}, Language: "nl"},
		},
	}

	got, err := segment.Combine(translations, mustKey(t, "en", "nl"))
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d cues, want 2: %+v", len(got), got)
	}

	first := got[0]
	if first.Start != 0.0 {
		t.Errorf("start: got %.2f, want 0.0", first.Start)
	}
	if first.End != 1.6 {
		t.Errorf("end: got %.2f, want 1.6", first.End)
	}
	if want := "EN: Hello world\nNL: Hallo wereld"; first.Text != want {
		t.Errorf("text: got %q, want %q", first.Text, want)
	}
	if first.Language != "en+nl" {
		t.Errorf("language: got %q, want \"en+nl\"", first.Language)
	}

	second := got[1]
	if second.Start != 2.0 || second.End != 3.5 {
		t.Errorf("second cue span: got (%.2f, %.2f), want (2.00, 3.50)", second.Start, second.End)
	}
	if want := "EN: How are you?\nNL: Hoe gaat het?"; second.Text != want {
		t.Errorf("text: got %q, want %q", second.Text, want)
	}
}

func TestCombineKeyOrderControlsLines(t *testing.T) {
	t.Parallel()

	translations := map[string][]segment.Translation{
		"en": {{Segment: segment.Segment{Start: 0.0, End: 1.0, Text: "Hello"}, Language: "en"}},
		"nl": {{Segment: segment.Segment{Start: 0.0, End: 1.0, Text: "Hallo"}, Language: "nl"}},
	}

	got, err := segment.Combine(translations, mustKey(t, "nl", "en"))
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d cues, want 1", len(got))
	}
	want := "NL: Hallo\nEN: Hello"
	if got[0].Text != want {
		t.Errorf("text: got %q, want %q", got[0].Text, want)
	}
	if got[0].Language != "nl+en" {
		t.Errorf("language: got %q, want \"nl+en\"", got[0].Language)
	}
}

func TestCombineUnevenLengths(t *testing.T) {
	t.Parallel()

	translations := map[string][]segment.Translation{
		"en": {
			{Segment: segment.Segment{Start: 0.0, End: 1.0, Text: "one"}, Language: "en"},
			{Segment: segment.Segment{Start: 1.0, End: 2.0, Text: "two"}, Language: "en"},
			{Segment: segment.Segment{Start: 2.0, End: 3.0, Text: "three"}, Language: "en"},
		},
		"fr": {
			{Segment: segment.Segment{Start: 0.0, End: 1.1, Text: "un"}, Language: "fr"},
		},
	}

	got, err := segment.Combine(translations, mustKey(t, "en", "fr"))
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	// The longer language drives the cue count; trailing cues carry only
	// the languages that still have segments at that index.
	if len(got) != 3 {
		t.Fatalf("got %d cues, want 3: %+v", len(got), got)
	}
	if want := "EN: one\nFR: un"; got[0].Text != want {
		t.Errorf("cue 0: got %q, want %q", got[0].Text, want)
	}
	if want := "EN: two"; got[1].Text != want {
		t.Errorf("cue 1: got %q, want %q", got[1].Text, want)
	}
	if want := "EN: three"; got[2].Text != want {
		t.Errorf("cue 2: got %q, want %q", got[2].Text, want)
	}
	if got[0].End != 1.1 {
		t.Errorf("cue 0 end: got %.2f, want 1.1", got[0].End)
	}
}

func TestCombineMissingLanguage(t *testing.T) {
	t.Parallel()

	translations := map[string][]segment.Translation{
		"en": {{Segment: segment.Segment{Start: 0.0, End: 1.0, Text: "Hello"}, Language: "en"}},
	}

	tests := []struct {
		name string
		data map[string][]segment.Translation
	}{
		{name: "language absent", data: translations},
		{
			name: "language present but empty",
			data: map[string][]segment.Translation{
				"en": translations["en"],
				"nl": {},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := segment.Combine(tt.data, mustKey(t, "en", "nl"))
			if !errors.Is(err, segment.ErrMissingLanguage) {
				t.Errorf("got %v, want ErrMissingLanguage", err)
			}
		})
	}
}

func TestCombineNormalizesCueText(t *testing.T) {
	t.Parallel()

	translations := map[string][]segment.Translation{
		"en": {{Segment: segment.Segment{Start: 0.0, End: 1.0, Text: "Hello\r\n  world"}, Language: "en"}},
		"nl": {{Segment: segment.Segment{Start: 0.0, End: 1.0, Text: "Hallo   wereld"}, Language: "nl"}},
	}

	got, err := segment.Combine(translations, mustKey(t, "en", "nl"))
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	want := "EN: Hello world\nNL: Hallo wereld"
	if got[0].Text != want {
		t.Errorf("text: got %q, want %q", got[0].Text, want)
	}
}
