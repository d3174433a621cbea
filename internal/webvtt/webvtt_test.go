package webvtt_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-dubline/internal/segment"
	"github.com/alnah/go-dubline/internal/webvtt"
)

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "zero", seconds: 0, want: "00:00:00.000"},
		{name: "sub second", seconds: 0.5, want: "00:00:00.500"},
		{name: "minutes and millis", seconds: 65.25, want: "00:01:05.250"},
		{name: "hours", seconds: 3723.001, want: "01:02:03.001"},
		{name: "negative clamps to zero", seconds: -4, want: "00:00:00.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := webvtt.FormatTimestamp(tt.seconds)
			if got != tt.want {
				t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	cues := []segment.Translation{
		{Segment: segment.Segment{Start: 0, End: 1.5, Text: "Hello world"}, Language: "nl"},
		{Segment: segment.Segment{Start: 2, End: 4.25, Text: "EN: Hi\nNL: Hoi"}, Language: "en+nl"},
	}

	got := webvtt.Render(cues)
	want := strings.Join([]string{
		"WEBVTT",
		"",
		"1",
		"00:00:00.000 --> 00:00:01.500",
		"Hello world",
		"",
		"2",
		"00:00:02.000 --> 00:00:04.250",
		"EN: Hi",
		"NL: Hoi",
		"",
	}, "\n")

	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderEmpty(t *testing.T) {
	t.Parallel()

	got := webvtt.Render(nil)
	if got != "WEBVTT\n" {
		t.Errorf("Render(nil) = %q, want header only", got)
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	t.Parallel()

	var cues []segment.Translation
	for i := 0; i < 7; i++ {
		cues = append(cues, segment.Translation{
			Segment: segment.Segment{
				Start: float64(i) * 2.5,
				End:   float64(i)*2.5 + 2,
				Text:  fmt.Sprintf("cue number %d", i),
			},
		})
	}

	parsed := webvtt.Parse(webvtt.Render(cues))

	if len(parsed) != len(cues) {
		t.Fatalf("Parse() returned %d cues, want %d", len(parsed), len(cues))
	}
	for i, cue := range parsed {
		if cue.Text != cues[i].Text {
			t.Errorf("cue %d text = %q, want %q", i, cue.Text, cues[i].Text)
		}
		if cue.Start != cues[i].Start || cue.End != cues[i].End {
			t.Errorf("cue %d span = (%v, %v), want (%v, %v)",
				i, cue.Start, cue.End, cues[i].Start, cues[i].End)
		}
	}
}

func TestParseSkipsMalformedBlocks(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"WEBVTT",
		"",
		"not a cue",
		"",
		"1",
		"00:00:01.000 --> 00:00:02.000",
		"Valid cue",
		"",
		"2",
		"00:00:03.000 --> 00:00:04.000",
		"",
	}, "\n")

	got := webvtt.Parse(content)
	if len(got) != 1 {
		t.Fatalf("Parse() returned %d cues, want 1", len(got))
	}
	if got[0].Text != "Valid cue" {
		t.Errorf("cue text = %q, want %q", got[0].Text, "Valid cue")
	}
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "subs_nl.vtt")
	cues := []segment.Translation{
		{Segment: segment.Segment{Start: 0, End: 1, Text: "Hoi"}, Language: "nl"},
	}

	if err := webvtt.WriteFile(path, cues); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.HasPrefix(string(data), "WEBVTT\n") {
		t.Errorf("file does not start with WEBVTT header: %q", string(data))
	}
	if !strings.Contains(string(data), "Hoi") {
		t.Errorf("file missing cue text: %q", string(data))
	}
}
