// Package webvtt renders subtitle cues to the WebVTT text format and
// parses them back. Rendering is pure; writing to disk is a thin wrapper
// so callers can test content without touching the filesystem.
package webvtt

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-dubline/internal/segment"
)

const header = "WEBVTT"

// FormatTimestamp renders seconds as a WebVTT timestamp, HH:MM:SS.mmm.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(math.Round(seconds * 1000))
	ms := total % 1000
	whole := total / 1000
	h := whole / 3600
	m := (whole % 3600) / 60
	s := whole % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// Render produces the WebVTT document for the given cues: the header, then
// one numbered cue block per segment in order.
func Render(cues []segment.Translation) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	for i, cue := range cues {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", FormatTimestamp(cue.Start), FormatTimestamp(cue.End))
		b.WriteString(cue.Text)
		b.WriteString("\n\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// WriteFile renders cues and writes the document to path.
func WriteFile(path string, cues []segment.Translation) error {
	if err := os.WriteFile(path, []byte(Render(cues)), 0o644); err != nil {
		return fmt.Errorf("write subtitles %s: %w", path, err)
	}
	return nil
}

// Parse reads a WebVTT document back into cues. Cue identifiers are
// ignored; the Language field of returned cues is left empty. Parsing is
// lenient: malformed blocks are skipped rather than failing the document.
func Parse(content string) []segment.Translation {
	var cues []segment.Translation

	blocks := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n")
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		cue, ok := parseBlock(lines)
		if ok {
			cues = append(cues, cue)
		}
	}
	return cues
}

func parseBlock(lines []string) (segment.Translation, bool) {
	for i, line := range lines {
		start, end, ok := parseTiming(line)
		if !ok {
			continue
		}
		text := strings.Join(lines[i+1:], "\n")
		if strings.TrimSpace(text) == "" {
			return segment.Translation{}, false
		}
		return segment.Translation{
			Segment: segment.Segment{Start: start, End: end, Text: text},
		}, true
	}
	return segment.Translation{}, false
}

func parseTiming(line string) (start, end float64, ok bool) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, ok = parseTimestamp(strings.TrimSpace(parts[0]))
	if !ok {
		return 0, 0, false
	}
	end, ok = parseTimestamp(strings.TrimSpace(parts[1]))
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

func parseTimestamp(value string) (float64, bool) {
	var h, m int
	var s float64

	parts := strings.Split(value, ":")
	switch len(parts) {
	case 3:
		var err error
		if h, err = strconv.Atoi(parts[0]); err != nil {
			return 0, false
		}
		if m, err = strconv.Atoi(parts[1]); err != nil {
			return 0, false
		}
		if s, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return 0, false
		}
	case 2:
		var err error
		if m, err = strconv.Atoi(parts[0]); err != nil {
			return 0, false
		}
		if s, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	return float64(h*3600+m*60) + s, true
}
