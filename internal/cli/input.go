package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alnah/go-dubline/internal/lang"
)

// videoFormats are container extensions treated as video input.
var videoFormats = map[string]bool{
	".avi":  true,
	".mkv":  true,
	".mov":  true,
	".mp4":  true,
	".webm": true,
}

// audioFormats are extensions treated as audio-only input.
var audioFormats = map[string]bool{
	".aac":  true,
	".flac": true,
	".m4a":  true,
	".mp3":  true,
	".ogg":  true,
	".wav":  true,
}

// isVideo reports whether path has a video container extension.
func isVideo(path string) bool {
	return videoFormats[strings.ToLower(filepath.Ext(path))]
}

// supportedFormatsList returns all supported extensions without the dot,
// sorted, for error messages.
func supportedFormatsList() string {
	exts := make([]string, 0, len(videoFormats)+len(audioFormats))
	for ext := range videoFormats {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	for ext := range audioFormats {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// validateInput checks that the input file exists and has a supported
// extension.
func validateInput(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !videoFormats[ext] && !audioFormats[ext] {
		return fmt.Errorf("unsupported format %q (supported: %s): %w",
			ext, supportedFormatsList(), ErrUnsupportedFormat)
	}
	return nil
}

// normalizeLanguages validates and normalizes target language codes,
// preserving order and dropping duplicates.
func normalizeLanguages(codes []string) ([]string, error) {
	seen := make(map[string]bool, len(codes))
	normalized := make([]string, 0, len(codes))
	for _, code := range codes {
		if err := lang.Validate(code); err != nil {
			return nil, err
		}
		n := lang.Normalize(code)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		normalized = append(normalized, n)
	}
	return normalized, nil
}

// validateSpeed checks the narration speed multiplier. Zero means natural
// speed and is allowed.
func validateSpeed(speed float64) error {
	if speed < 0 {
		return fmt.Errorf("%w, got %g", ErrInvalidSpeed, speed)
	}
	return nil
}
