package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrAPIKeyMissing indicates no OpenAI API key was found in the config
	// file or the OPENAI_API_KEY environment variable.
	ErrAPIKeyMissing = errors.New("OpenAI API key not set")

	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFormat indicates an input file has an unsupported extension.
	ErrUnsupportedFormat = errors.New("unsupported media format")

	// ErrNoLanguages indicates a command that produces per-language output
	// was invoked without target languages.
	ErrNoLanguages = errors.New("no target languages specified")

	// ErrInvalidSpeed indicates the narration speed multiplier is not positive.
	ErrInvalidSpeed = errors.New("speed must be positive")

	// ErrVideoRequired indicates a video-producing command received an
	// audio-only input.
	ErrVideoRequired = errors.New("input must be a video file")
)
