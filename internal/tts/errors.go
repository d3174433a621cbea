package tts

import "errors"

var (
	// ErrNoAudio reports that a voice produced no audio data. It is the only
	// failure that triggers a fallback to the next preferred voice.
	ErrNoAudio = errors.New("no audio received")

	// ErrAPIKeyMissing reports a synthesizer constructed without credentials.
	ErrAPIKeyMissing = errors.New("speech API key not set")

	// ErrEmptyText reports a synthesis request with nothing to speak.
	ErrEmptyText = errors.New("no text to synthesize")
)
