package dub

import "errors"

var (
	// ErrNoSegments reports a dub request without any translated segments.
	ErrNoSegments = errors.New("no translated segments available for dubbing")

	// ErrNoSpeech reports that filtering left nothing to speak.
	ErrNoSpeech = errors.New("translated segments contain no text")
)
