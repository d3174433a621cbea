package transcribe

import "errors"

// ErrNoContent indicates transcription produced no usable text or segments.
var ErrNoContent = errors.New("transcription produced no content")
