package segment

import "errors"

// ErrMissingLanguage indicates a combined subtitle track was requested for
// a language that has no translated segments.
var ErrMissingLanguage = errors.New("no translated segments for language")
