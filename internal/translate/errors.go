package translate

import "errors"

// ErrAPIKeyMissing indicates the translation provider's API key is not set.
var ErrAPIKeyMissing = errors.New("translation API key not set")

// ErrEmptyTranslation indicates the provider returned no translated text.
var ErrEmptyTranslation = errors.New("provider returned empty translation")
