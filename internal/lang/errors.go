package lang

import "errors"

// ErrInvalid indicates an invalid language code was specified.
var ErrInvalid = errors.New("invalid language code")

// ErrInvalidKey indicates a combined-subtitle key could not be parsed.
var ErrInvalidKey = errors.New("invalid combined subtitle key")
