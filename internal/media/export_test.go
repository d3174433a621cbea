package media

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// ParseProbeFloat exports parseProbeFloat for testing.
var ParseProbeFloat = parseProbeFloat
