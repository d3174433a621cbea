package transcribe

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// ClampPrompt exports clampPrompt for testing.
var ClampPrompt = clampPrompt

// BuildPrimingPrompt exports buildPrimingPrompt for testing.
var BuildPrimingPrompt = buildPrimingPrompt

// ClassifyError exports classifyError for testing.
var ClassifyError = classifyError
