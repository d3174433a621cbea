package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-dubline/internal/apierr"
	"github.com/alnah/go-dubline/internal/cli"
	"github.com/alnah/go-dubline/internal/dub"
	"github.com/alnah/go-dubline/internal/job"
	"github.com/alnah/go-dubline/internal/lang"
	"github.com/alnah/go-dubline/internal/media"
	"github.com/alnah/go-dubline/internal/pipeline"
	"github.com/alnah/go-dubline/internal/transcribe"
	"github.com/alnah/go-dubline/internal/tts"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitProvider   = 5
	ExitPipeline   = 6
	ExitInterrupt  = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Context with signal cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create the CLI environment with production defaults.
	env := cli.DefaultEnv()

	// Root command.
	rootCmd := &cobra.Command{
		Use:     "dubline",
		Short:   "Transcribe, translate, subtitle, and dub videos",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Subcommands.
	rootCmd.AddCommand(cli.ProcessCmd(env))
	rootCmd.AddCommand(cli.TranscribeCmd(env))
	rootCmd.AddCommand(cli.SubtitlesCmd(env))
	rootCmd.AddCommand(cli.DubCmd(env))
	rootCmd.AddCommand(cli.JobsCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3): missing binaries, keys, or state.
	if errors.Is(err, media.ErrNotFound) || errors.Is(err, cli.ErrAPIKeyMissing) ||
		errors.Is(err, job.ErrSchemaMismatch) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4).
	if errors.Is(err, cli.ErrFileNotFound) || errors.Is(err, cli.ErrUnsupportedFormat) ||
		errors.Is(err, cli.ErrNoLanguages) || errors.Is(err, cli.ErrInvalidSpeed) ||
		errors.Is(err, cli.ErrVideoRequired) || errors.Is(err, lang.ErrInvalid) ||
		errors.Is(err, job.ErrNotFound) {
		return ExitValidation
	}

	// Provider errors (ExitProvider = 5): API-side failures.
	if errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrQuotaExceeded) ||
		errors.Is(err, apierr.ErrTimeout) || errors.Is(err, apierr.ErrAuthFailed) ||
		errors.Is(err, apierr.ErrServer) {
		return ExitProvider
	}

	// Pipeline errors (ExitPipeline = 6): runs that produced nothing usable.
	if errors.Is(err, pipeline.ErrAllTranslationsFailed) ||
		errors.Is(err, transcribe.ErrNoContent) || errors.Is(err, tts.ErrNoAudio) ||
		errors.Is(err, dub.ErrNoSegments) || errors.Is(err, dub.ErrNoSpeech) {
		return ExitPipeline
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
