package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alnah/go-dubline/internal/config"
	"github.com/alnah/go-dubline/internal/pipeline"
)

// SubtitlesCmd creates the subtitles command.
// The env parameter provides injectable dependencies for testing.
func SubtitlesCmd(env *Env) *cobra.Command {
	var (
		languages []string
		combined  bool
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "subtitles <file>",
		Short: "Generate translated subtitle files",
		Long: `Transcribe a video or audio file and write WebVTT subtitles for each
target language. With --combined, one extra file carries every target
language per cue, prefixed with its language code.`,
		Example: `  dubline subtitles talk.mp4 -l nl
  dubline subtitles talk.mp4 -l en -l nl --combined
  dubline subtitles talk.mp4 -l fr -o ./subs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubtitles(cmd, env, args[0], languages, combined, outputDir)
		},
	}

	cmd.Flags().StringSliceVarP(&languages, "language", "l", nil, "Target language (repeatable, ISO 639-1 code)")
	cmd.Flags().BoolVar(&combined, "combined", false, "Also write one subtitle file combining all target languages")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for subtitle files (default: configured output-dir)")

	return cmd
}

// runSubtitles runs the pipeline with only subtitle outputs enabled.
func runSubtitles(cmd *cobra.Command, env *Env, inputPath string, rawLanguages []string, combined bool, outputDir string) error {
	ctx := cmd.Context()

	if err := validateInput(inputPath); err != nil {
		return err
	}
	languages, err := normalizeLanguages(rawLanguages)
	if err != nil {
		return err
	}
	if len(languages) == 0 {
		return fmt.Errorf("%w (use -l)", ErrNoLanguages)
	}
	if combined && len(languages) < 2 {
		return fmt.Errorf("--combined needs at least two target languages, got %d", len(languages))
	}

	cfg := loadConfig(env)
	p, _, err := assemblePipeline(env, cfg)
	if err != nil {
		return err
	}

	outDir, err := ensureOutputDir(outputDir, cfg)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, pipeline.Request{
		JobID:             uuid.NewString(),
		VideoPath:         inputPath,
		OutputDir:         outDir,
		Filename:          filepath.Base(inputPath),
		TargetLanguages:   languages,
		Subtitles:         true,
		CombinedSubtitles: combined,
	})
	for _, w := range result.Warnings {
		fmt.Fprintf(env.Stderr, "Warning: %s\n", w)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "Subtitles written to %s\n", outDir)
	return nil
}

// ensureOutputDir resolves the output directory from the flag or config,
// defaulting to the working directory, and creates it.
func ensureOutputDir(flagValue string, cfg config.Config) (string, error) {
	dir := flagValue
	if dir == "" {
		dir = cfg.OutputDir
	}
	if dir == "" {
		dir = "."
	}
	dir = config.ExpandPath(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create output directory: %w", err)
	}
	return dir, nil
}
