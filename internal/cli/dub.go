package cli

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alnah/go-dubline/internal/pipeline"
)

// DubCmd creates the dub command.
// The env parameter provides injectable dependencies for testing.
func DubCmd(env *Env) *cobra.Command {
	var (
		languages []string
		video     bool
		speed     float64
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "dub <file>",
		Short: "Generate a dubbed narration track",
		Long: `Transcribe a video or audio file, translate it, and synthesize one
time-aligned narration track per target language. Each spoken segment is
delayed to start where the original speech started.

With --video, each narration track is also muxed into a copy of the video.`,
		Example: `  dubline dub talk.mp4 -l nl
  dubline dub talk.mp4 -l nl -l fr --video
  dubline dub interview.mp3 -l es --speed 1.1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDub(cmd, env, args[0], languages, video, speed, outputDir)
		},
	}

	cmd.Flags().StringSliceVarP(&languages, "language", "l", nil, "Target language (repeatable, ISO 639-1 code)")
	cmd.Flags().BoolVar(&video, "video", false, "Also mux each narration track into a copy of the video")
	cmd.Flags().Float64Var(&speed, "speed", 0, "Narration speed multiplier (0 = natural)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for dub files (default: configured output-dir)")

	return cmd
}

// runDub runs the pipeline with only dub outputs enabled.
func runDub(cmd *cobra.Command, env *Env, inputPath string, rawLanguages []string, video bool, speed float64, outputDir string) error {
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
	if err := validateSpeed(speed); err != nil {
		return err
	}
	if video && !isVideo(inputPath) {
		return fmt.Errorf("%w: --video needs a video container, got %q",
			ErrVideoRequired, filepath.Ext(inputPath))
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
		JobID:           uuid.NewString(),
		VideoPath:       inputPath,
		OutputDir:       outDir,
		Filename:        filepath.Base(inputPath),
		TargetLanguages: languages,
		DubAudio:        true,
		DubVideo:        video,
		Speed:           speed,
	})
	for _, w := range result.Warnings {
		fmt.Fprintf(env.Stderr, "Warning: %s\n", w)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "Dub tracks written to %s\n", outDir)
	return nil
}
