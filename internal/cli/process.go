package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-dubline/internal/config"
	"github.com/alnah/go-dubline/internal/format"
	"github.com/alnah/go-dubline/internal/pipeline"
	"github.com/alnah/go-dubline/internal/tts"
)

// processOptions carries the process command's flag values.
type processOptions struct {
	languages      []string
	subtitles      bool
	combined       bool
	dubAudio       bool
	dubVideo       bool
	saveTranscript bool
	speed          float64
	outputDir      string
	jobsDB         string
}

// ProcessCmd creates the process command.
// The env parameter provides injectable dependencies for testing.
func ProcessCmd(env *Env) *cobra.Command {
	var opts processOptions

	cmd := &cobra.Command{
		Use:   "process <video>",
		Short: "Transcribe, translate, subtitle, and dub a video",
		Long: `Run the full localization pipeline on a video or audio file.

The audio track is transcribed with Whisper, translated into each target
language, and rendered as WebVTT subtitles and a time-aligned dubbed
narration track. Every run is recorded as a job; see "dubline jobs".

Outputs land in a per-job directory under the output directory.`,
		Example: `  dubline process talk.mp4 -l nl -l fr
  dubline process talk.mp4 -l nl --dub-video --speed 1.05
  dubline process talk.mp4 -l en -l nl --combined-subs
  dubline process interview.mp3 -l es --transcript`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, env, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.languages, "language", "l", nil, "Target language (repeatable, ISO 639-1 code)")
	cmd.Flags().BoolVar(&opts.subtitles, "subs", true, "Write per-language subtitle files")
	cmd.Flags().BoolVar(&opts.combined, "combined-subs", false, "Write one bilingual subtitle file covering all target languages")
	cmd.Flags().BoolVar(&opts.dubAudio, "dub-audio", true, "Synthesize a narration track per language")
	cmd.Flags().BoolVar(&opts.dubVideo, "dub-video", false, "Mux each narration track into a copy of the video")
	cmd.Flags().BoolVar(&opts.saveTranscript, "transcript", false, "Save the raw transcript text")
	cmd.Flags().Float64Var(&opts.speed, "speed", 0, "Narration speed multiplier (0 = natural)")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "Root directory for job outputs (default: configured output-dir)")
	cmd.Flags().StringVar(&opts.jobsDB, "jobs-db", "", "Path to the jobs database (default: <config dir>/jobs.db)")

	return cmd
}

// runProcess executes the full localization pipeline.
// Validation order: file exists -> format -> languages -> speed -> API key
func runProcess(cmd *cobra.Command, env *Env, inputPath string, opts processOptions) error {
	ctx := cmd.Context()

	if err := validateInput(inputPath); err != nil {
		return err
	}
	languages, err := normalizeLanguages(opts.languages)
	if err != nil {
		return err
	}
	if err := validateSpeed(opts.speed); err != nil {
		return err
	}
	if opts.dubVideo && !isVideo(inputPath) {
		return fmt.Errorf("%w: --dub-video needs a video container, got %q",
			ErrVideoRequired, filepath.Ext(inputPath))
	}

	cfg := loadConfig(env)

	p, tools, err := assemblePipeline(env, cfg)
	if err != nil {
		return err
	}

	if desc := describeInput(ctx, tools, inputPath); desc != "" {
		fmt.Fprintf(env.Stderr, "Processing %s (%s)\n", filepath.Base(inputPath), desc)
	}

	dbPath, err := jobsDBPath(opts.jobsDB)
	if err != nil {
		return err
	}
	store, err := env.StoreOpener.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	filename := filepath.Base(inputPath)
	j, err := store.Create(ctx, filename)
	if err != nil {
		return err
	}

	outRoot := opts.outputDir
	if outRoot == "" {
		outRoot = cfg.OutputDir
	}
	if outRoot == "" {
		outRoot = "."
	}
	jobDir := filepath.Join(config.ExpandPath(outRoot), j.ID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return fmt.Errorf("cannot create job directory: %w", err)
	}

	if err := store.MarkProcessing(ctx, j.ID); err != nil {
		return err
	}

	result, runErr := p.Run(ctx, pipeline.Request{
		JobID:             j.ID,
		VideoPath:         inputPath,
		OutputDir:         jobDir,
		Filename:          filename,
		TargetLanguages:   languages,
		Subtitles:         opts.subtitles,
		CombinedSubtitles: opts.combined,
		DubAudio:          opts.dubAudio,
		DubVideo:          opts.dubVideo,
		SaveTranscript:    opts.saveTranscript,
		Speed:             opts.speed,
	})

	for _, w := range result.Warnings {
		fmt.Fprintf(env.Stderr, "Warning: %s\n", w)
	}

	if runErr != nil {
		if markErr := store.MarkFailed(ctx, j.ID, runErr.Error(), result.Warnings, result.OriginalLanguage); markErr != nil {
			fmt.Fprintf(env.Stderr, "Warning: failed to record job failure: %v\n", markErr)
		}
		return runErr
	}

	if err := store.MarkCompleted(ctx, j.ID, result.Warnings, result.OriginalLanguage); err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "Job %s completed\n", j.ID)
	fmt.Fprintf(env.Stdout, "Outputs: %s\n", jobDir)
	return nil
}

// loadConfig loads configuration, downgrading load failures to a warning
// so commands still run on environment variables alone.
func loadConfig(env *Env) config.Config {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	return cfg
}

// assemblePipeline builds the full pipeline from the Env factories. The
// toolset is returned alongside so callers can probe the input file.
func assemblePipeline(env *Env, cfg config.Config) (*pipeline.Pipeline, Toolset, error) {
	if cfg.OpenAIKey == "" {
		return nil, nil, fmt.Errorf("%w (set it with: export %s=sk-... or dubline config set %s sk-...)",
			ErrAPIKeyMissing, config.EnvOpenAIKey, config.KeyOpenAIKey)
	}

	tools, err := env.ToolsetFactory.NewToolset()
	if err != nil {
		return nil, nil, err
	}

	warn := func(msg string) { fmt.Fprintln(env.Stderr, msg) }

	// Sequential chunk transcription preserves the priming prompt chain.
	transcriber, err := env.TranscriberFactory.NewTranscriber(cfg.OpenAIKey, tools, cfg.UploadCapBytes(), 1, warn)
	if err != nil {
		return nil, nil, err
	}
	translator, err := env.TranslatorFactory.NewTranslator(cfg.OpenAIKey, cfg.DeepLKey)
	if err != nil {
		return nil, nil, err
	}
	synth, err := env.SynthesizerFactory.NewSynthesizer(cfg, tts.WarnFunc(warn))
	if err != nil {
		return nil, nil, err
	}
	dubber, err := env.DubberFactory.NewDubber(synth, tools)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(env.Stderr, nil))
	p, err := pipeline.New(tools, transcriber, translator, dubber,
		pipeline.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return p, tools, nil
}

// describeInput probes the input's duration and size for status output.
// Probe failures produce an empty description, never an error.
func describeInput(ctx context.Context, tools Toolset, path string) string {
	var parts []string
	if duration, err := tools.Duration(ctx, path); err == nil && duration > 0 {
		parts = append(parts, format.Seconds(duration))
	}
	if size, err := tools.FileSize(path); err == nil && size > 0 {
		parts = append(parts, format.Size(size))
	}
	return strings.Join(parts, ", ")
}

// jobsDBPath resolves the jobs database location. An explicit flag value
// wins; otherwise the database lives next to the config file.
func jobsDBPath(flagValue string) (string, error) {
	if flagValue != "" {
		return config.ExpandPath(flagValue), nil
	}
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create config directory: %w", err)
	}
	return filepath.Join(dir, "jobs.db"), nil
}
