package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-dubline/internal/config"
	"github.com/alnah/go-dubline/internal/transcribe"
)

// TranscribeCmd creates the transcribe command.
// The env parameter provides injectable dependencies for testing.
func TranscribeCmd(env *Env) *cobra.Command {
	var (
		output   string
		parallel bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe <file>",
		Short: "Transcribe a video or audio file to text",
		Long: `Transcribe a video or audio file using OpenAI's Whisper API.

Video containers have their audio track extracted first. Files over the
upload cap are split into chunks and stitched back onto one timeline.
With --parallel, chunks are transcribed concurrently; this is faster but
drops the cross-chunk vocabulary priming of the sequential path.`,
		Example: `  dubline transcribe talk.mp4
  dubline transcribe interview.mp3 -o notes.txt
  dubline transcribe lecture.mp4 --parallel`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscribe(cmd, env, args[0], output, parallel)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path (default: <input>.txt)")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Transcribe chunks of a large file concurrently")

	return cmd
}

// runTranscribe extracts audio when needed and writes the transcript text.
func runTranscribe(cmd *cobra.Command, env *Env, inputPath, output string, parallel bool) error {
	ctx := cmd.Context()

	if err := validateInput(inputPath); err != nil {
		return err
	}

	cfg := loadConfig(env)
	if cfg.OpenAIKey == "" {
		return fmt.Errorf("%w (set it with: export %s=sk-... or dubline config set %s sk-...)",
			ErrAPIKeyMissing, config.EnvOpenAIKey, config.KeyOpenAIKey)
	}

	defaultOutput := deriveTranscriptPath(filepath.Base(inputPath))
	output = config.ResolveOutputPath(output, cfg.OutputDir, defaultOutput)

	tools, err := env.ToolsetFactory.NewToolset()
	if err != nil {
		return err
	}

	chunkParallelism := 1
	if parallel {
		chunkParallelism = transcribe.DefaultParallelism
	}

	warn := func(msg string) { fmt.Fprintln(env.Stderr, msg) }
	transcriber, err := env.TranscriberFactory.NewTranscriber(cfg.OpenAIKey, tools, cfg.UploadCapBytes(), chunkParallelism, warn)
	if err != nil {
		return err
	}

	if desc := describeInput(ctx, tools, inputPath); desc != "" {
		fmt.Fprintf(env.Stderr, "Transcribing %s (%s)\n", filepath.Base(inputPath), desc)
	}

	audioPath := inputPath
	if isVideo(inputPath) {
		scratch, err := os.MkdirTemp("", "dubline-transcribe-*")
		if err != nil {
			return fmt.Errorf("cannot create scratch directory: %w", err)
		}
		// Best-effort cleanup; the original error takes precedence.
		defer os.RemoveAll(scratch)

		audioPath = filepath.Join(scratch, "audio.wav")
		if err := tools.ExtractAudio(ctx, inputPath, audioPath); err != nil {
			return err
		}
	}

	transcript, err := transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return err
	}

	text := strings.TrimSpace(transcript.Text)
	if err := os.WriteFile(output, []byte(text+"\n"), 0o644); err != nil {
		return fmt.Errorf("cannot write transcript: %w", err)
	}

	fmt.Fprintf(env.Stdout, "Transcript written to %s\n", output)
	return nil
}

// deriveTranscriptPath swaps the input extension for .txt.
func deriveTranscriptPath(base string) string {
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".txt"
}
