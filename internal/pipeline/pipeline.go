// Package pipeline orchestrates a full localization run for one video:
// audio extraction, transcription, translation, subtitle rendering, dub
// synthesis, and the metadata sidecar. Stage failures that only affect one
// target language become warnings; failures that invalidate the whole run
// abort it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-dubline/internal/dub"
	"github.com/alnah/go-dubline/internal/job"
	"github.com/alnah/go-dubline/internal/lang"
	"github.com/alnah/go-dubline/internal/segment"
	"github.com/alnah/go-dubline/internal/translate"
	"github.com/alnah/go-dubline/internal/webvtt"
)

// ErrAllTranslationsFailed reports that no requested language could be
// translated.
var ErrAllTranslationsFailed = errors.New("translation failed for all requested languages")

type mediaTools interface {
	AudioStartOffset(ctx context.Context, path string) float64
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error
	ReplaceAudio(ctx context.Context, videoPath, audioPath, outputPath string) error
}

type transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (segment.Transcript, error)
}

type dubber interface {
	Generate(ctx context.Context, segments []segment.Translation, p dub.Params) error
}

// Request describes one localization run.
type Request struct {
	// JobID identifies the run in the metadata sidecar.
	JobID string
	// VideoPath is the source video file.
	VideoPath string
	// OutputDir receives every produced file. It must exist.
	OutputDir string
	// Filename is the original upload name recorded in metadata.
	Filename string
	// TargetLanguages are the languages to translate into.
	TargetLanguages []string
	// Subtitles renders one VTT file per translated language.
	Subtitles bool
	// CombinedSubtitles renders one VTT with all target languages per cue.
	// It requires at least two target languages.
	CombinedSubtitles bool
	// DubAudio keeps the synthesized narration track per language.
	DubAudio bool
	// DubVideo muxes the narration back into a copy of the video.
	DubVideo bool
	// SaveTranscript writes the raw transcript text next to the outputs.
	SaveTranscript bool
	// Speed is the narration speed multiplier; 0 means natural speed.
	Speed float64
}

// Result is what a completed run produced.
type Result struct {
	OriginalLanguage string
	Warnings         []string
	SentencePairs    []segment.Segment
	Translations     map[string][]segment.Translation
}

// Pipeline runs localization jobs.
type Pipeline struct {
	tools       mediaTools
	transcriber transcriber
	translator  translate.Translator
	dubber      dubber
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New creates a Pipeline over its stage collaborators.
func New(tools mediaTools, transcriber transcriber, translator translate.Translator, dubber dubber, opts ...Option) (*Pipeline, error) {
	if tools == nil {
		return nil, fmt.Errorf("new pipeline: media tools required")
	}
	if transcriber == nil {
		return nil, fmt.Errorf("new pipeline: transcriber required")
	}
	if translator == nil {
		return nil, fmt.Errorf("new pipeline: translator required")
	}
	if dubber == nil {
		return nil, fmt.Errorf("new pipeline: dubber required")
	}

	p := &Pipeline{
		tools:       tools,
		transcriber: transcriber,
		translator:  translator,
		dubber:      dubber,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run executes the full pipeline for req. The returned Result carries
// per-language warnings even when Run succeeds; a non-nil error means the
// run as a whole failed.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	var result Result
	logger := p.logger.With("job", req.JobID, "video", req.VideoPath)

	offset := p.tools.AudioStartOffset(ctx, req.VideoPath)
	logger.Info("probed audio start offset", "offset_seconds", offset)

	audioPath := filepath.Join(req.OutputDir, "audio.wav")
	if err := p.tools.ExtractAudio(ctx, req.VideoPath, audioPath); err != nil {
		return result, fmt.Errorf("extract audio: %w", err)
	}

	transcript, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return result, fmt.Errorf("transcription failed: %w", err)
	}
	result.OriginalLanguage = transcript.Language
	logger.Info("transcription finished",
		"language", transcript.Language, "segments", len(transcript.Segments))

	if req.SaveTranscript {
		p.saveTranscript(req, transcript, &result)
	}

	needsDub := req.DubAudio || req.DubVideo
	wantsLanguageAssets := req.Subtitles || req.CombinedSubtitles || needsDub

	if wantsLanguageAssets && len(req.TargetLanguages) == 0 {
		result.Warnings = append(result.Warnings,
			"subtitles and dubs skipped: no target languages selected")
	}

	if len(req.TargetLanguages) > 0 && wantsLanguageAssets {
		segments := segment.Build(transcript, offset)
		result.SentencePairs = segment.Pair(segments)

		translations, warnings := translate.All(ctx, p.translator, segments, req.TargetLanguages)
		result.Warnings = append(result.Warnings, warnings...)
		if len(translations) == 0 {
			return result, ErrAllTranslationsFailed
		}
		result.Translations = translations
		logger.Info("translation finished", "languages", len(translations))

		if req.Subtitles {
			p.writeSubtitles(req, translations, &result)
		}
		if req.CombinedSubtitles {
			p.writeCombinedSubtitles(req, translations, &result)
		}
		if needsDub {
			p.generateDubs(ctx, req, offset, translations, &result, logger)
		}
	}

	meta := job.Metadata{
		ID:               req.JobID,
		Filename:         req.Filename,
		OriginalLanguage: result.OriginalLanguage,
		SentencePairs:    result.SentencePairs,
		Translations:     result.Translations,
	}
	if meta.Translations == nil {
		meta.Translations = make(map[string][]segment.Translation)
	}
	if err := job.SaveMetadata(filepath.Join(req.OutputDir, "metadata.json"), meta); err != nil {
		return result, fmt.Errorf("save metadata: %w", err)
	}

	logger.Info("run finished", "warnings", len(result.Warnings))
	return result, nil
}

func (p *Pipeline) saveTranscript(req Request, transcript segment.Transcript, result *Result) {
	text := strings.TrimSpace(transcript.Text)
	if text == "" {
		return
	}
	path := filepath.Join(req.OutputDir, "transcribed.txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("could not save transcript file: %v", err))
	}
}

// writeSubtitles renders one VTT per translated language from its
// credit-filtered, paired cues.
func (p *Pipeline) writeSubtitles(req Request, translations map[string][]segment.Translation, result *Result) {
	for _, code := range sortedLanguages(translations) {
		cues := segment.PairTranslations(segment.FilterCredits(translations[code]))
		path := filepath.Join(req.OutputDir, fmt.Sprintf("subs_%s.vtt", code))
		if err := webvtt.WriteFile(path, cues); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("could not write subtitles for %s: %v", code, err))
		}
	}
}

// writeCombinedSubtitles renders a single VTT whose cues stack every
// requested language. A language that failed translation makes the
// combined file impossible, which is a warning rather than a run failure.
func (p *Pipeline) writeCombinedSubtitles(req Request, translations map[string][]segment.Translation, result *Result) {
	key, err := lang.NewKey(req.TargetLanguages)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("combined subtitles skipped: %v", err))
		return
	}

	paired := make(map[string][]segment.Translation, len(translations))
	for code, segs := range translations {
		paired[code] = segment.PairTranslations(segment.FilterCredits(segs))
	}

	combined, err := segment.Combine(paired, key)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("combined subtitles skipped: %v", err))
		return
	}

	path := filepath.Join(req.OutputDir, key.Filename())
	if err := webvtt.WriteFile(path, combined); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("could not write combined subtitles: %v", err))
	}
}

// generateDubs synthesizes narration per language in parallel. A failed
// language becomes a warning and never aborts its siblings.
func (p *Pipeline) generateDubs(ctx context.Context, req Request, offset float64,
	translations map[string][]segment.Translation, result *Result, logger *slog.Logger) {

	var mu sync.Mutex
	warn := func(msg string) {
		mu.Lock()
		defer mu.Unlock()
		result.Warnings = append(result.Warnings, msg)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, code := range sortedLanguages(translations) {
		segs := translations[code]
		g.Go(func() error {
			if err := p.dubLanguage(ctx, req, offset, code, segs); err != nil {
				logger.Warn("dub failed", "language", code, "error", err)
				warn(fmt.Sprintf("the dub for %s could not be created: %v", code, err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Pipeline) dubLanguage(ctx context.Context, req Request, offset float64,
	code string, segments []segment.Translation) (err error) {

	audioTarget := filepath.Join(req.OutputDir, fmt.Sprintf("dub_audio_%s.mp3", code))
	if !req.DubAudio {
		// Video-only dubs keep the narration in a scratch file.
		audioTarget = filepath.Join(req.OutputDir, fmt.Sprintf(".dub_scratch_%s.mp3", code))
		defer func() {
			if removeErr := os.Remove(audioTarget); removeErr != nil && !os.IsNotExist(removeErr) && err == nil {
				err = fmt.Errorf("remove scratch narration: %w", removeErr)
			}
		}()
	}

	if err := p.dubber.Generate(ctx, segments, dub.Params{
		Language:       code,
		OutputPath:     audioTarget,
		Speed:          req.Speed,
		LeadingSilence: offset,
	}); err != nil {
		return err
	}

	if req.DubVideo {
		videoTarget := filepath.Join(req.OutputDir, fmt.Sprintf("video_dub_%s.mp4", code))
		if err := p.tools.ReplaceAudio(ctx, req.VideoPath, audioTarget, videoTarget); err != nil {
			return err
		}
	}
	return nil
}

func sortedLanguages(translations map[string][]segment.Translation) []string {
	codes := make([]string, 0, len(translations))
	for code := range translations {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
