// Package dub builds a time-aligned narration track from translated
// segments. Each segment is spoken individually, then every clip is
// delayed so it starts at the same timestamp as the original speech and
// the clips are composited into a single audio file.
package dub

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/alnah/go-dubline/internal/media"
	"github.com/alnah/go-dubline/internal/segment"
	"github.com/alnah/go-dubline/internal/tts"
)

// Params controls a single dub synthesis run.
type Params struct {
	// Language is the code of the language being spoken.
	Language string
	// OutputPath receives the composited narration track.
	OutputPath string
	// Speed is a playback speed multiplier; 1.0 keeps the natural rate.
	Speed float64
	// LeadingSilence shifts every clip later by this many seconds. Callers
	// use it to compensate for containers whose audio stream starts at a
	// nonzero offset, on top of the segment timestamps.
	LeadingSilence float64
}

// Generator synthesizes dub tracks.
type Generator struct {
	synth   tts.Synthesizer
	mixer   audioMixer
	tempDir tempDirCreator
	files   fileWriter
	remover fileRemover
	dirs    dirCreator
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithTempDirCreator overrides scratch directory creation.
func WithTempDirCreator(creator tempDirCreator) GeneratorOption {
	return func(g *Generator) { g.tempDir = creator }
}

// WithFileWriter overrides clip file writing.
func WithFileWriter(writer fileWriter) GeneratorOption {
	return func(g *Generator) { g.files = writer }
}

// WithFileRemover overrides scratch directory cleanup.
func WithFileRemover(remover fileRemover) GeneratorOption {
	return func(g *Generator) { g.remover = remover }
}

// WithDirCreator overrides output directory creation.
func WithDirCreator(creator dirCreator) GeneratorOption {
	return func(g *Generator) { g.dirs = creator }
}

// NewGenerator creates a Generator over a speech synthesizer and an audio
// mixer.
func NewGenerator(synth tts.Synthesizer, mixer audioMixer, opts ...GeneratorOption) (*Generator, error) {
	if synth == nil {
		return nil, fmt.Errorf("new generator: synthesizer required")
	}
	if mixer == nil {
		return nil, fmt.Errorf("new generator: mixer required")
	}

	g := &Generator{
		synth:   synth,
		mixer:   mixer,
		tempDir: osTempDirCreator{},
		files:   osFileWriter{},
		remover: osFileRemover{},
		dirs:    osDirCreator{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate speaks every translated segment and composites the clips into
// p.OutputPath. Credit segments and empty segments are dropped first; an
// input that leaves nothing to speak is an error.
func (g *Generator) Generate(ctx context.Context, segments []segment.Translation, p Params) (err error) {
	if len(segments) == 0 {
		return fmt.Errorf("generate dub: %w", ErrNoSegments)
	}

	spoken := speakable(segments)
	if len(spoken) == 0 {
		return fmt.Errorf("generate dub: %w", ErrNoSpeech)
	}

	requiredSilenceMS := millis(p.LeadingSilence)
	firstStartMS := millis(spoken[0].Start)
	baseDelayMS := firstStartMS + requiredSilenceMS

	scratchDir, err := g.tempDir.MkdirTemp("", "dubline-dub-*")
	if err != nil {
		return fmt.Errorf("generate dub: create scratch dir: %w", err)
	}
	defer func() {
		// Best-effort cleanup; the original error takes precedence.
		if removeErr := g.remover.RemoveAll(scratchDir); removeErr != nil && err == nil {
			err = fmt.Errorf("remove scratch dir: %w", removeErr)
		}
	}()

	clips := make([]media.Clip, 0, len(spoken))
	for i, seg := range spoken {
		audio, synthErr := g.synth.Synthesize(ctx, strings.TrimSpace(seg.Text), p.Language, p.Speed)
		if synthErr != nil {
			return fmt.Errorf("generate dub: segment %d: %w", i, synthErr)
		}

		clipPath := filepath.Join(scratchDir, fmt.Sprintf("segment_%d.mp3", i))
		if writeErr := g.files.WriteFile(clipPath, audio, 0o600); writeErr != nil {
			return fmt.Errorf("generate dub: write segment %d: %w", i, writeErr)
		}

		// Delays are relative to the first spoken segment, then shifted so
		// the first clip lands at its original wall-clock position.
		delayMS := millis(seg.Start) - firstStartMS
		clips = append(clips, media.Clip{Path: clipPath, DelayMS: delayMS + baseDelayMS})
	}

	if mkErr := g.dirs.MkdirAll(filepath.Dir(p.OutputPath), 0o755); mkErr != nil {
		return fmt.Errorf("generate dub: create output dir: %w", mkErr)
	}
	if mixErr := g.mixer.DelayMix(ctx, clips, p.OutputPath); mixErr != nil {
		return fmt.Errorf("generate dub: %w", mixErr)
	}
	return nil
}

// speakable drops credit segments, sorts chronologically, and removes
// segments without text.
func speakable(segments []segment.Translation) []segment.Translation {
	sorted := segment.SortByStart(segment.FilterCredits(segments))

	spoken := sorted[:0:len(sorted)]
	for _, seg := range sorted {
		if strings.TrimSpace(seg.Text) != "" {
			spoken = append(spoken, seg)
		}
	}
	return spoken
}

// millis converts seconds to a non-negative millisecond count.
func millis(seconds float64) int {
	ms := int(math.Round(seconds * 1000))
	if ms < 0 {
		return 0
	}
	return ms
}
