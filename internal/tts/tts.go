// Package tts turns text into spoken audio. Most languages are voiced by
// the free Edge read-aloud service with an ordered per-language voice
// table; languages without a usable Edge voice can be routed to ElevenLabs
// instead, with Edge as the fallback when ElevenLabs fails.
package tts

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alnah/go-dubline/internal/lang"
)

// Synthesizer produces audio for a piece of text in a target language.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string, speed float64) ([]byte, error)
}

type edgeSpeaker interface {
	Speak(ctx context.Context, text, voice, rate string) ([]byte, error)
}

type voiceSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type phoneticRewriter interface {
	Rewrite(ctx context.Context, text string) (string, error)
}

var (
	_ edgeSpeaker      = (*EdgeClient)(nil)
	_ voiceSynthesizer = (*ElevenLabsClient)(nil)
	_ phoneticRewriter = (*PhoneticRewriter)(nil)
	_ Synthesizer      = (*Engine)(nil)
)

// WarnFunc is a callback for warning messages during synthesis.
type WarnFunc func(msg string)

func defaultWarnFunc(msg string) {
	fmt.Fprintln(os.Stderr, "warning: "+msg)
}

// Engine routes synthesis requests to the right backend per language.
type Engine struct {
	edge       edgeSpeaker
	voices     *VoiceTable
	elevenLabs map[string]voiceSynthesizer
	phonetic   phoneticRewriter
	warn       WarnFunc
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithElevenLabsVoice routes a language to a dedicated ElevenLabs voice.
// Edge remains the fallback when that voice fails.
func WithElevenLabsVoice(language string, synth voiceSynthesizer) EngineOption {
	return func(e *Engine) { e.elevenLabs[lang.Normalize(language)] = synth }
}

// WithPhoneticRewriter enables the phonetic rewrite step used when Lingala
// is voiced by a borrowed Edge voice.
func WithPhoneticRewriter(rewriter phoneticRewriter) EngineOption {
	return func(e *Engine) { e.phonetic = rewriter }
}

// WithWarnFunc sets a callback for warning messages.
func WithWarnFunc(fn WarnFunc) EngineOption {
	return func(e *Engine) { e.warn = fn }
}

// NewEngine creates a synthesis engine over the given Edge client and
// voice table.
func NewEngine(edge edgeSpeaker, voices *VoiceTable, opts ...EngineOption) (*Engine, error) {
	if edge == nil {
		return nil, fmt.Errorf("new engine: edge client required")
	}
	if voices == nil {
		voices = NewVoiceTable()
	}

	e := &Engine{
		edge:       edge,
		voices:     voices,
		elevenLabs: make(map[string]voiceSynthesizer),
		warn:       defaultWarnFunc,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Synthesize returns MP3 audio for text in the given language. A dedicated
// ElevenLabs voice is tried first when one is configured; any failure there
// falls back to the Edge voice preferences, where only a voice that yields
// no audio advances to the next preference.
func (e *Engine) Synthesize(ctx context.Context, text, language string, speed float64) ([]byte, error) {
	code := lang.Normalize(language)

	if synth, ok := e.elevenLabs[code]; ok && synth != nil {
		audio, err := synth.Synthesize(ctx, text)
		if err == nil {
			return audio, nil
		}
		e.warn(fmt.Sprintf("elevenlabs synthesis failed for %s, falling back to edge: %v", code, err))
	}

	ttsText := text
	if code == "ln" && e.phonetic != nil {
		rewritten, err := e.phonetic.Rewrite(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("synthesize %s: %w", code, err)
		}
		ttsText = rewritten
	}

	rate := RateFromSpeed(speed)

	var lastErr error
	for _, voice := range e.voices.VoicesFor(code) {
		audio, err := e.edge.Speak(ctx, ttsText, voice, rate)
		if err == nil {
			return audio, nil
		}
		if !errors.Is(err, ErrNoAudio) {
			return nil, fmt.Errorf("synthesize %s: %w", code, err)
		}
		e.warn(fmt.Sprintf("edge voice %s produced no audio for %s, trying fallback", voice, code))
		lastErr = err
	}
	return nil, fmt.Errorf("synthesize %s: %w", code, lastErr)
}
