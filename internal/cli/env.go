package cli

import (
	"context"
	"io"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-dubline/internal/config"
	"github.com/alnah/go-dubline/internal/dub"
	"github.com/alnah/go-dubline/internal/job"
	"github.com/alnah/go-dubline/internal/media"
	"github.com/alnah/go-dubline/internal/segment"
	"github.com/alnah/go-dubline/internal/transcribe"
	"github.com/alnah/go-dubline/internal/translate"
	"github.com/alnah/go-dubline/internal/tts"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time

	// Factories for domain objects
	ConfigLoader       ConfigLoader
	ToolsetFactory     ToolsetFactory
	TranscriberFactory TranscriberFactory
	TranslatorFactory  TranslatorFactory
	SynthesizerFactory SynthesizerFactory
	DubberFactory      DubberFactory
	StoreOpener        StoreOpener
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// Toolset is the slice of the media package CLI commands need.
// *media.Toolset implements it.
type Toolset interface {
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error
	ReplaceAudio(ctx context.Context, videoPath, audioPath, outputPath string) error
	AudioStartOffset(ctx context.Context, path string) float64
	DelayMix(ctx context.Context, clips []media.Clip, outputPath string) error
	Duration(ctx context.Context, path string) (float64, error)
	FileSize(path string) (int64, error)
	SplitChunks(ctx context.Context, audioPath string, chunkSeconds int) ([]media.Chunk, error)
	RemoveChunks(chunks []media.Chunk) error
}

// ToolsetFactory resolves the ffmpeg binaries and builds the media toolset.
type ToolsetFactory interface {
	NewToolset() (Toolset, error)
}

// Transcriber produces a timestamped transcript for one audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (segment.Transcript, error)
}

// TranscriberFactory creates transcribers for audio-to-text conversion.
// parallel is the number of chunks transcribed concurrently; 1 keeps the
// sequential path with cross-chunk prompt continuity.
type TranscriberFactory interface {
	NewTranscriber(apiKey string, tools Toolset, maxUploadBytes int64, parallel int, warn transcribe.WarnFunc) (Transcriber, error)
}

// TranslatorFactory creates the translation provider registry. deepLKey
// may be empty; affected languages then fall through to the chat provider.
type TranslatorFactory interface {
	NewTranslator(openAIKey, deepLKey string) (translate.Translator, error)
}

// SynthesizerFactory creates the speech synthesis engine from configured
// voice tables and per-language credentials.
type SynthesizerFactory interface {
	NewSynthesizer(cfg config.Config, warn tts.WarnFunc) (tts.Synthesizer, error)
}

// Dubber turns translated segments into one time-aligned narration track.
type Dubber interface {
	Generate(ctx context.Context, segments []segment.Translation, p dub.Params) error
}

// DubberFactory creates dub generators.
type DubberFactory interface {
	NewDubber(synth tts.Synthesizer, mixer Toolset) (Dubber, error)
}

// JobStore persists job records across runs.
type JobStore interface {
	Create(ctx context.Context, filename string) (*job.Job, error)
	Get(ctx context.Context, id string) (*job.Job, error)
	List(ctx context.Context) ([]*job.Job, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, warnings []string, originalLanguage string) error
	MarkFailed(ctx context.Context, id, errorMessage string, warnings []string, originalLanguage string) error
	Close() error
}

// StoreOpener opens the job store at a given path.
type StoreOpener interface {
	Open(path string) (JobStore, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithToolsetFactory sets the media toolset factory.
func WithToolsetFactory(f ToolsetFactory) EnvOption {
	return func(e *Env) {
		e.ToolsetFactory = f
	}
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) {
		e.TranscriberFactory = f
	}
}

// WithTranslatorFactory sets the translator factory.
func WithTranslatorFactory(f TranslatorFactory) EnvOption {
	return func(e *Env) {
		e.TranslatorFactory = f
	}
}

// WithSynthesizerFactory sets the speech synthesizer factory.
func WithSynthesizerFactory(f SynthesizerFactory) EnvOption {
	return func(e *Env) {
		e.SynthesizerFactory = f
	}
}

// WithDubberFactory sets the dub generator factory.
func WithDubberFactory(f DubberFactory) EnvOption {
	return func(e *Env) {
		e.DubberFactory = f
	}
}

// WithStoreOpener sets the job store opener.
func WithStoreOpener(o StoreOpener) EnvOption {
	return func(e *Env) {
		e.StoreOpener = o
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:             os.Stdout,
		Stderr:             os.Stderr,
		Getenv:             os.Getenv,
		Now:                time.Now,
		ConfigLoader:       &defaultConfigLoader{},
		ToolsetFactory:     &defaultToolsetFactory{},
		TranscriberFactory: &defaultTranscriberFactory{},
		TranslatorFactory:  &defaultTranslatorFactory{},
		SynthesizerFactory: &defaultSynthesizerFactory{},
		DubberFactory:      &defaultDubberFactory{},
		StoreOpener:        &defaultStoreOpener{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultToolsetFactory implements ToolsetFactory using the media package.
type defaultToolsetFactory struct{}

func (defaultToolsetFactory) NewToolset() (Toolset, error) {
	ffmpegPath, ffprobePath, err := media.NewResolver().Resolve()
	if err != nil {
		return nil, err
	}
	return media.NewToolset(ffmpegPath, ffprobePath)
}

// defaultTranscriberFactory implements TranscriberFactory using OpenAI.
type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewTranscriber(apiKey string, tools Toolset, maxUploadBytes int64, parallel int, warn transcribe.WarnFunc) (Transcriber, error) {
	client := openai.NewClient(apiKey)
	whisper := transcribe.NewWhisperTranscriber(client)
	return transcribe.NewLongTranscriber(tools, whisper, maxUploadBytes,
		transcribe.WithParallelism(parallel),
		transcribe.WithWarnFunc(warn))
}

// defaultTranslatorFactory implements TranslatorFactory with DeepL routing
// over an OpenAI chat fallback.
type defaultTranslatorFactory struct{}

func (defaultTranslatorFactory) NewTranslator(openAIKey, deepLKey string) (translate.Translator, error) {
	chat := translate.NewChatTranslator(openai.NewClient(openAIKey))

	var deepl translate.Translator
	if deepLKey != "" {
		d, err := translate.NewDeepLTranslator(deepLKey)
		if err != nil {
			return nil, err
		}
		deepl = d
	}
	return translate.NewRegistry(deepl, chat)
}

// defaultSynthesizerFactory implements SynthesizerFactory using the tts
// package: Edge speech with voice preferences, plus per-language
// ElevenLabs voices and the phonetic rewriter when credentials allow.
type defaultSynthesizerFactory struct{}

func (defaultSynthesizerFactory) NewSynthesizer(cfg config.Config, warn tts.WarnFunc) (tts.Synthesizer, error) {
	voices := tts.NewVoiceTable()
	if cfg.VoicesFile != "" {
		loaded, err := tts.LoadVoiceTable(cfg.VoicesFile)
		if err != nil {
			return nil, err
		}
		voices = loaded
	}

	var opts []tts.EngineOption
	if warn != nil {
		opts = append(opts, tts.WithWarnFunc(warn))
	}
	for code, creds := range cfg.ElevenLabs {
		client, err := tts.NewElevenLabsClient(creds.APIKey, creds.VoiceID)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tts.WithElevenLabsVoice(code, client))
	}
	if cfg.OpenAIKey != "" {
		rewriter, err := tts.NewPhoneticRewriter(openai.NewClient(cfg.OpenAIKey))
		if err != nil {
			return nil, err
		}
		opts = append(opts, tts.WithPhoneticRewriter(rewriter))
	}

	return tts.NewEngine(tts.NewEdgeClient(), voices, opts...)
}

// defaultDubberFactory implements DubberFactory using the dub package.
type defaultDubberFactory struct{}

func (defaultDubberFactory) NewDubber(synth tts.Synthesizer, mixer Toolset) (Dubber, error) {
	return dub.NewGenerator(synth, mixer)
}

// defaultStoreOpener implements StoreOpener using the job package.
type defaultStoreOpener struct{}

func (defaultStoreOpener) Open(path string) (JobStore, error) {
	store, err := job.Open(path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Compile-time interface verification.
var (
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ ToolsetFactory     = (*defaultToolsetFactory)(nil)
	_ TranscriberFactory = (*defaultTranscriberFactory)(nil)
	_ TranslatorFactory  = (*defaultTranslatorFactory)(nil)
	_ SynthesizerFactory = (*defaultSynthesizerFactory)(nil)
	_ DubberFactory      = (*defaultDubberFactory)(nil)
	_ StoreOpener        = (*defaultStoreOpener)(nil)
	_ Toolset            = (*media.Toolset)(nil)
	_ JobStore           = (*job.Store)(nil)
)
