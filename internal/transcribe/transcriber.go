package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-dubline/internal/apierr"
	"github.com/alnah/go-dubline/internal/segment"
)

// Whisper request parameters.
const (
	// promptMaxLength caps the priming prompt passed with each chunk.
	// Whisper only considers roughly the final 224 tokens; 200 characters
	// of trailing context is enough to carry vocabulary across chunks.
	promptMaxLength = 200

	// promptContextChunks is how many preceding chunk texts feed the
	// priming prompt.
	promptContextChunks = 3
)

// Default retry configuration for transcription requests.
const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 1 * time.Second
	defaultMaxDelay    = 30 * time.Second
)

// Options configures a transcription request.
type Options struct {
	// Prompt primes the model with trailing context from earlier chunks.
	// Improves vocabulary continuity when a long file is transcribed in
	// pieces.
	Prompt string
}

// Transcriber converts one audio file into a timestamped transcript.
type Transcriber interface {
	// Transcribe converts an audio file to a transcript with segment
	// timestamps local to that file.
	Transcribe(ctx context.Context, audioPath string, opts Options) (segment.Transcript, error)
}

// audioTranscriber is the slice of the OpenAI client this package needs.
// *openai.Client implements it; tests inject mocks.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Transcriber      = (*WhisperTranscriber)(nil)
	_ audioTranscriber = (*openai.Client)(nil)
)

// WhisperTranscriber transcribes audio through OpenAI's Whisper API with
// verbose JSON output so segment timestamps survive.
type WhisperTranscriber struct {
	client audioTranscriber
	retry  apierr.Policy
}

// WhisperOption configures a WhisperTranscriber.
type WhisperOption func(*WhisperTranscriber)

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p apierr.Policy) WhisperOption {
	return func(t *WhisperTranscriber) { t.retry = p }
}

// NewWhisperTranscriber creates a WhisperTranscriber. The client is
// injected to enable testing with mocks.
func NewWhisperTranscriber(client audioTranscriber, opts ...WhisperOption) *WhisperTranscriber {
	t := &WhisperTranscriber{
		client: client,
		retry: apierr.Policy{
			MaxAttempts: defaultMaxAttempts,
			BaseDelay:   defaultBaseDelay,
			MaxDelay:    defaultMaxDelay,
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe sends one audio file to Whisper and returns its transcript.
// Transient provider failures are retried with exponential backoff.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string, opts Options) (segment.Transcript, error) {
	req := openai.AudioRequest{
		Model:       openai.Whisper1,
		FilePath:    audioPath,
		Format:      openai.AudioResponseFormatVerboseJSON,
		Prompt:      clampPrompt(opts.Prompt),
		Temperature: 0, // deterministic output across retries
	}

	resp, err := apierr.Do(ctx, t.retry, func() (openai.AudioResponse, error) {
		resp, err := t.client.CreateTranscription(ctx, req)
		if err != nil {
			return openai.AudioResponse{}, classifyError(err)
		}
		return resp, nil
	})
	if err != nil {
		return segment.Transcript{}, fmt.Errorf("transcribe %s: %w", audioPath, err)
	}

	transcript := segment.Transcript{
		Text:     strings.TrimSpace(resp.Text),
		Segments: make([]segment.Segment, 0, len(resp.Segments)),
		Language: resp.Language,
	}
	for _, seg := range resp.Segments {
		transcript.Segments = append(transcript.Segments, segment.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	return transcript, nil
}

// clampPrompt truncates a priming prompt to at most its trailing
// promptMaxLength bytes, cutting on a rune boundary, since the most recent
// context matters most.
func clampPrompt(prompt string) string {
	if len(prompt) <= promptMaxLength {
		return prompt
	}
	cut := len(prompt) - promptMaxLength
	// Never split a multibyte rune at the cut point.
	for cut < len(prompt) && !utf8.RuneStart(prompt[cut]) {
		cut++
	}
	return prompt[cut:]
}

// buildPrimingPrompt joins the most recent chunk texts into a priming
// prompt for the next chunk. Returns "" when there is no context yet.
func buildPrimingPrompt(previousTexts []string) string {
	if len(previousTexts) == 0 {
		return ""
	}
	recent := previousTexts
	if len(recent) > promptContextChunks {
		recent = recent[len(recent)-promptContextChunks:]
	}
	return clampPrompt(strings.TrimSpace(strings.Join(recent, " ")))
}

// classifyError maps OpenAI API errors to shared sentinel errors.
func classifyError(err error) error {
	return apierr.ClassifyOpenAI(err)
}
