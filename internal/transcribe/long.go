package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-dubline/internal/media"
	"github.com/alnah/go-dubline/internal/segment"
)

// DefaultParallelism is the number of chunks transcribed concurrently when
// parallel mode is enabled.
const DefaultParallelism = 3

// mediaToolset is the slice of the media package this transcriber needs.
// *media.Toolset implements it; tests inject mocks.
type mediaToolset interface {
	FileSize(path string) (int64, error)
	Duration(ctx context.Context, path string) (float64, error)
	SplitChunks(ctx context.Context, audioPath string, chunkSeconds int) ([]media.Chunk, error)
	RemoveChunks(chunks []media.Chunk) error
}

// WarnFunc is a callback for warning messages during long transcription.
// Set to nil to suppress warnings, or provide a custom handler.
type WarnFunc func(msg string)

// defaultWarnFunc writes warnings to stderr.
func defaultWarnFunc(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// LongTranscriber transcribes audio of any length. Files under the upload
// cap go through in one request; larger files are split into fixed-duration
// chunks whose per-chunk timestamps are stitched back into one continuous
// timeline.
type LongTranscriber struct {
	tools          mediaToolset
	transcriber    Transcriber
	maxUploadBytes int64
	parallel       int
	warn           WarnFunc
}

// LongOption configures a LongTranscriber.
type LongOption func(*LongTranscriber)

// WithWarnFunc sets a callback for warning messages.
func WithWarnFunc(fn WarnFunc) LongOption {
	return func(lt *LongTranscriber) { lt.warn = fn }
}

// WithParallelism transcribes up to n chunks concurrently. Values of 1 or
// less keep the sequential path, which carries a priming prompt from chunk
// to chunk; parallel chunks cannot be primed with each other's text.
func WithParallelism(n int) LongOption {
	return func(lt *LongTranscriber) {
		if n < 1 {
			n = 1
		}
		lt.parallel = n
	}
}

// NewLongTranscriber creates a LongTranscriber. maxUploadBytes is the
// provider's upload size cap for a single request.
func NewLongTranscriber(tools mediaToolset, transcriber Transcriber, maxUploadBytes int64, opts ...LongOption) (*LongTranscriber, error) {
	if tools == nil {
		return nil, fmt.Errorf("tools cannot be nil")
	}
	if transcriber == nil {
		return nil, fmt.Errorf("transcriber cannot be nil")
	}
	if maxUploadBytes <= 0 {
		return nil, fmt.Errorf("maxUploadBytes must be positive, got %d", maxUploadBytes)
	}

	lt := &LongTranscriber{
		tools:          tools,
		transcriber:    transcriber,
		maxUploadBytes: maxUploadBytes,
		parallel:       1,
		warn:           defaultWarnFunc,
	}
	for _, opt := range opts {
		opt(lt)
	}
	return lt, nil
}

// Transcribe produces a single transcript for audioPath with all segment
// timestamps on one continuous timeline. Returns ErrNoContent when the
// result carries neither text nor segments.
func (lt *LongTranscriber) Transcribe(ctx context.Context, audioPath string) (segment.Transcript, error) {
	size, err := lt.tools.FileSize(audioPath)
	if err != nil {
		return segment.Transcript{}, err
	}

	var transcript segment.Transcript
	if size <= lt.maxUploadBytes {
		transcript, err = lt.transcriber.Transcribe(ctx, audioPath, Options{})
	} else {
		transcript, err = lt.transcribeChunked(ctx, audioPath, size)
	}
	if err != nil {
		return segment.Transcript{}, err
	}

	if transcript.Text == "" && len(transcript.Segments) == 0 {
		return segment.Transcript{}, fmt.Errorf("%s: %w", audioPath, ErrNoContent)
	}
	if transcript.Language == "" {
		transcript.Language = "unknown"
	}
	return transcript, nil
}

// transcribeChunked splits the file, transcribes every chunk, and stitches
// the per-chunk results back into one timeline in chunk order.
func (lt *LongTranscriber) transcribeChunked(ctx context.Context, audioPath string, size int64) (segment.Transcript, error) {
	duration, err := lt.tools.Duration(ctx, audioPath)
	if err != nil {
		if lt.warn != nil {
			lt.warn(fmt.Sprintf("Warning: could not determine audio duration for chunking: %v", err))
		}
		duration = 0
	}

	chunkSeconds := SelectChunkDuration(size, duration, lt.maxUploadBytes, DefaultChunkSeconds)

	chunks, err := lt.tools.SplitChunks(ctx, audioPath, chunkSeconds)
	if err != nil {
		return segment.Transcript{}, fmt.Errorf("split audio before transcription: %w", err)
	}
	defer func() { _ = lt.tools.RemoveChunks(chunks) }() // best-effort cleanup

	var results []segment.Transcript
	if lt.parallel > 1 && len(chunks) > 1 {
		results, err = lt.transcribeParallel(ctx, chunks)
	} else {
		results, err = lt.transcribeSequential(ctx, chunks)
	}
	if err != nil {
		return segment.Transcript{}, err
	}

	return lt.stitch(ctx, chunks, results), nil
}

// transcribeSequential runs chunks in order, priming each request with the
// preceding chunks' text for vocabulary continuity.
func (lt *LongTranscriber) transcribeSequential(ctx context.Context, chunks []media.Chunk) ([]segment.Transcript, error) {
	results := make([]segment.Transcript, len(chunks))

	var texts []string
	for i, chunk := range chunks {
		opts := Options{Prompt: buildPrimingPrompt(texts)}

		chunkResult, err := lt.transcriber.Transcribe(ctx, chunk.Path, opts)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", chunk.Index, err)
		}
		if text := strings.TrimSpace(chunkResult.Text); text != "" {
			texts = append(texts, text)
		}
		results[i] = chunkResult
	}
	return results, nil
}

// transcribeParallel runs up to lt.parallel chunks concurrently and collects
// results by chunk index. Priming prompts are skipped: a chunk's predecessor
// may still be in flight when its request goes out. The first chunk error
// cancels the remaining requests.
func (lt *LongTranscriber) transcribeParallel(ctx context.Context, chunks []media.Chunk) ([]segment.Transcript, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(lt.parallel)

	results := make([]segment.Transcript, len(chunks))
	for _, chunk := range chunks {
		g.Go(func() error {
			chunkResult, err := lt.transcriber.Transcribe(ctx, chunk.Path, Options{})
			if err != nil {
				return fmt.Errorf("chunk %d: %w", chunk.Index, err)
			}
			results[chunk.Index] = chunkResult
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// stitch shifts each chunk's local timestamps onto one continuous timeline.
// The running offset advances to the last stitched segment's end, or by the
// chunk's duration when a chunk yields no segments, so later chunks stay
// aligned either way.
func (lt *LongTranscriber) stitch(ctx context.Context, chunks []media.Chunk, results []segment.Transcript) segment.Transcript {
	var (
		stitched []segment.Segment
		texts    []string
		language string
		offset   float64
	)

	for i, chunk := range chunks {
		chunkResult := results[i]

		if language == "" {
			language = chunkResult.Language
		}
		if text := strings.TrimSpace(chunkResult.Text); text != "" {
			texts = append(texts, text)
		}

		if len(chunkResult.Segments) > 0 {
			for _, seg := range chunkResult.Segments {
				stitched = append(stitched, segment.Segment{
					Start: seg.Start + offset,
					End:   seg.End + offset,
					Text:  seg.Text,
				})
			}
			offset = stitched[len(stitched)-1].End
		} else {
			chunkDuration, err := lt.tools.Duration(ctx, chunk.Path)
			if err != nil {
				if lt.warn != nil {
					lt.warn(fmt.Sprintf("Warning: could not determine duration of chunk %d: %v", chunk.Index, err))
				}
				chunkDuration = 0
			}
			offset += chunkDuration
		}
	}

	return segment.Transcript{
		Text:     strings.Join(texts, " "),
		Segments: stitched,
		Language: language,
	}
}
