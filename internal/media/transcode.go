package media

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Transcription intermediate format: 16kHz mono signed 16-bit PCM. Every
// provider accepts it and its bitrate is fixed, which makes chunk sizing
// deterministic.
const (
	transcodeSampleRate = 16000
	transcodeChannels   = 1
)

// Chunk is one fixed-duration slice of a split audio file. The caller is
// responsible for cleaning up chunk files after use.
type Chunk struct {
	Path  string
	Index int
}

// ExtractAudio re-encodes the audio stream of inputPath into a
// transcription-ready WAV at outputPath.
func (t *Toolset) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	args := []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(transcodeSampleRate),
		"-ac", strconv.Itoa(transcodeChannels),
		outputPath,
	}
	output, err := t.cmd.CombinedOutput(ctx, t.ffmpegPath, args)
	if err != nil {
		return fmt.Errorf("%w: extract audio from %s: %v\nOutput: %s",
			ErrTranscodeFailed, inputPath, err, string(output))
	}
	return nil
}

// SplitChunks cuts audioPath into consecutive chunks of at most
// chunkSeconds each, written to a fresh temp directory. Chunks are returned
// ordered by position; producing zero chunks is an error because it means
// the input had no usable audio.
func (t *Toolset) SplitChunks(ctx context.Context, audioPath string, chunkSeconds int) ([]Chunk, error) {
	if chunkSeconds <= 0 {
		chunkSeconds = 1
	}

	tempDir, err := t.tempDir.MkdirTemp("", "dubline-chunks-*")
	if err != nil {
		return nil, fmt.Errorf("create chunk directory: %w", err)
	}

	pattern := filepath.Join(tempDir, "chunk_%03d.wav")
	args := []string{
		"-y",
		"-i", audioPath,
		"-f", "segment",
		"-segment_time", strconv.Itoa(chunkSeconds),
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(transcodeSampleRate),
		"-ac", strconv.Itoa(transcodeChannels),
		pattern,
	}
	output, err := t.cmd.CombinedOutput(ctx, t.ffmpegPath, args)
	if err != nil {
		_ = t.files.RemoveAll(tempDir) // best-effort cleanup; original error takes precedence
		return nil, fmt.Errorf("%w: split %s: %v\nOutput: %s",
			ErrTranscodeFailed, audioPath, err, string(output))
	}

	entries, err := t.dirs.ReadDir(tempDir)
	if err != nil {
		_ = t.files.RemoveAll(tempDir)
		return nil, fmt.Errorf("list chunk directory: %w", err)
	}

	var chunks []Chunk
	for _, entry := range entries {
		name := entry.Name()
		pos, ok := chunkPosition(name)
		if entry.IsDir() || !ok {
			continue
		}
		chunks = append(chunks, Chunk{Path: filepath.Join(tempDir, name), Index: pos})
	}
	if len(chunks) == 0 {
		_ = t.files.RemoveAll(tempDir)
		return nil, fmt.Errorf("%w: %s", ErrNoChunks, audioPath)
	}

	// Sort by the numeric position embedded in the filename. Past 1000
	// chunks ffmpeg widens the number, so a lexicographic sort would put
	// chunk_1000 before chunk_999.
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks, nil
}

// chunkPosition extracts the numeric position from a chunk filename such as
// "chunk_042.wav". Reports false for names that don't match the pattern.
func chunkPosition(name string) (int, bool) {
	if !strings.HasPrefix(name, "chunk_") || !strings.HasSuffix(name, ".wav") {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, "chunk_"), ".wav")
	pos, err := strconv.Atoi(digits)
	if err != nil || pos < 0 {
		return 0, false
	}
	return pos, true
}

// ReplaceAudio muxes the video stream of videoPath with the audio of
// audioPath into outputPath. The video stream is copied, not re-encoded.
func (t *Toolset) ReplaceAudio(ctx context.Context, videoPath, audioPath, outputPath string) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		outputPath,
	}
	output, err := t.cmd.CombinedOutput(ctx, t.ffmpegPath, args)
	if err != nil {
		return fmt.Errorf("%w: replace audio of %s: %v\nOutput: %s",
			ErrTranscodeFailed, videoPath, err, string(output))
	}
	return nil
}

// RemoveChunks deletes chunk files created by SplitChunks and their parent
// directory. Call after transcription is complete.
func (t *Toolset) RemoveChunks(chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tempDir := filepath.Dir(chunks[0].Path)
	if !strings.Contains(tempDir, "dubline-chunks-") {
		// Safety check: don't delete arbitrary directories.
		for _, chunk := range chunks {
			_ = t.files.Remove(chunk.Path) // best-effort cleanup; files may already be gone
		}
		return nil
	}
	return t.files.RemoveAll(tempDir)
}
