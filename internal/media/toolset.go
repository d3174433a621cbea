// Package media wraps the ffmpeg and ffprobe binaries behind a small,
// testable surface: probing durations and stream offsets, extracting and
// splitting transcription-ready audio, compositing delayed clips into one
// track, and swapping a video's audio stream.
package media

import "fmt"

// Toolset runs ffmpeg and ffprobe with injectable dependencies.
type Toolset struct {
	ffmpegPath  string
	ffprobePath string

	cmd     commandRunner
	tempDir tempDirCreator
	files   fileRemover
	statter fileStatter
	dirs    dirLister
}

// ToolsetOption configures a Toolset.
type ToolsetOption func(*Toolset)

// WithCommandRunner sets the command runner for the Toolset.
func WithCommandRunner(r commandRunner) ToolsetOption {
	return func(t *Toolset) { t.cmd = r }
}

// WithTempDirCreator sets the temp directory creator for the Toolset.
func WithTempDirCreator(c tempDirCreator) ToolsetOption {
	return func(t *Toolset) { t.tempDir = c }
}

// WithFileRemover sets the file remover for the Toolset.
func WithFileRemover(f fileRemover) ToolsetOption {
	return func(t *Toolset) { t.files = f }
}

// WithFileStatter sets the file statter for the Toolset.
func WithFileStatter(s fileStatter) ToolsetOption {
	return func(t *Toolset) { t.statter = s }
}

// WithDirLister sets the directory lister for the Toolset.
func WithDirLister(d dirLister) ToolsetOption {
	return func(t *Toolset) { t.dirs = d }
}

// NewToolset creates a Toolset bound to the given binary paths.
func NewToolset(ffmpegPath, ffprobePath string, opts ...ToolsetOption) (*Toolset, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ErrNotFound)
	}
	if ffprobePath == "" {
		return nil, fmt.Errorf("ffprobePath cannot be empty: %w", ErrNotFound)
	}

	t := &Toolset{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		cmd:         osCommandRunner{},
		tempDir:     osTempDirCreator{},
		files:       osFileRemover{},
		statter:     osFileStatter{},
		dirs:        osDirLister{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// FileSize returns the size of path in bytes.
func (t *Toolset) FileSize(path string) (int64, error) {
	info, err := t.statter.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	return info.Size(), nil
}
