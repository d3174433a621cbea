package media

import "errors"

// ErrNotFound indicates the ffmpeg or ffprobe binary could not be located.
var ErrNotFound = errors.New("ffmpeg not found")

// ErrProbeFailed indicates ffprobe could not report on a media file.
var ErrProbeFailed = errors.New("media probe failed")

// ErrTranscodeFailed indicates an ffmpeg transcoding invocation failed.
var ErrTranscodeFailed = errors.New("transcode failed")

// ErrNoChunks indicates audio splitting produced no chunk files.
var ErrNoChunks = errors.New("audio splitting produced no chunks")

// ErrMixFailed indicates the delayed-mix composite could not be built.
var ErrMixFailed = errors.New("audio mix failed")

// ErrNoClips indicates a delayed mix was requested with no input clips.
var ErrNoClips = errors.New("no clips to mix")

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")
