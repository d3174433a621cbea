package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Duration returns the duration of a media file in seconds.
func (t *Toolset) Duration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	output, err := t.cmd.CombinedOutput(ctx, t.ffprobePath, args)
	if err != nil {
		return 0, fmt.Errorf("%w: probe duration of %s: %v\nOutput: %s",
			ErrProbeFailed, path, err, string(output))
	}

	seconds, err := parseProbeFloat(string(output))
	if err != nil {
		return 0, fmt.Errorf("%w: unreadable duration for %s: %v", ErrProbeFailed, path, err)
	}
	return seconds, nil
}

// AudioStartOffset returns the start time of the first audio stream in
// seconds. Containers often carry audio that begins a fraction of a second
// after t=0; the offset becomes leading silence in the dub so synthesized
// speech stays aligned with the picture. Probe failures and absent values
// fall back to zero rather than failing the job.
func (t *Toolset) AudioStartOffset(ctx context.Context, path string) float64 {
	args := []string{
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=start_time",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	output, err := t.cmd.CombinedOutput(ctx, t.ffprobePath, args)
	if err != nil {
		return 0
	}

	offset, err := parseProbeFloat(string(output))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

// parseProbeFloat reads the single numeric value ffprobe prints in
// nokey=1 mode. "N/A" and empty output are errors.
func parseProbeFloat(output string) (float64, error) {
	value := strings.TrimSpace(output)
	if value == "" || strings.EqualFold(value, "N/A") {
		return 0, fmt.Errorf("no value in probe output %q", output)
	}
	return strconv.ParseFloat(value, 64)
}
