package media

import (
	"context"
	"fmt"
	"strings"
)

// Clip is one synthesized audio file and the absolute delay at which it
// must start in the composited track.
type Clip struct {
	Path    string
	DelayMS int
}

// DelayMix composites clips into a single audio file at outputPath. Each
// clip is shifted right by its delay, then all shifted clips are mixed in
// one ffmpeg invocation. Mixing disables loudness normalization so each
// clip keeps its synthesized volume regardless of how many clips overlap.
func (t *Toolset) DelayMix(ctx context.Context, clips []Clip, outputPath string) error {
	if len(clips) == 0 {
		return ErrNoClips
	}

	args := []string{"-y"}
	for _, clip := range clips {
		args = append(args, "-i", clip.Path)
	}

	var filter strings.Builder
	labels := make([]string, len(clips))
	for i, clip := range clips {
		delay := clip.DelayMS
		if delay < 0 {
			delay = 0
		}
		label := fmt.Sprintf("a%d", i)
		// adelay wants one delay value per channel; repeat it so stereo
		// clips shift as a whole.
		fmt.Fprintf(&filter, "[%d:a]adelay=%d|%d[%s];", i, delay, delay, label)
		labels[i] = "[" + label + "]"
	}
	fmt.Fprintf(&filter, "%samix=inputs=%d:normalize=0[mix]", strings.Join(labels, ""), len(clips))

	args = append(args,
		"-filter_complex", filter.String(),
		"-map", "[mix]",
		outputPath,
	)

	output, err := t.cmd.CombinedOutput(ctx, t.ffmpegPath, args)
	if err != nil {
		return fmt.Errorf("%w: compositing %d clips: %v\nOutput: %s",
			ErrMixFailed, len(clips), err, string(output))
	}
	return nil
}
