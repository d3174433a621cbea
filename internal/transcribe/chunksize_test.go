package transcribe_test

import (
	"testing"

	"github.com/alnah/go-dubline/internal/transcribe"
)

func TestSelectChunkDuration(t *testing.T) {
	t.Parallel()

	const mib = 1024 * 1024

	tests := []struct {
		name           string
		fileSize       int64
		duration       float64
		maxUpload      int64
		defaultSeconds int
		want           int
	}{
		{
			name:           "nominal bitrate above floor",
			fileSize:       120 * mib,
			duration:       3600,
			maxUpload:      24 * mib,
			defaultSeconds: 600,
			want:           720,
		},
		{
			name:           "high bitrate forces short chunks",
			fileSize:       120 * mib,
			duration:       60,
			maxUpload:      24 * mib,
			defaultSeconds: 600,
			want:           12,
		},
		{
			name:           "low bitrate floored at PCM rate",
			fileSize:       10 * mib,
			duration:       3600,
			maxUpload:      24 * mib,
			defaultSeconds: 600,
			want:           24 * mib / transcribe.PCMBytesPerSecond, // 786
		},
		{
			name:           "zero size falls back to default",
			fileSize:       0,
			duration:       3600,
			maxUpload:      24 * mib,
			defaultSeconds: 600,
			want:           600,
		},
		{
			name:           "zero duration falls back to default",
			fileSize:       120 * mib,
			duration:       0,
			maxUpload:      24 * mib,
			defaultSeconds: 600,
			want:           600,
		},
		{
			name:           "negative cap falls back to default",
			fileSize:       120 * mib,
			duration:       3600,
			maxUpload:      -1,
			defaultSeconds: 600,
			want:           600,
		},
		{
			name:           "bad inputs with non-positive default yield one second",
			fileSize:       0,
			duration:       0,
			maxUpload:      0,
			defaultSeconds: 0,
			want:           1,
		},
		{
			name:           "tiny cap never yields zero",
			fileSize:       120 * mib,
			duration:       3600,
			maxUpload:      1024,
			defaultSeconds: 600,
			want:           1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := transcribe.SelectChunkDuration(tt.fileSize, tt.duration, tt.maxUpload, tt.defaultSeconds)
			if got != tt.want {
				t.Errorf("SelectChunkDuration(%d, %v, %d, %d) = %d, want %d",
					tt.fileSize, tt.duration, tt.maxUpload, tt.defaultSeconds, got, tt.want)
			}
		})
	}
}

func TestSelectChunkDurationRespectsCap(t *testing.T) {
	t.Parallel()

	const mib = 1024 * 1024

	// For any positive input, the chunk duration at the effective bitrate
	// floor must never exceed the upload cap.
	cases := []struct {
		fileSize  int64
		duration  float64
		maxUpload int64
	}{
		{120 * mib, 3600, 24 * mib},
		{500 * mib, 60, 24 * mib},
		{1 * mib, 7200, 24 * mib},
		{48 * mib, 1500, 10 * mib},
	}
	for _, c := range cases {
		got := transcribe.SelectChunkDuration(c.fileSize, c.duration, c.maxUpload, 600)
		rate := float64(c.fileSize) / c.duration
		if rate < transcribe.PCMBytesPerSecond {
			rate = transcribe.PCMBytesPerSecond
		}
		if float64(got)*rate > float64(c.maxUpload) {
			t.Errorf("SelectChunkDuration(%d, %v, %d) = %d exceeds cap at %v B/s",
				c.fileSize, c.duration, c.maxUpload, got, rate)
		}
	}
}
