package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-dubline/internal/config"
	"github.com/alnah/go-dubline/internal/transcribe"
)

func TestTranscribeVideoExtractsAudioFirst(t *testing.T) {
	t.Parallel()

	mocks := newTestMocks()
	env, stdout, _ := mocks.env()

	input := writeTestInput(t, "talk.mp4")
	output := filepath.Join(t.TempDir(), "talk.txt")

	if err := execute(t, TranscribeCmd(env), input, "-o", output); err != nil {
		t.Fatalf("transcribe: %v", err)
	}

	if calls := mocks.toolset.ExtractCalls(); len(calls) != 1 {
		t.Errorf("extract calls = %d, want 1", len(calls))
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if got := string(data); got != "Hello there. How are you?\n" {
		t.Errorf("transcript = %q", got)
	}
	if !strings.Contains(stdout.String(), output) {
		t.Errorf("stdout missing output path: %q", stdout.String())
	}
}

func TestTranscribeAudioSkipsExtraction(t *testing.T) {
	t.Parallel()

	mocks := newTestMocks()
	env, _, _ := mocks.env()

	input := writeTestInput(t, "interview.mp3")
	output := filepath.Join(t.TempDir(), "interview.txt")

	if err := execute(t, TranscribeCmd(env), input, "-o", output); err != nil {
		t.Fatalf("transcribe: %v", err)
	}

	if calls := mocks.toolset.ExtractCalls(); len(calls) != 0 {
		t.Errorf("extract calls = %d, want 0", len(calls))
	}
	if paths := mocks.transcriber.transcriber.Paths(); len(paths) != 1 || paths[0] != input {
		t.Errorf("transcribed paths = %v, want [%s]", paths, input)
	}
}

func TestTranscribeParallelFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		args         []string
		wantParallel int
	}{
		{name: "default is sequential", wantParallel: 1},
		{name: "parallel flag enables concurrent chunks", args: []string{"--parallel"}, wantParallel: transcribe.DefaultParallelism},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mocks := newTestMocks()
			env, _, _ := mocks.env()

			input := writeTestInput(t, "interview.mp3")
			args := append([]string{input, "-o", filepath.Join(t.TempDir(), "out.txt")}, tt.args...)

			if err := execute(t, TranscribeCmd(env), args...); err != nil {
				t.Fatalf("transcribe: %v", err)
			}
			if mocks.transcriber.parallel != tt.wantParallel {
				t.Errorf("parallelism = %d, want %d", mocks.transcriber.parallel, tt.wantParallel)
			}
		})
	}
}

func TestTranscribeRequiresAPIKey(t *testing.T) {
	t.Parallel()

	mocks := newTestMocks()
	mocks.configLoader.LoadFunc = func() (config.Config, error) {
		return config.Config{}, nil
	}
	env, _, _ := mocks.env()

	input := writeTestInput(t, "talk.mp4")
	err := execute(t, TranscribeCmd(env), input)
	if !errors.Is(err, ErrAPIKeyMissing) {
		t.Errorf("error = %v, want ErrAPIKeyMissing", err)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	t.Parallel()

	mocks := newTestMocks()
	env, _, _ := mocks.env()

	err := execute(t, TranscribeCmd(env), filepath.Join(t.TempDir(), "absent.mp4"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("error = %v, want ErrFileNotFound", err)
	}
}

func TestDeriveTranscriptPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base string
		want string
	}{
		{"talk.mp4", "talk.txt"},
		{"interview.mp3", "interview.txt"},
		{"noext", "noext.txt"},
	}
	for _, tt := range tests {
		if got := deriveTranscriptPath(tt.base); got != tt.want {
			t.Errorf("deriveTranscriptPath(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}
