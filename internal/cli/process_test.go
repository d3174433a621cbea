package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-dubline/internal/config"
	"github.com/alnah/go-dubline/internal/job"
	"github.com/alnah/go-dubline/internal/lang"
)

func TestProcessFullRun(t *testing.T) {
	t.Parallel()

	mocks := newTestMocks()
	env, stdout, _ := mocks.env()

	input := writeTestInput(t, "talk.mp4")
	outRoot := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "jobs.db")

	err := execute(t, ProcessCmd(env), input,
		"-l", "nl", "-o", outRoot, "--jobs-db", dbPath)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	store := mocks.store.store
	j, err := store.Get(t.Context(), "job-1")
	if err != nil {
		t.Fatalf("job not recorded: %v", err)
	}
	if j.Status != job.StatusCompleted {
		t.Errorf("status = %q, want %q", j.Status, job.StatusCompleted)
	}
	if j.OriginalLanguage != "english" {
		t.Errorf("original language = %q, want %q", j.OriginalLanguage, "english")
	}

	jobDir := filepath.Join(outRoot, "job-1")
	for _, name := range []string{"subs_nl.vtt", "metadata.json"} {
		if _, err := os.Stat(filepath.Join(jobDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
	if params := mocks.dubber.dubber.Params(); len(params) != 1 {
		t.Errorf("dub calls = %d, want 1", len(params))
	}
	if !strings.Contains(stdout.String(), "Job job-1 completed") {
		t.Errorf("stdout missing completion line: %q", stdout.String())
	}
}

func TestProcessReportsInputDurationAndSize(t *testing.T) {
	t.Parallel()

	mocks := newTestMocks()
	env, _, stderr := mocks.env()

	input := writeTestInput(t, "talk.mp4")
	dbPath := filepath.Join(t.TempDir(), "jobs.db")

	err := execute(t, ProcessCmd(env), input,
		"-l", "nl", "-o", t.TempDir(), "--jobs-db", dbPath)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	// The mock toolset probes 60 seconds and 1024 bytes.
	if !strings.Contains(stderr.String(), "Processing talk.mp4 (01:00, 1 KB)") {
		t.Errorf("stderr missing status line: %q", stderr.String())
	}
}

func TestProcessFailureMarksJobFailed(t *testing.T) {
	t.Parallel()

	mocks := newTestMocks()
	mocks.transcriber.transcriber.err = errors.New("whisper unavailable")
	env, _, _ := mocks.env()

	input := writeTestInput(t, "talk.mp4")
	dbPath := filepath.Join(t.TempDir(), "jobs.db")

	err := execute(t, ProcessCmd(env), input,
		"-l", "nl", "-o", t.TempDir(), "--jobs-db", dbPath)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	j, getErr := mocks.store.store.Get(t.Context(), "job-1")
	if getErr != nil {
		t.Fatalf("job not recorded: %v", getErr)
	}
	if j.Status != job.StatusFailed {
		t.Errorf("status = %q, want %q", j.Status, job.StatusFailed)
	}
	if !strings.Contains(j.Error, "whisper unavailable") {
		t.Errorf("job error = %q, want transcription failure", j.Error)
	}
}

func TestProcessSurfacesWarnings(t *testing.T) {
	t.Parallel()

	mocks := newTestMocks()
	mocks.translator.translator = &mockTranslator{
		TranslateFunc: func(ctx context.Context, text, targetLang string) (string, error) {
			if targetLang == "fr" {
				return "", errors.New("quota exceeded")
			}
			return "[" + targetLang + "] " + text, nil
		},
	}
	env, _, stderr := mocks.env()

	input := writeTestInput(t, "talk.mp4")
	err := execute(t, ProcessCmd(env), input,
		"-l", "nl", "-l", "fr", "-o", t.TempDir(),
		"--jobs-db", filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if !strings.Contains(stderr.String(), "Warning:") {
		t.Errorf("stderr missing warning: %q", stderr.String())
	}
	j, getErr := mocks.store.store.Get(t.Context(), "job-1")
	if getErr != nil {
		t.Fatalf("job not recorded: %v", getErr)
	}
	if j.Status != job.StatusCompleted {
		t.Errorf("status = %q, want %q", j.Status, job.StatusCompleted)
	}
	if len(j.Warnings) == 0 {
		t.Error("expected warnings on the completed job")
	}
}

func TestProcessValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   func(t *testing.T) string
		args    []string
		wantErr error
	}{
		{
			name:    "missing file",
			input:   func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.mp4") },
			wantErr: ErrFileNotFound,
		},
		{
			name:    "unsupported format",
			input:   func(t *testing.T) string { return writeTestInput(t, "talk.xyz") },
			wantErr: ErrUnsupportedFormat,
		},
		{
			name:    "invalid language",
			input:   func(t *testing.T) string { return writeTestInput(t, "talk.mp4") },
			args:    []string{"-l", "zz"},
			wantErr: lang.ErrInvalid,
		},
		{
			name:    "negative speed",
			input:   func(t *testing.T) string { return writeTestInput(t, "talk.mp4") },
			args:    []string{"-l", "nl", "--speed=-1"},
			wantErr: ErrInvalidSpeed,
		},
		{
			name:    "dub video from audio input",
			input:   func(t *testing.T) string { return writeTestInput(t, "talk.mp3") },
			args:    []string{"-l", "nl", "--dub-video"},
			wantErr: ErrVideoRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mocks := newTestMocks()
			env, _, _ := mocks.env()

			args := append([]string{tt.input(t)}, tt.args...)
			args = append(args, "--jobs-db", filepath.Join(t.TempDir(), "jobs.db"))
			err := execute(t, ProcessCmd(env), args...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestProcessRequiresAPIKey(t *testing.T) {
	t.Parallel()

	mocks := newTestMocks()
	mocks.configLoader.LoadFunc = func() (config.Config, error) {
		return config.Config{}, nil
	}
	env, _, _ := mocks.env()

	input := writeTestInput(t, "talk.mp4")
	err := execute(t, ProcessCmd(env), input, "-l", "nl",
		"--jobs-db", filepath.Join(t.TempDir(), "jobs.db"))
	if !errors.Is(err, ErrAPIKeyMissing) {
		t.Errorf("error = %v, want ErrAPIKeyMissing", err)
	}
}

func TestProcessPassesUploadCapToTranscriber(t *testing.T) {
	t.Parallel()

	mocks := newTestMocks()
	mocks.configLoader.LoadFunc = func() (config.Config, error) {
		return config.Config{OpenAIKey: "sk-test", UploadCapMB: 10}, nil
	}
	env, _, _ := mocks.env()

	input := writeTestInput(t, "talk.mp4")
	err := execute(t, ProcessCmd(env), input, "-l", "nl",
		"-o", t.TempDir(), "--jobs-db", filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if got, want := mocks.transcriber.maxUploadBytes, int64(10)*1024*1024; got != want {
		t.Errorf("maxUploadBytes = %d, want %d", got, want)
	}
	if mocks.transcriber.apiKey != "sk-test" {
		t.Errorf("apiKey = %q, want %q", mocks.transcriber.apiKey, "sk-test")
	}
}
