package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-dubline/internal/segment"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	configLoader *mockConfigLoader
	toolset      *mockToolset
	transcriber  *mockTranscriberFactory
	translator   *mockTranslatorFactory
	synthesizer  *mockSynthesizerFactory
	dubber       *mockDubberFactory
	store        *mockStoreOpener
}

func newTestMocks() *testMocks {
	return &testMocks{
		configLoader: &mockConfigLoader{},
		toolset:      &mockToolset{offset: 0},
		transcriber:  &mockTranscriberFactory{transcriber: &mockTranscriber{transcript: testTranscript()}},
		translator:   &mockTranslatorFactory{translator: &mockTranslator{}},
		synthesizer:  &mockSynthesizerFactory{},
		dubber:       &mockDubberFactory{dubber: &mockDubber{}},
		store:        &mockStoreOpener{store: newMockStore()},
	}
}

// env builds an Env wired to the mocks, with output captured in the
// returned buffers.
func (m *testMocks) env() (*Env, *syncBuffer, *syncBuffer) {
	stdout := &syncBuffer{}
	stderr := &syncBuffer{}
	env := NewEnv(
		WithStdout(stdout),
		WithStderr(stderr),
		WithGetenv(func(string) string { return "" }),
		WithNow(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }),
		WithConfigLoader(m.configLoader),
		WithToolsetFactory(&mockToolsetFactory{tools: m.toolset}),
		WithTranscriberFactory(m.transcriber),
		WithTranslatorFactory(m.translator),
		WithSynthesizerFactory(m.synthesizer),
		WithDubberFactory(m.dubber),
		WithStoreOpener(m.store),
	)
	return env, stdout, stderr
}

// testTranscript is a small two-segment transcript fixture.
func testTranscript() segment.Transcript {
	return segment.Transcript{
		Text:     "Hello there. How are you?",
		Language: "english",
		Segments: []segment.Segment{
			{Start: 0.5, End: 2.0, Text: "Hello there."},
			{Start: 2.5, End: 4.0, Text: "How are you?"},
		},
	}
}

// writeTestInput creates a dummy input file with the given name in a
// temp directory and returns its path.
func writeTestInput(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatalf("write test input: %v", err)
	}
	return path
}

// execute runs a cobra command with args and returns its error.
func execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.ExecuteContext(context.Background())
}
