package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/alnah/go-dubline/internal/config"
	"github.com/alnah/go-dubline/internal/dub"
	"github.com/alnah/go-dubline/internal/job"
	"github.com/alnah/go-dubline/internal/media"
	"github.com/alnah/go-dubline/internal/segment"
	"github.com/alnah/go-dubline/internal/transcribe"
	"github.com/alnah/go-dubline/internal/translate"
	"github.com/alnah/go-dubline/internal/tts"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{OpenAIKey: "sk-test"}, nil
}

// ---------------------------------------------------------------------------
// Mock Toolset + ToolsetFactory
// ---------------------------------------------------------------------------

type mockToolset struct {
	ExtractAudioFunc func(ctx context.Context, inputPath, outputPath string) error
	ReplaceAudioFunc func(ctx context.Context, videoPath, audioPath, outputPath string) error
	offset           float64

	mu            sync.Mutex
	extractCalls  []string
	replaceCalls  []string
	delayMixCalls int
}

func (m *mockToolset) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	m.mu.Lock()
	m.extractCalls = append(m.extractCalls, outputPath)
	m.mu.Unlock()

	if m.ExtractAudioFunc != nil {
		return m.ExtractAudioFunc(ctx, inputPath, outputPath)
	}
	return nil
}

func (m *mockToolset) ReplaceAudio(ctx context.Context, videoPath, audioPath, outputPath string) error {
	m.mu.Lock()
	m.replaceCalls = append(m.replaceCalls, outputPath)
	m.mu.Unlock()

	if m.ReplaceAudioFunc != nil {
		return m.ReplaceAudioFunc(ctx, videoPath, audioPath, outputPath)
	}
	return nil
}

func (m *mockToolset) AudioStartOffset(ctx context.Context, path string) float64 {
	return m.offset
}

func (m *mockToolset) DelayMix(ctx context.Context, clips []media.Clip, outputPath string) error {
	m.mu.Lock()
	m.delayMixCalls++
	m.mu.Unlock()
	return nil
}

func (m *mockToolset) Duration(ctx context.Context, path string) (float64, error) {
	return 60, nil
}

func (m *mockToolset) FileSize(path string) (int64, error) {
	return 1024, nil
}

func (m *mockToolset) SplitChunks(ctx context.Context, audioPath string, chunkSeconds int) ([]media.Chunk, error) {
	return nil, nil
}

func (m *mockToolset) RemoveChunks(chunks []media.Chunk) error {
	return nil
}

func (m *mockToolset) ExtractCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.extractCalls...)
}

func (m *mockToolset) ReplaceCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.replaceCalls...)
}

type mockToolsetFactory struct {
	tools *mockToolset
	err   error
}

func (m *mockToolsetFactory) NewToolset() (Toolset, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.tools, nil
}

// ---------------------------------------------------------------------------
// Mock Transcriber + TranscriberFactory
// ---------------------------------------------------------------------------

type mockTranscriber struct {
	transcript segment.Transcript
	err        error

	mu    sync.Mutex
	paths []string
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string) (segment.Transcript, error) {
	m.mu.Lock()
	m.paths = append(m.paths, audioPath)
	m.mu.Unlock()

	if m.err != nil {
		return segment.Transcript{}, m.err
	}
	return m.transcript, nil
}

func (m *mockTranscriber) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

type mockTranscriberFactory struct {
	transcriber *mockTranscriber
	err         error

	mu             sync.Mutex
	apiKey         string
	maxUploadBytes int64
	parallel       int
}

func (m *mockTranscriberFactory) NewTranscriber(apiKey string, tools Toolset, maxUploadBytes int64, parallel int, warn transcribe.WarnFunc) (Transcriber, error) {
	m.mu.Lock()
	m.apiKey = apiKey
	m.maxUploadBytes = maxUploadBytes
	m.parallel = parallel
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	return m.transcriber, nil
}

// ---------------------------------------------------------------------------
// Mock Translator + TranslatorFactory
// ---------------------------------------------------------------------------

type mockTranslator struct {
	TranslateFunc func(ctx context.Context, text, targetLang string) (string, error)
}

func (m *mockTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, targetLang)
	}
	return "[" + targetLang + "] " + text, nil
}

type mockTranslatorFactory struct {
	translator translate.Translator
	err        error
}

func (m *mockTranslatorFactory) NewTranslator(openAIKey, deepLKey string) (translate.Translator, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.translator, nil
}

// ---------------------------------------------------------------------------
// Mock Synthesizer + SynthesizerFactory
// ---------------------------------------------------------------------------

type mockSynthesizer struct{}

func (mockSynthesizer) Synthesize(ctx context.Context, text, language string, speed float64) ([]byte, error) {
	return []byte("audio"), nil
}

type mockSynthesizerFactory struct {
	err error
}

func (m *mockSynthesizerFactory) NewSynthesizer(cfg config.Config, warn tts.WarnFunc) (tts.Synthesizer, error) {
	if m.err != nil {
		return nil, m.err
	}
	return mockSynthesizer{}, nil
}

// ---------------------------------------------------------------------------
// Mock Dubber + DubberFactory
// ---------------------------------------------------------------------------

type mockDubber struct {
	err error

	mu     sync.Mutex
	params []dub.Params
}

func (m *mockDubber) Generate(ctx context.Context, segments []segment.Translation, p dub.Params) error {
	m.mu.Lock()
	m.params = append(m.params, p)
	m.mu.Unlock()
	return m.err
}

func (m *mockDubber) Params() []dub.Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]dub.Params(nil), m.params...)
}

type mockDubberFactory struct {
	dubber *mockDubber
	err    error
}

func (m *mockDubberFactory) NewDubber(synth tts.Synthesizer, mixer Toolset) (Dubber, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.dubber, nil
}

// ---------------------------------------------------------------------------
// Mock JobStore + StoreOpener - in-memory job records
// ---------------------------------------------------------------------------

type mockStore struct {
	mu     sync.Mutex
	nextID int
	jobs   map[string]*job.Job
	order  []string
	closed bool
}

func newMockStore() *mockStore {
	return &mockStore{jobs: make(map[string]*job.Job)}
}

func (m *mockStore) Create(ctx context.Context, filename string) (*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	j := &job.Job{
		ID:       fmt.Sprintf("job-%d", m.nextID),
		Filename: filename,
		Status:   job.StatusPending,
	}
	m.jobs[j.ID] = j
	m.order = append(m.order, j.ID)
	return j, nil
}

func (m *mockStore) Get(ctx context.Context, id string) (*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, job.ErrNotFound
	}
	return j, nil
}

func (m *mockStore) List(ctx context.Context) ([]*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := make([]*job.Job, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		jobs = append(jobs, m.jobs[m.order[i]])
	}
	return jobs, nil
}

func (m *mockStore) MarkProcessing(ctx context.Context, id string) error {
	return m.setStatus(id, job.StatusProcessing, "", nil, "")
}

func (m *mockStore) MarkCompleted(ctx context.Context, id string, warnings []string, originalLanguage string) error {
	return m.setStatus(id, job.StatusCompleted, "", warnings, originalLanguage)
}

func (m *mockStore) MarkFailed(ctx context.Context, id, errorMessage string, warnings []string, originalLanguage string) error {
	return m.setStatus(id, job.StatusFailed, errorMessage, warnings, originalLanguage)
}

func (m *mockStore) setStatus(id string, status job.Status, errorMessage string, warnings []string, originalLanguage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return job.ErrNotFound
	}
	j.Status = status
	j.Error = errorMessage
	j.Warnings = warnings
	j.OriginalLanguage = originalLanguage
	return nil
}

func (m *mockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockStore) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

type mockStoreOpener struct {
	store *mockStore
	err   error

	mu   sync.Mutex
	path string
}

func (m *mockStoreOpener) Open(path string) (JobStore, error) {
	m.mu.Lock()
	m.path = path
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	return m.store, nil
}
