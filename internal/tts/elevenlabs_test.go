package tts_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/alnah/go-dubline/internal/apierr"
	"github.com/alnah/go-dubline/internal/tts"
)

type mockHTTPClient struct {
	responses []*http.Response
	errs      []error
	requests  []*http.Request
	bodies    []string
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.requests = append(m.requests, req)
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		m.bodies = append(m.bodies, string(data))
	} else {
		m.bodies = append(m.bodies, "")
	}

	i := len(m.requests) - 1
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	return m.responses[i], nil
}

func httpResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func TestNewElevenLabsClientRequiresCredentials(t *testing.T) {
	t.Parallel()

	if _, err := tts.NewElevenLabsClient("", "voice-1"); !errors.Is(err, tts.ErrAPIKeyMissing) {
		t.Errorf("NewElevenLabsClient(no key) error = %v, want ErrAPIKeyMissing", err)
	}
	if _, err := tts.NewElevenLabsClient("key-123", ""); err == nil {
		t.Error("NewElevenLabsClient(no voice) error = nil, want error")
	}
}

func TestElevenLabsSynthesize(t *testing.T) {
	t.Parallel()

	httpClient := &mockHTTPClient{
		responses: []*http.Response{httpResponse(http.StatusOK, "mp3-bytes")},
	}
	client, err := tts.NewElevenLabsClient("key-123", "voice-1",
		tts.WithElevenLabsHTTPClient(httpClient))
	if err != nil {
		t.Fatalf("NewElevenLabsClient() error = %v", err)
	}

	audio, err := client.Synthesize(context.Background(), "Mbote na yo")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Errorf("audio = %q, want %q", audio, "mp3-bytes")
	}

	req := httpClient.requests[0]
	if req.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", req.Method)
	}
	if !strings.HasSuffix(req.URL.Path, "/v1/text-to-speech/voice-1") {
		t.Errorf("path = %s, want /v1/text-to-speech/voice-1 suffix", req.URL.Path)
	}
	if got := req.Header.Get("xi-api-key"); got != "key-123" {
		t.Errorf("xi-api-key = %q, want %q", got, "key-123")
	}
	if got := req.Header.Get("Accept"); got != "audio/mpeg" {
		t.Errorf("Accept = %q, want audio/mpeg", got)
	}

	body := httpClient.bodies[0]
	for _, want := range []string{
		`"text":"Mbote na yo"`,
		`"model_id":"eleven_multilingual_v2"`,
		`"stability":0.5`,
		`"similarity_boost":0.75`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("request body %q missing %q", body, want)
		}
	}
}

func TestElevenLabsSynthesizeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: "bad key", wantErr: apierr.ErrAuthFailed},
		{name: "rate limited", status: http.StatusTooManyRequests, body: "slow down", wantErr: apierr.ErrRateLimit},
		{name: "server error", status: http.StatusBadGateway, body: "oops", wantErr: apierr.ErrServer},
		{name: "unknown voice", status: http.StatusNotFound, body: "no voice", wantErr: apierr.ErrBadRequest},
		{name: "empty audio", status: http.StatusOK, body: "", wantErr: tts.ErrNoAudio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			httpClient := &mockHTTPClient{
				responses: []*http.Response{httpResponse(tt.status, tt.body)},
			}
			client, err := tts.NewElevenLabsClient("key-123", "voice-1",
				tts.WithElevenLabsHTTPClient(httpClient))
			if err != nil {
				t.Fatalf("NewElevenLabsClient() error = %v", err)
			}

			_, err = client.Synthesize(context.Background(), "hello")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Synthesize() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestElevenLabsSynthesizeEmptyText(t *testing.T) {
	t.Parallel()

	client, err := tts.NewElevenLabsClient("key-123", "voice-1",
		tts.WithElevenLabsHTTPClient(&mockHTTPClient{}))
	if err != nil {
		t.Fatalf("NewElevenLabsClient() error = %v", err)
	}

	if _, err := client.Synthesize(context.Background(), "   "); !errors.Is(err, tts.ErrEmptyText) {
		t.Errorf("Synthesize(blank) error = %v, want ErrEmptyText", err)
	}
}

func TestElevenLabsVoices(t *testing.T) {
	t.Parallel()

	body := `{"voices":[{"voice_id":"v1","name":"Ana"},{"voice_id":"v2","name":"Ben"}]}`
	httpClient := &mockHTTPClient{
		responses: []*http.Response{httpResponse(http.StatusOK, body)},
	}
	client, err := tts.NewElevenLabsClient("key-123", "voice-1",
		tts.WithElevenLabsHTTPClient(httpClient))
	if err != nil {
		t.Fatalf("NewElevenLabsClient() error = %v", err)
	}

	voices, err := client.Voices(context.Background())
	if err != nil {
		t.Fatalf("Voices() error = %v", err)
	}
	if len(voices) != 2 || voices[0].ID != "v1" || voices[1].Name != "Ben" {
		t.Errorf("Voices() = %+v, want v1/Ana and v2/Ben", voices)
	}
	if !strings.HasSuffix(httpClient.requests[0].URL.Path, "/v1/voices") {
		t.Errorf("path = %s, want /v1/voices suffix", httpClient.requests[0].URL.Path)
	}
}
