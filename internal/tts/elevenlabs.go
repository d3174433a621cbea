package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alnah/go-dubline/internal/apierr"
)

const (
	defaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	elevenLabsModel          = "eleven_multilingual_v2"
	elevenLabsStability      = 0.5
	elevenLabsSimilarity     = 0.75
	elevenLabsTimeout        = 30 * time.Second
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ httpDoer = (*http.Client)(nil)

// ElevenLabsClient synthesizes speech through the ElevenLabs REST API with
// a fixed voice. It is used for languages that have no usable Edge voice.
type ElevenLabsClient struct {
	apiKey     string
	voiceID    string
	baseURL    string
	httpClient httpDoer
}

// ElevenLabsOption configures an ElevenLabsClient.
type ElevenLabsOption func(*ElevenLabsClient)

// WithElevenLabsBaseURL overrides the API endpoint, mainly for tests.
func WithElevenLabsBaseURL(baseURL string) ElevenLabsOption {
	return func(c *ElevenLabsClient) { c.baseURL = strings.TrimSuffix(baseURL, "/") }
}

// WithElevenLabsHTTPClient overrides the HTTP client.
func WithElevenLabsHTTPClient(client httpDoer) ElevenLabsOption {
	return func(c *ElevenLabsClient) { c.httpClient = client }
}

// NewElevenLabsClient creates a client for the given API key and voice.
func NewElevenLabsClient(apiKey, voiceID string, opts ...ElevenLabsOption) (*ElevenLabsClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("new elevenlabs client: %w", ErrAPIKeyMissing)
	}
	if strings.TrimSpace(voiceID) == "" {
		return nil, fmt.Errorf("new elevenlabs client: voice id required")
	}

	c := &ElevenLabsClient{
		apiKey:     apiKey,
		voiceID:    voiceID,
		baseURL:    defaultElevenLabsBaseURL,
		httpClient: &http.Client{Timeout: elevenLabsTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize returns MP3 audio for the given text.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("elevenlabs synthesize: %w", ErrEmptyText)
	}

	body, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: elevenLabsModel,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       elevenLabsStability,
			SimilarityBoost: elevenLabsSimilarity,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs synthesize: encode request: %w", err)
	}

	url := c.baseURL + "/v1/text-to-speech/" + c.voiceID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs synthesize: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs synthesize: %w: %v", apierr.ErrServer, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs synthesize: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs synthesize: %w: status %d: %s",
			classifyElevenLabsStatus(resp.StatusCode), resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("elevenlabs synthesize: %w", ErrNoAudio)
	}
	return data, nil
}

// Voice describes an available ElevenLabs voice.
type Voice struct {
	ID   string `json:"voice_id"`
	Name string `json:"name"`
}

// Voices lists the voices available to the account.
func (c *ElevenLabsClient) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs voices: build request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs voices: %w: %v", apierr.ErrServer, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs voices: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("elevenlabs voices: %w: status %d: %s",
			classifyElevenLabsStatus(resp.StatusCode), resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("elevenlabs voices: decode response: %w", err)
	}
	return parsed.Voices, nil
}

func classifyElevenLabsStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apierr.ErrAuthFailed
	case status == http.StatusTooManyRequests:
		return apierr.ErrRateLimit
	case status >= 500:
		return apierr.ErrServer
	default:
		return apierr.ErrBadRequest
	}
}
