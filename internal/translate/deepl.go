package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alnah/go-dubline/internal/apierr"
	"github.com/alnah/go-dubline/internal/lang"
)

// DeepL API configuration.
const (
	defaultDeepLBaseURL = "https://api.deepl.com"

	// statusQuotaExceeded is DeepL's non-standard code for an exhausted
	// character quota.
	statusQuotaExceeded = 456

	// Retry configuration: free-tier accounts hit 429 quickly, so rate
	// limits get a short backoff before giving up.
	defaultDeepLMaxAttempts = 3
	defaultDeepLBaseDelay   = 1 * time.Second
	defaultDeepLMaxDelay    = 30 * time.Second

	defaultDeepLHTTPTimeout = 60 * time.Second
)

// httpDoer abstracts the HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Compile-time interface compliance check.
var _ Translator = (*DeepLTranslator)(nil)

// DeepLTranslator translates text through the DeepL REST API.
type DeepLTranslator struct {
	apiKey     string
	baseURL    string
	retry      apierr.Policy
	httpClient httpDoer
}

// DeepLOption configures a DeepLTranslator.
type DeepLOption func(*DeepLTranslator)

// WithDeepLBaseURL sets a custom base URL (for testing or the free-tier
// endpoint).
func WithDeepLBaseURL(url string) DeepLOption {
	return func(d *DeepLTranslator) {
		d.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithDeepLHTTPClient sets a custom HTTP client (for testing).
func WithDeepLHTTPClient(c httpDoer) DeepLOption {
	return func(d *DeepLTranslator) {
		d.httpClient = c
	}
}

// WithDeepLRetryPolicy replaces the default retry policy.
func WithDeepLRetryPolicy(p apierr.Policy) DeepLOption {
	return func(d *DeepLTranslator) {
		d.retry = p
	}
}

// NewDeepLTranslator creates a DeepLTranslator. apiKey is required.
func NewDeepLTranslator(apiKey string, opts ...DeepLOption) (*DeepLTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("DEEPL_API_KEY: %w", ErrAPIKeyMissing)
	}

	d := &DeepLTranslator{
		apiKey:  apiKey,
		baseURL: defaultDeepLBaseURL,
		retry: apierr.Policy{
			MaxAttempts: defaultDeepLMaxAttempts,
			BaseDelay:   defaultDeepLBaseDelay,
			MaxDelay:    defaultDeepLMaxDelay,
			// Only rate limits are worth retrying here; quota and auth
			// failures need user action.
			IsRetryable: func(err error) bool { return errors.Is(err, apierr.ErrRateLimit) },
		},
		httpClient: &http.Client{Timeout: defaultDeepLHTTPTimeout},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// deepLResponse is the success payload of /v2/translate.
type deepLResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// Translate translates text into targetLang, which must be a code DeepL
// supports (see lang.SupportedByDeepL).
func (d *DeepLTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	deepLCode, ok := lang.DeepLCode(targetLang)
	if !ok {
		return "", fmt.Errorf("deepl does not support %q: %w", targetLang, apierr.ErrBadRequest)
	}

	translated, err := apierr.Do(ctx, d.retry, func() (string, error) {
		return d.translateOnce(ctx, text, deepLCode)
	})
	if err != nil {
		return "", fmt.Errorf("deepl translation to %s: %w", targetLang, err)
	}
	return translated, nil
}

func (d *DeepLTranslator) translateOnce(ctx context.Context, text, deepLCode string) (string, error) {
	form := url.Values{}
	form.Set("auth_key", d.apiKey)
	form.Set("text", text)
	form.Set("target_lang", deepLCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.baseURL+"/v2/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, apierr.ErrServer)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyDeepLStatus(resp.StatusCode, body)
	}

	var parsed deepLResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Translations) == 0 {
		return "", ErrEmptyTranslation
	}
	return parsed.Translations[0].Text, nil
}

// classifyDeepLStatus maps DeepL HTTP status codes to shared sentinels.
func classifyDeepLStatus(statusCode int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	switch statusCode {
	case http.StatusTooManyRequests:
		return fmt.Errorf("HTTP 429 %s: %w", msg, apierr.ErrRateLimit)
	case statusQuotaExceeded:
		return fmt.Errorf("character quota exhausted: %w", apierr.ErrQuotaExceeded)
	case http.StatusForbidden, http.StatusUnauthorized:
		return fmt.Errorf("HTTP %d %s: %w", statusCode, msg, apierr.ErrAuthFailed)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Errorf("HTTP %d %s: %w", statusCode, msg, apierr.ErrServer)
	default:
		return fmt.Errorf("HTTP %d %s: %w", statusCode, msg, apierr.ErrBadRequest)
	}
}
