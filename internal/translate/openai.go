package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-dubline/internal/apierr"
	"github.com/alnah/go-dubline/internal/lang"
)

// Chat translation configuration.
const (
	defaultChatModel = "gpt-4o-mini"

	defaultChatMaxAttempts = 3
	defaultChatBaseDelay   = 1 * time.Second
	defaultChatMaxDelay    = 30 * time.Second
)

// chatCompleter is the slice of the OpenAI client this translator needs.
// *openai.Client implements it; tests inject mocks.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Translator    = (*ChatTranslator)(nil)
	_ chatCompleter = (*openai.Client)(nil)
)

// ChatTranslator translates through an instructed chat completion. It
// covers the languages DeepL has no model for.
type ChatTranslator struct {
	client chatCompleter
	model  string
	retry  apierr.Policy
}

// ChatOption configures a ChatTranslator.
type ChatOption func(*ChatTranslator)

// WithChatModel sets the model used for translation.
func WithChatModel(model string) ChatOption {
	return func(c *ChatTranslator) { c.model = model }
}

// WithChatRetryPolicy replaces the default retry policy.
func WithChatRetryPolicy(p apierr.Policy) ChatOption {
	return func(c *ChatTranslator) { c.retry = p }
}

// NewChatTranslator creates a ChatTranslator. The client is injected to
// enable testing with mocks.
func NewChatTranslator(client chatCompleter, opts ...ChatOption) *ChatTranslator {
	c := &ChatTranslator{
		client: client,
		model:  defaultChatModel,
		retry: apierr.Policy{
			MaxAttempts: defaultChatMaxAttempts,
			BaseDelay:   defaultChatBaseDelay,
			MaxDelay:    defaultChatMaxDelay,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Translate translates text into targetLang. The model is instructed to
// answer with the translation only; any language-name prefix it adds
// anyway is stripped.
func (c *ChatTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	label := lang.Label(targetLang)

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(
					"You are a professional translator. Translate exactly into %s. No explanations, only the translation.",
					label),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
	}

	resp, err := apierr.Do(ctx, c.retry, func() (openai.ChatCompletionResponse, error) {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return openai.ChatCompletionResponse{}, apierr.ClassifyOpenAI(err)
		}
		return resp, nil
	})
	if err != nil {
		return "", fmt.Errorf("chat translation to %s: %w", label, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat translation to %s: %w", label, ErrEmptyTranslation)
	}
	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", fmt.Errorf("chat translation to %s: %w", label, ErrEmptyTranslation)
	}
	return stripLanguagePrefix(translated, targetLang), nil
}

// extraPrefixNames lists alternative language names models tend to prefix
// translations with, beyond the canonical label.
var extraPrefixNames = map[string][]string{
	"kg": {"Kituba", "Kikongo"},
	"mg": {"Malagasy"},
	"yo": {"Yoruba"},
}

// stripLanguagePrefix removes leading "Language:" style prefixes that chat
// models sometimes prepend despite being told not to. Applied per line so
// multi-line translations stay clean.
func stripLanguagePrefix(text, targetLang string) string {
	normalized := lang.Normalize(targetLang)
	names := []string{lang.Label(targetLang), strings.ToUpper(normalized), normalized}
	names = append(names, extraPrefixNames[lang.BaseCode(targetLang)]...)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		lines[i] = stripPrefixNames(strings.TrimSpace(line), names)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func stripPrefixNames(line string, names []string) string {
	for _, name := range names {
		if name == "" {
			continue
		}
		prefix := name + ":"
		if len(line) >= len(prefix) && strings.EqualFold(line[:len(prefix)], prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}
	return line
}
