package tts

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-dubline/internal/apierr"
)

const phoneticModel = "gpt-4o-mini"

const phoneticInstruction = "Rewrite this Lingala text into a phonetic version " +
	"using Latin letters so a speech voice can pronounce it clearly. Do not " +
	"change the meaning. No explanations, only the rewritten text."

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var _ chatCompleter = (*openai.Client)(nil)

// PhoneticRewriter rewrites Lingala text into a phonetic Latin-letter form
// so that a borrowed Edge voice pronounces it intelligibly.
type PhoneticRewriter struct {
	client chatCompleter
	model  string
}

// NewPhoneticRewriter creates a rewriter backed by a chat completion model.
func NewPhoneticRewriter(client chatCompleter) (*PhoneticRewriter, error) {
	if client == nil {
		return nil, fmt.Errorf("new phonetic rewriter: client required")
	}
	return &PhoneticRewriter{client: client, model: phoneticModel}, nil
}

// Rewrite returns the phonetic form of text. A blank model response falls
// back to the original text so the speech step always has something to say.
func (r *PhoneticRewriter) Rewrite(ctx context.Context, text string) (string, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: phoneticInstruction},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("phonetic rewrite: %w", apierr.ClassifyOpenAI(err))
	}

	if len(resp.Choices) == 0 {
		return text, nil
	}
	rewritten := strings.TrimSpace(resp.Choices[0].Message.Content)
	if rewritten == "" {
		return text, nil
	}
	return rewritten, nil
}
