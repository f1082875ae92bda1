package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"slack-wa-relay/internal/biz/repo"
)

const defaultDigestModel = "gpt-4o-mini"

// DigestRewriter implements repo.SummaryRewriter via an OpenAI-compatible
// chat endpoint.
type DigestRewriter struct {
	client *openai.Client
	model  string
}

// NewDigestRewriter creates a digest rewriter. baseURL may be empty to use
// the OpenAI default; model defaults when empty.
func NewDigestRewriter(apiKey, baseURL, model string) *DigestRewriter {
	if model == "" {
		model = defaultDigestModel
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &DigestRewriter{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

const digestPrompt = `You rewrite notification digests for a messaging relay.

Requirements:
1. Keep every count, name and timestamp from the input exactly as given
2. One or two short sentences, plain text, no markdown
3. Output the rewritten digest directly, no prefix`

// Rewrite polishes the digest wording. The counts and timestamps in the
// input must survive verbatim.
func (r *DigestRewriter) Rewrite(ctx context.Context, digest string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: digestPrompt},
			{Role: openai.ChatMessageRoleUser, Content: digest},
		},
		Temperature: 0.2,
		MaxTokens:   300,
	})
	if err != nil {
		return "", fmt.Errorf("rewrite digest: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ repo.SummaryRewriter = (*DigestRewriter)(nil)
