package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	apperrors "github.com/garyellow/coast-messenger-go/internal/errors"
)

// openaiCompleter generates replies with the OpenAI chat completion
// API. It implements the Completer interface.
type openaiCompleter struct {
	client openai.Client
	model  string
}

// newOpenAICompleter creates an OpenAI-backed completer.
// Returns nil if apiKey is empty (provider disabled).
func newOpenAICompleter(apiKey, model string) *openaiCompleter {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &openaiCompleter{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Complete generates a conversational reply.
func (c *openaiCompleter) Complete(ctx context.Context, history, utterance string) (string, error) {
	if c == nil {
		return "", apperrors.ErrCompletionUnavailable
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildUserPrompt(history, utterance)),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(300),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "completion call failed",
			"provider", ProviderOpenAI,
			"model", c.model,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("chat completion returned empty content")
	}

	if resp.Usage.TotalTokens > 0 {
		slog.DebugContext(ctx, "completion succeeded",
			"provider", ProviderOpenAI,
			"model", c.model,
			"input_tokens", resp.Usage.PromptTokens,
			"output_tokens", resp.Usage.CompletionTokens,
			"duration_ms", duration.Milliseconds())
	}

	return reply, nil
}

// Provider returns the provider type for this completer.
func (c *openaiCompleter) Provider() Provider {
	return ProviderOpenAI
}

// Close releases resources. Safe to call on nil receiver.
func (c *openaiCompleter) Close() error {
	// openai-go client doesn't require cleanup
	return nil
}
