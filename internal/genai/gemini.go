package genai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	apperrors "github.com/garyellow/coast-messenger-go/internal/errors"
)

// geminiCompleter generates replies with the Gemini API. It implements
// the Completer interface and serves as the fallback provider.
type geminiCompleter struct {
	client *genai.Client
	model  string
}

// newGeminiCompleter creates a Gemini-backed completer.
// Returns nil if apiKey is empty (provider disabled).
func newGeminiCompleter(ctx context.Context, apiKey, model string) (*geminiCompleter, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiCompleter{
		client: client,
		model:  model,
	}, nil
}

// Complete generates a conversational reply.
func (c *geminiCompleter) Complete(ctx context.Context, history, utterance string) (string, error) {
	if c == nil || c.client == nil {
		return "", apperrors.ErrCompletionUnavailable
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
		Temperature:     genai.Ptr[float32](0.7),
		MaxOutputTokens: 300,
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(BuildUserPrompt(history, utterance)), config)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "completion call failed",
			"provider", ProviderGemini,
			"model", c.model,
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("generate content returned no candidates")
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			reply.WriteString(part.Text)
		}
	}

	result := strings.TrimSpace(reply.String())
	if result == "" {
		return "", fmt.Errorf("generate content returned empty text")
	}

	if resp.UsageMetadata != nil {
		slog.DebugContext(ctx, "completion succeeded",
			"provider", ProviderGemini,
			"model", c.model,
			"input_tokens", resp.UsageMetadata.PromptTokenCount,
			"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
			"duration_ms", duration.Milliseconds())
	}

	return result, nil
}

// Provider returns the provider type for this completer.
func (c *geminiCompleter) Provider() Provider {
	return ProviderGemini
}

// Close releases resources. Safe to call on nil receiver.
func (c *geminiCompleter) Close() error {
	// genai.Client does not require explicit cleanup in current SDK version
	return nil
}
