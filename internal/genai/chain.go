package genai

import (
	"context"
	"log/slog"
	"time"

	"github.com/garyellow/coast-messenger-go/internal/config"
	"github.com/garyellow/coast-messenger-go/internal/metrics"
)

// Chain tries each configured provider in order until one succeeds. It
// owns the per-user conversation memory; callers only see a reply
// string, never a provider error.
type Chain struct {
	completers []Completer
	memory     *MemoryStore
	metrics    *metrics.Metrics
}

// New builds the completion chain from configuration: OpenAI is the
// primary provider, Gemini the fallback. Returns nil when no provider
// is configured, which disables the free-text completion path.
func New(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*Chain, error) {
	if !cfg.HasCompletionProvider() {
		return nil, nil //nolint:nilnil // Intentional: feature disabled without API keys
	}

	var completers []Completer

	if c := newOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIModel); c != nil {
		completers = append(completers, c)
	}

	gemini, err := newGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	if gemini != nil {
		completers = append(completers, gemini)
	}

	return &Chain{
		completers: completers,
		memory:     NewMemoryStore(0, 0, 0),
		metrics:    m,
	}, nil
}

// Enabled reports whether at least one provider is available. Safe on a
// nil receiver.
func (c *Chain) Enabled() bool {
	return c != nil && len(c.completers) > 0
}

// Respond generates a reply for the user's utterance, updating the
// conversation memory on success. Every provider failure degrades to
// the fixed apology; Respond never returns an error.
func (c *Chain) Respond(ctx context.Context, userID, utterance string) string {
	if !c.Enabled() {
		return Apology
	}

	history := c.memory.History(userID)

	for _, completer := range c.completers {
		reply, err := c.complete(ctx, completer, history, utterance)
		if err != nil {
			slog.WarnContext(ctx, "completion provider failed, trying next",
				"provider", completer.Provider(),
				"error", err)
			continue
		}

		c.memory.Append(userID, utterance, reply)
		return reply
	}

	slog.ErrorContext(ctx, "all completion providers failed", "providers", len(c.completers))
	return Apology
}

// Reset clears a user's conversation memory. Safe on a nil receiver.
func (c *Chain) Reset(userID string) {
	if c == nil {
		return
	}
	c.memory.Forget(userID)
}

// complete runs one provider call under its own timeout and records
// metrics for it.
func (c *Chain) complete(ctx context.Context, completer Completer, history, utterance string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, config.CompletionRequest)
	defer cancel()

	start := time.Now()
	reply, err := completer.Complete(callCtx, history, utterance)
	duration := time.Since(start).Seconds()

	if c.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		c.metrics.RecordCompletion(string(completer.Provider()), status, duration)
	}

	return reply, err
}

// Close releases provider resources. Safe on a nil receiver.
func (c *Chain) Close() error {
	if c == nil {
		return nil
	}
	var firstErr error
	for _, completer := range c.completers {
		if err := completer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
