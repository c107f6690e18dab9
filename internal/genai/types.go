// Package genai provides the conversational completion path used when
// no payload rule matches a free-text message. It wraps LLM providers
// (OpenAI primary, Gemini fallback) behind a single Completer interface
// with per-user conversation memory.
package genai

import "context"

// Provider identifies an LLM provider.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Default models per provider.
const (
	DefaultOpenAIModel = "gpt-4o"
	DefaultGeminiModel = "gemini-2.0-flash"
)

// Apology is returned to the user when every provider fails. The
// completion path never surfaces errors to the event handler.
const Apology = "Sorry, something went wrong."

// Completer generates a reply to a user utterance given the rolling
// conversation history.
type Completer interface {
	// Complete returns the model's reply. history may be empty on the
	// first exchange.
	Complete(ctx context.Context, history, utterance string) (string, error)

	// Provider identifies the backing provider for logs and metrics.
	Provider() Provider

	// Close releases resources. Safe to call on a nil receiver.
	Close() error
}
