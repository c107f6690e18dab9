package bot

import (
	"context"

	"github.com/garyellow/coast-messenger-go/internal/bot/care"
	"github.com/garyellow/coast-messenger-go/internal/bot/curation"
	"github.com/garyellow/coast-messenger-go/internal/i18n"
	"github.com/garyellow/coast-messenger-go/internal/messenger"
	"github.com/garyellow/coast-messenger-go/internal/metrics"
	"github.com/garyellow/coast-messenger-go/internal/ratelimit"
	"github.com/garyellow/coast-messenger-go/internal/user"
)

// TextStrategy answers free text that no shortcut claimed. The
// processor is parameterized by one strategy, chosen at construction.
type TextStrategy interface {
	Respond(ctx context.Context, u *user.User, text string) []*messenger.Message
}

// FallbackStrategy replies that the message wasn't understood and
// re-offers the entry-point menu. Used when no completion provider is
// configured and as the degraded path when completions are throttled.
type FallbackStrategy struct {
	tr *i18n.Translator
}

// NewFallbackStrategy creates the non-AI text strategy.
func NewFallbackStrategy(tr *i18n.Translator) *FallbackStrategy {
	return &FallbackStrategy{tr: tr}
}

// Respond implements TextStrategy.
func (s *FallbackStrategy) Respond(_ context.Context, _ *user.User, text string) []*messenger.Message {
	return []*messenger.Message{
		messenger.NewText(s.tr.Get("fallback.any", map[string]string{"message": text})),
		messenger.NewQuickReply(s.tr.T("get_started.help"),
			[]messenger.QuickReplyOption{
				{Title: s.tr.T("menu.suggestion"), Payload: curation.PayloadCuration},
				{Title: s.tr.T("menu.help"), Payload: care.PayloadHelp},
			}),
	}
}

// CompletionResponder generates a conversational reply. *genai.Chain
// satisfies this.
type CompletionResponder interface {
	Respond(ctx context.Context, userID, utterance string) string
}

// CompletionStrategy answers free text with an LLM reply, throttled
// per user. Throttled or disabled users fall through to the fallback
// bundle so they always get an answer.
type CompletionStrategy struct {
	responder CompletionResponder
	limiter   *ratelimit.KeyedLimiter
	fallback  *FallbackStrategy
	metrics   *metrics.Metrics
}

// NewCompletionStrategy creates the AI text strategy. limiter may be
// nil to disable throttling.
func NewCompletionStrategy(responder CompletionResponder, limiter *ratelimit.KeyedLimiter, fallback *FallbackStrategy, m *metrics.Metrics) *CompletionStrategy {
	return &CompletionStrategy{
		responder: responder,
		limiter:   limiter,
		fallback:  fallback,
		metrics:   m,
	}
}

// Respond implements TextStrategy.
func (s *CompletionStrategy) Respond(ctx context.Context, u *user.User, text string) []*messenger.Message {
	if s.limiter != nil && !s.limiter.Allow(u.PSID) {
		if s.metrics != nil {
			s.metrics.RecordRateLimiterDrop("completion")
		}
		return s.fallback.Respond(ctx, u, text)
	}

	reply := s.responder.Respond(ctx, u.PSID, text)
	return []*messenger.Message{messenger.NewText(reply)}
}
