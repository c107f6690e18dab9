// Package bot routes classified webhook events to domain handlers and
// orchestrates the per-event processing flow.
package bot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/garyellow/coast-messenger-go/internal/bot/care"
	"github.com/garyellow/coast-messenger-go/internal/bot/curation"
	"github.com/garyellow/coast-messenger-go/internal/bot/lead"
	"github.com/garyellow/coast-messenger-go/internal/bot/order"
	"github.com/garyellow/coast-messenger-go/internal/bot/survey"
	"github.com/garyellow/coast-messenger-go/internal/i18n"
	"github.com/garyellow/coast-messenger-go/internal/messenger"
	"github.com/garyellow/coast-messenger-go/internal/metrics"
	"github.com/garyellow/coast-messenger-go/internal/user"
)

// recurringNoticeText is the sample recurring notification body. It is
// intentionally not localized; it explains the mechanics to developers
// trying out the opt-in flow.
const recurringNoticeText = "[INFO] The following message is a sample Recurring Notification " +
	"for a weekly frequency. This is usually sent outside the 24-hour window to notify users " +
	"on topics that they have opted in."

// Handler produces the response sequence for one routed payload.
type Handler func(ctx context.Context, u *user.User, key string) []*messenger.Message

// Rule pairs a match predicate with its handler. Rules are evaluated in
// order; the first match wins, so precedence lives in the table, not in
// the handlers.
type Rule struct {
	Name   string
	Match  func(key string) bool
	Handle Handler
}

// Router dispatches normalized payload keys through the rule table.
type Router struct {
	rules    []Rule
	fallback Handler
	metrics  *metrics.Metrics
}

// RouterConfig carries the domain handlers the rule table binds to.
type RouterConfig struct {
	Translator *i18n.Translator
	Care       *care.Handler
	Curation   *curation.Handler
	Order      *order.Handler
	Lead       *lead.Handler
	Survey     *survey.Handler
	Metrics    *metrics.Metrics
}

// NewRouter builds the payload rule table.
func NewRouter(cfg RouterConfig) *Router {
	tr := cfg.Translator

	rules := []Rule{
		{
			Name:  "nux",
			Match: exact("GET_STARTED", "DEVDOCS", "GITHUB"),
			Handle: func(_ context.Context, u *user.User, _ string) []*messenger.Message {
				return NuxMessages(tr, u)
			},
		},
		{
			Name:  "curation",
			Match: contains("CURATION", "COUPON", "PRODUCT_LAUNCH"),
			Handle: func(_ context.Context, u *user.User, key string) []*messenger.Message {
				return cfg.Curation.HandlePayload(u, key)
			},
		},
		{
			Name:  "care",
			Match: contains("CARE"),
			Handle: func(_ context.Context, u *user.User, key string) []*messenger.Message {
				return cfg.Care.HandlePayload(u, key)
			},
		},
		{
			Name:  "order",
			Match: contains("ORDER"),
			Handle: func(_ context.Context, u *user.User, key string) []*messenger.Message {
				return cfg.Order.HandlePayload(u, key)
			},
		},
		{
			Name:  "survey",
			Match: contains("CSAT"),
			Handle: func(_ context.Context, _ *user.User, key string) []*messenger.Message {
				return cfg.Survey.HandlePayload(key)
			},
		},
		{
			Name:  "chat_plugin",
			Match: contains("CHAT-PLUGIN"),
			Handle: func(_ context.Context, _ *user.User, _ string) []*messenger.Message {
				return chatPluginGreeting(tr)
			},
		},
		{
			Name:  "appointment",
			Match: contains("BOOK_APPOINTMENT"),
			Handle: func(_ context.Context, _ *user.User, _ string) []*messenger.Message {
				return cfg.Care.Appointment()
			},
		},
		{
			Name:  "recurring_notice",
			Match: exact("RN_WEEKLY"),
			Handle: func(_ context.Context, _ *user.User, _ string) []*messenger.Message {
				return []*messenger.Message{messenger.NewText(recurringNoticeText)}
			},
		},
		{
			Name:  "lead",
			Match: contains("WHOLESALE_LEAD"),
			Handle: func(ctx context.Context, u *user.User, key string) []*messenger.Message {
				return cfg.Lead.HandlePayload(ctx, u, key)
			},
		},
	}

	// Unrecognized keys get a generic reply; the raw key goes to the
	// log, not to the user.
	fallback := func(ctx context.Context, _ *user.User, key string) []*messenger.Message {
		slog.InfoContext(ctx, "no rule matched payload", "payload", key)
		return []*messenger.Message{messenger.NewText(tr.T("fallback.default"))}
	}

	return &Router{rules: rules, fallback: fallback, metrics: cfg.Metrics}
}

// Route dispatches a normalized key to the first matching rule.
func (r *Router) Route(ctx context.Context, u *user.User, key string) []*messenger.Message {
	for _, rule := range r.rules {
		if rule.Match(key) {
			if r.metrics != nil {
				r.metrics.RecordPayloadRouted(rule.Name)
			}
			return rule.Handle(ctx, u, key)
		}
	}

	if r.metrics != nil {
		r.metrics.RecordPayloadRouted("fallback")
	}
	return r.fallback(ctx, u, key)
}

// chatPluginGreeting welcomes visitors arriving through the website
// chat plugin and offers the care menu directly.
func chatPluginGreeting(tr *i18n.Translator) []*messenger.Message {
	return []*messenger.Message{
		messenger.NewText(tr.T("chat_plugin.prompt")),
		messenger.NewText(tr.T("get_started.guidance")),
		messenger.NewQuickReply(tr.T("get_started.help"),
			[]messenger.QuickReplyOption{
				{Title: tr.T("care.order"), Payload: care.PayloadOrder},
				{Title: tr.T("care.billing"), Payload: care.PayloadBilling},
				{Title: tr.T("care.other"), Payload: care.PayloadOther},
			}),
	}
}

func exact(keys ...string) func(string) bool {
	return func(key string) bool {
		for _, k := range keys {
			if key == k {
				return true
			}
		}
		return false
	}
}

func contains(substrings ...string) func(string) bool {
	return func(key string) bool {
		for _, s := range substrings {
			if strings.Contains(key, s) {
				return true
			}
		}
		return false
	}
}
