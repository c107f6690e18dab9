package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/garyellow/coast-messenger-go/internal/bot/care"
	"github.com/garyellow/coast-messenger-go/internal/bot/curation"
	"github.com/garyellow/coast-messenger-go/internal/bot/lead"
	"github.com/garyellow/coast-messenger-go/internal/bot/order"
	"github.com/garyellow/coast-messenger-go/internal/config"
	apperrors "github.com/garyellow/coast-messenger-go/internal/errors"
	"github.com/garyellow/coast-messenger-go/internal/events"
	"github.com/garyellow/coast-messenger-go/internal/graph"
	"github.com/garyellow/coast-messenger-go/internal/i18n"
	"github.com/garyellow/coast-messenger-go/internal/messenger"
	"github.com/garyellow/coast-messenger-go/internal/metrics"
	"github.com/garyellow/coast-messenger-go/internal/ratelimit"
	"github.com/garyellow/coast-messenger-go/internal/user"
)

// csatSuggestion routes "#"-prefixed feedback into the survey handler.
const csatSuggestion = "CSAT_SUGGESTION"

// UserResolver hydrates a user by sender key. *user.Registry satisfies
// this.
type UserResolver interface {
	Resolve(ctx context.Context, key string, guest bool) (*user.User, error)
}

// Deliverer hands responses to the delivery scheduler.
// *scheduler.Scheduler satisfies this.
type Deliverer interface {
	Deliver(recipient graph.Recipient, msgs []*messenger.Message)
	DeliverAfter(recipient graph.Recipient, msg *messenger.Message, delay time.Duration)
}

// Processor orchestrates one webhook event end to end: resolve the
// sender, classify, route, and hand the responses to delivery. A
// failure in one event never affects its siblings in the same batch.
type Processor struct {
	users    UserResolver
	router   *Router
	lead     *lead.Handler
	curation *curation.Handler
	strategy TextStrategy
	delivery Deliverer
	tr       *i18n.Translator
	metrics  *metrics.Metrics

	eventLimiter *ratelimit.PerKeyLimiter

	appID             string
	leadGenAppID      string
	greetingThreshold float64
}

// ProcessorConfig wires a Processor.
type ProcessorConfig struct {
	Users    UserResolver
	Router   *Router
	Lead     *lead.Handler
	Curation *curation.Handler
	Strategy TextStrategy
	Delivery Deliverer

	Translator *i18n.Translator
	Metrics    *metrics.Metrics

	// EventLimiter throttles events per sender; nil disables throttling.
	EventLimiter *ratelimit.PerKeyLimiter

	AppID        string
	LeadGenAppID string

	// GreetingThreshold is the NLP confidence above which free text is
	// treated as a greeting.
	GreetingThreshold float64
}

// NewProcessor creates an event processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	return &Processor{
		users:             cfg.Users,
		router:            cfg.Router,
		lead:              cfg.Lead,
		curation:          cfg.Curation,
		strategy:          cfg.Strategy,
		delivery:          cfg.Delivery,
		tr:                cfg.Translator,
		metrics:           cfg.Metrics,
		eventLimiter:      cfg.EventLimiter,
		appID:             cfg.AppID,
		leadGenAppID:      cfg.LeadGenAppID,
		greetingThreshold: cfg.GreetingThreshold,
	}
}

// HandleEvent processes one messaging event. It never returns an
// error; failures degrade to an apologetic reply or a logged drop.
func (p *Processor) HandleEvent(ctx context.Context, ev *events.Event) {
	start := time.Now()

	key := ev.SenderKey()
	if key == "" {
		slog.DebugContext(ctx, "event without sender, skipping")
		return
	}
	guest := ev.IsGuestUser()

	if p.eventLimiter != nil && !p.eventLimiter.Allow(key) {
		if p.metrics != nil {
			p.metrics.RecordRateLimiterDrop("event")
		}
		slog.WarnContext(ctx, "sender over event rate limit, dropping", "sender", key)
		return
	}

	c, err := events.Classify(ev, p.appID, p.leadGenAppID)
	if err != nil {
		if apperrors.IsIgnoredEvent(err) {
			slog.DebugContext(ctx, "ignoring event", "reason", err)
		} else {
			slog.WarnContext(ctx, "event classification failed", "error", err)
		}
		return
	}

	u, err := p.users.Resolve(ctx, key, guest)
	if err != nil {
		slog.WarnContext(ctx, "user resolution failed, using defaults", "sender", key, "error", err)
		u = user.New(key)
	}

	msgs := p.respond(ctx, u, c)

	if c.Kind == events.KindOptIn && c.NotificationToken != "" {
		p.scheduleRecurring(u, c.NotificationToken)
	}

	if len(msgs) > 0 {
		p.delivery.Deliver(p.recipient(key, guest), msgs)
	}

	if p.metrics != nil {
		p.metrics.RecordWebhook(kindLabel(c.Kind), "success", time.Since(start).Seconds())
	}
}

// respond builds the response sequence for a classified event. Panics
// in a handler are contained here and turned into an apology so the
// batch keeps going.
func (p *Processor) respond(ctx context.Context, u *user.User, c events.Classification) (msgs []*messenger.Message) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "handler panicked", "sender", u.PSID, "panic", r)
			if p.metrics != nil {
				p.metrics.RecordHTTPError("handler_panic", "bot")
			}
			msgs = []*messenger.Message{messenger.NewText(
				p.tr.Get("fallback.error", map[string]string{"error": fmt.Sprint(r)}))}
		}
	}()

	switch c.Kind {
	case events.KindPayload, events.KindOptIn, events.KindRestart:
		return p.router.Route(ctx, u, c.RoutingKey)

	case events.KindLead:
		return p.lead.HandleReferral(u, c.RoutingKey)

	case events.KindAttachment:
		return p.attachmentFallback()

	case events.KindText:
		return p.respondToText(ctx, u, c)
	}

	return nil
}

// respondToText applies the fixed shortcut order before handing the
// text to the configured strategy.
func (p *Processor) respondToText(ctx context.Context, u *user.User, c events.Classification) []*messenger.Message {
	text := strings.TrimSpace(c.Text)
	lower := strings.ToLower(text)

	switch {
	case c.GreetingConfidence > p.greetingThreshold || strings.Contains(lower, "start over"):
		return NuxMessages(p.tr, u)

	case isNumeric(text):
		return p.router.Route(ctx, u, order.PayloadNumber)

	case strings.Contains(text, "#"):
		return p.router.Route(ctx, u, csatSuggestion)

	case strings.Contains(lower, strings.ToLower(p.tr.T("care.help"))):
		return p.router.Route(ctx, u, care.PayloadHelp)

	default:
		return p.strategy.Respond(ctx, u, text)
	}
}

// attachmentFallback acknowledges a media message and offers the two
// useful exits.
func (p *Processor) attachmentFallback() []*messenger.Message {
	return []*messenger.Message{
		messenger.NewQuickReply(p.tr.T("fallback.attachment"),
			[]messenger.QuickReplyOption{
				{Title: p.tr.T("menu.help"), Payload: care.PayloadHelp},
				{Title: p.tr.T("menu.start_over"), Payload: "GET_STARTED"},
			}),
	}
}

// scheduleRecurring queues a sample weekly pick addressed to the
// notification token the user just granted.
func (p *Processor) scheduleRecurring(u *user.User, token string) {
	recipient := graph.Recipient{NotificationMessagesToken: token}
	msgs := p.curation.HandlePayload(u, "CURATION_BUDGET_50_DINNER")

	for i, msg := range msgs {
		delay := config.RecurringNotificationDelay + time.Duration(i)*config.DeliveryStagger
		p.delivery.DeliverAfter(recipient, msg, delay)
	}
}

func (p *Processor) recipient(key string, guest bool) graph.Recipient {
	if guest {
		return graph.Recipient{UserRef: key}
	}
	return graph.Recipient{ID: key}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func kindLabel(k events.Kind) string {
	switch k {
	case events.KindText:
		return "text"
	case events.KindAttachment:
		return "attachment"
	case events.KindPayload:
		return "payload"
	case events.KindLead:
		return "lead"
	case events.KindOptIn:
		return "optin"
	case events.KindRestart:
		return "restart"
	}
	return "unknown"
}
