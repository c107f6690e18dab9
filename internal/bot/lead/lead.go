// Package lead handles the wholesale lead-generation flow: the ad
// entry point, the qualifying question, and the follow-up sent when a
// lead form completes. Qualified leads are reported back to the app
// events API for ad attribution.
package lead

import (
	"context"
	"log/slog"
	"time"

	"github.com/garyellow/coast-messenger-go/internal/i18n"
	"github.com/garyellow/coast-messenger-go/internal/messenger"
	"github.com/garyellow/coast-messenger-go/internal/persona"
	"github.com/garyellow/coast-messenger-go/internal/user"
)

const (
	PayloadAd  = "WHOLESALE_LEAD_AD"
	PayloadYes = "WHOLESALE_LEAD_YES"
	PayloadNo  = "WHOLESALE_LEAD_NO"

	ReferralComplete   = "LEAD_COMPLETE"
	ReferralIncomplete = "LEAD_INCOMPLETE"
)

// Reporter sends the lead-submitted app event. *graph.Client satisfies
// this.
type Reporter interface {
	ReportLeadSubmitted(ctx context.Context, psid string) error
}

// NuxFunc builds the onboarding sequence, injected to keep this package
// independent of the router.
type NuxFunc func(u *user.User) []*messenger.Message

// Handler builds wholesale lead responses.
type Handler struct {
	tr       *i18n.Translator
	personas persona.Directory
	reporter Reporter
	nux      NuxFunc
}

// New creates a lead handler.
func New(tr *i18n.Translator, personas persona.Directory, reporter Reporter, nux NuxFunc) *Handler {
	return &Handler{tr: tr, personas: personas, reporter: reporter, nux: nux}
}

// HandleReferral responds to a lead form referral. Incomplete forms get
// no reply; the user abandoned the flow.
func (h *Handler) HandleReferral(u *user.User, referralType string) []*messenger.Message {
	if referralType == ReferralComplete {
		return h.leadComplete(u)
	}
	return nil
}

// HandlePayload maps a wholesale lead payload to its response sequence.
func (h *Handler) HandlePayload(ctx context.Context, u *user.User, payload string) []*messenger.Message {
	switch payload {
	case PayloadAd:
		return []*messenger.Message{
			messenger.NewText(h.tr.Get("wholesale_leadgen.lead_intro",
				map[string]string{"userFirstName": u.FirstName})),
			messenger.NewQuickReply(h.tr.T("wholesale_leadgen.lead_question"),
				[]messenger.QuickReplyOption{
					{Title: h.tr.T("common.yes"), Payload: PayloadYes},
					{Title: h.tr.T("common.no"), Payload: PayloadNo},
				}),
		}

	case PayloadYes:
		if err := h.reporter.ReportLeadSubmitted(ctx, u.PSID); err != nil {
			slog.WarnContext(ctx, "lead submitted event failed", "psid", u.PSID, "error", err)
		}
		msgs := []*messenger.Message{
			messenger.NewText(h.tr.T("wholesale_leadgen.lead_qualified")),
		}
		return append(msgs, h.leadComplete(u)...)

	case PayloadNo:
		msgs := []*messenger.Message{
			messenger.NewText(h.tr.T("wholesale_leadgen.lead_disqualified")),
		}
		return append(msgs, h.nux(u)...)

	default:
		return []*messenger.Message{messenger.NewText(h.tr.T("fallback.default"))}
	}
}

// leadComplete is the sales persona follow-up after a submitted lead
// form. The delays leave room for the platform's own form confirmation
// to land first.
func (h *Handler) leadComplete(u *user.User) []*messenger.Message {
	p := h.personas.Lookup(persona.RoleSales)

	intro := messenger.NewTextWithPersona(h.tr.Get("wholesale_leadgen.intro", map[string]string{
		"userFirstName":  u.FirstName,
		"agentFirstName": p.Name,
		"topic":          h.tr.T("care.order"),
	}), p.ID).WithDelay(4 * time.Second)

	closing := messenger.NewTextWithPersona(h.tr.T("care.end"), p.ID).WithDelay(6 * time.Second)

	return []*messenger.Message{intro, closing}
}
