// Package care routes customers to the right support team. Replies are
// sent through the team's persona so the conversation reads like a
// named agent picked it up, followed by an agent-rating survey prompt.
package care

import (
	"github.com/garyellow/coast-messenger-go/internal/i18n"
	"github.com/garyellow/coast-messenger-go/internal/messenger"
	"github.com/garyellow/coast-messenger-go/internal/persona"
	"github.com/garyellow/coast-messenger-go/internal/user"
)

const (
	PayloadHelp    = "CARE_HELP"
	PayloadOrder   = "CARE_ORDER"
	PayloadBilling = "CARE_BILLING"
	PayloadSales   = "CARE_SALES"
	PayloadOther   = "CARE_OTHER"
)

// RatingBuilder produces the post-conversation survey prompt.
// *survey.Handler satisfies this.
type RatingBuilder interface {
	AgentRating(agentFirstName string) *messenger.Message
}

// Handler builds customer care responses.
type Handler struct {
	tr       *i18n.Translator
	personas persona.Directory
	rating   RatingBuilder
}

// New creates a care handler.
func New(tr *i18n.Translator, personas persona.Directory, rating RatingBuilder) *Handler {
	return &Handler{tr: tr, personas: personas, rating: rating}
}

// HandlePayload maps a care payload to its response sequence.
func (h *Handler) HandlePayload(u *user.User, payload string) []*messenger.Message {
	switch payload {
	case PayloadHelp:
		return []*messenger.Message{h.menu(u)}

	case PayloadOrder:
		return h.personaIntro(u, persona.RoleOrder, "care.issue", h.tr.T("care.order"))

	case PayloadBilling:
		return h.personaIntro(u, persona.RoleBilling, "care.issue", h.tr.T("care.billing"))

	case PayloadSales:
		return h.personaIntro(u, persona.RoleSales, "care.style", "")

	case PayloadOther:
		return h.personaIntro(u, persona.RoleCare, "care.default", "")

	default:
		return []*messenger.Message{messenger.NewText(h.tr.T("fallback.default"))}
	}
}

// menu asks which team the user needs.
func (h *Handler) menu(u *user.User) *messenger.Message {
	return messenger.NewQuickReply(
		h.tr.Get("care.prompt", map[string]string{"userFirstName": u.FirstName}),
		[]messenger.QuickReplyOption{
			{Title: h.tr.T("care.order"), Payload: PayloadOrder},
			{Title: h.tr.T("care.billing"), Payload: PayloadBilling},
			{Title: h.tr.T("care.other"), Payload: PayloadOther},
		},
	)
}

// personaIntro greets as the team's persona, promises a close-out, and
// queues the rating survey.
func (h *Handler) personaIntro(u *user.User, role persona.Role, introKey, topic string) []*messenger.Message {
	p := h.personas.Lookup(role)

	vars := map[string]string{
		"userFirstName":  u.FirstName,
		"agentFirstName": p.Name,
	}
	if topic != "" {
		vars["topic"] = topic
	}

	return []*messenger.Message{
		messenger.NewTextWithPersona(h.tr.Get(introKey, vars), p.ID),
		messenger.NewTextWithPersona(h.tr.T("care.end"), p.ID),
		h.rating.AgentRating(p.Name),
	}
}

// Appointment responds to the store-appointment entry point.
func (h *Handler) Appointment() []*messenger.Message {
	return []*messenger.Message{
		messenger.NewText(h.tr.T("care.appointment")),
		messenger.NewText(h.tr.T("care.end")),
	}
}
