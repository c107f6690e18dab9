// Package order handles the order-tracking flow. There is no real
// order system behind it; lookups resolve to a sample status card.
package order

import (
	"github.com/garyellow/coast-messenger-go/internal/i18n"
	"github.com/garyellow/coast-messenger-go/internal/messenger"
	"github.com/garyellow/coast-messenger-go/internal/user"
)

const (
	PayloadTrack  = "TRACK_ORDER"
	PayloadSearch = "SEARCH_ORDER"
	PayloadNumber = "ORDER_NUMBER"
	PayloadLink   = "LINK_ORDER"

	// careOrder escalates to the order-team persona via the care handler.
	careOrder = "CARE_ORDER"
)

// Handler builds order-tracking responses.
type Handler struct {
	tr     *i18n.Translator
	appURL string
}

// New creates an order handler.
func New(tr *i18n.Translator, appURL string) *Handler {
	return &Handler{tr: tr, appURL: appURL}
}

// HandlePayload maps an order payload to its response sequence.
func (h *Handler) HandlePayload(_ *user.User, payload string) []*messenger.Message {
	switch payload {
	case PayloadTrack:
		return []*messenger.Message{messenger.NewQuickReply(h.tr.T("order.prompt"),
			[]messenger.QuickReplyOption{
				{Title: h.tr.T("order.account"), Payload: PayloadLink},
				{Title: h.tr.T("order.search"), Payload: PayloadSearch},
				{Title: h.tr.T("menu.help"), Payload: careOrder},
			})}

	case PayloadSearch:
		return []*messenger.Message{messenger.NewText(h.tr.T("order.number"))}

	case PayloadNumber:
		return []*messenger.Message{h.statusCard()}

	case PayloadLink:
		return []*messenger.Message{
			messenger.NewText(h.tr.T("order.dialog")),
			messenger.NewText(h.tr.T("order.searching")),
			h.statusCard(),
		}

	default:
		return []*messenger.Message{messenger.NewText(h.tr.T("fallback.default"))}
	}
}

func (h *Handler) statusCard() *messenger.Message {
	return messenger.NewImageTemplate(h.appURL+"/order.png", h.tr.T("order.status"), "")
}
