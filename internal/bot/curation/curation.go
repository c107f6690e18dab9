// Package curation drives the style-curation flow: a short quick-reply
// funnel (who, occasion, budget) ending in an outfit card, plus the
// coupon promo and the product-launch notification opt-in.
package curation

import (
	"math/rand/v2"
	"strings"

	"github.com/garyellow/coast-messenger-go/internal/i18n"
	"github.com/garyellow/coast-messenger-go/internal/messenger"
	"github.com/garyellow/coast-messenger-go/internal/user"
)

const (
	PayloadCuration      = "CURATION"
	PayloadForMe         = "CURATION_FOR_ME"
	PayloadSomeoneElse   = "CURATION_SOMEONE_ELSE"
	PayloadOtherStyle    = "CURATION_OTHER_STYLE"
	PayloadSummerCoupon  = "SUMMER_COUPON"
	PayloadCoupon50      = "COUPON_50"
	PayloadProductLaunch = "PRODUCT_LAUNCH"

	occasionPrefix = "CURATION_OCASION_"
	budgetPrefix   = "CURATION_BUDGET_"

	// careSales hands the funnel over to the sales persona; the payload
	// router dispatches it to the care handler.
	careSales = "CARE_SALES"
)

var occasions = []string{"work", "party", "dinner"}

// Handler builds curation responses.
type Handler struct {
	tr      *i18n.Translator
	appURL  string
	shopURL string

	// randIndex picks a random outfit occasion; swapped in tests.
	randIndex func(n int) int
}

// New creates a curation handler.
func New(tr *i18n.Translator, appURL, shopURL string) *Handler {
	return &Handler{
		tr:        tr,
		appURL:    appURL,
		shopURL:   shopURL,
		randIndex: rand.IntN,
	}
}

// HandlePayload maps a curation payload to its response sequence.
func (h *Handler) HandlePayload(u *user.User, payload string) []*messenger.Message {
	switch {
	case payload == PayloadSummerCoupon:
		return h.summerCoupon(u)

	case payload == PayloadCoupon50:
		return h.couponApplied(u)

	case payload == PayloadCuration:
		return []*messenger.Message{messenger.NewQuickReply(h.tr.T("curation.prompt"),
			[]messenger.QuickReplyOption{
				{Title: h.tr.T("curation.me"), Payload: PayloadForMe},
				{Title: h.tr.T("curation.someone"), Payload: PayloadSomeoneElse},
			})}

	case payload == PayloadForMe || payload == PayloadSomeoneElse:
		return []*messenger.Message{messenger.NewQuickReply(h.tr.T("curation.occasion"),
			[]messenger.QuickReplyOption{
				{Title: h.tr.T("curation.work"), Payload: occasionPrefix + "WORK"},
				{Title: h.tr.T("curation.dinner"), Payload: occasionPrefix + "DINNER"},
				{Title: h.tr.T("curation.party"), Payload: occasionPrefix + "PARTY"},
				{Title: h.tr.T("curation.sales"), Payload: careSales},
			})}

	case strings.HasPrefix(payload, occasionPrefix):
		return h.budgetPrompt(payload)

	case strings.HasPrefix(payload, budgetPrefix):
		return h.outfitCard(u, payload)

	case payload == PayloadOtherStyle:
		outfit := h.randomOutfit(u)
		return []*messenger.Message{h.outfitTemplate(outfit, false)}

	case payload == PayloadProductLaunch:
		outfit := h.randomOutfit(u)
		return []*messenger.Message{messenger.NewRecurringNotificationsTemplate(
			h.appURL+"/looks/"+outfit+".jpg",
			h.tr.T("curation.productLaunchTitle"),
			"WEEKLY",
			"12345",
		)}

	default:
		return []*messenger.Message{messenger.NewText(h.tr.T("fallback.default"))}
	}
}

// summerCoupon promotes the seasonal coupon with an apply button.
func (h *Handler) summerCoupon(u *user.User) []*messenger.Message {
	return []*messenger.Message{
		messenger.NewText(h.tr.Get("leadgen.promo", map[string]string{"userFirstName": u.FirstName})),
		messenger.NewGenericTemplate(
			h.appURL+"/coupon.png",
			h.tr.T("leadgen.title"),
			h.tr.T("leadgen.subtitle"),
			[]messenger.Button{
				messenger.NewPostbackButton(h.tr.T("leadgen.apply"), PayloadCoupon50),
			},
		),
	}
}

// couponApplied confirms the coupon and shows a picked look.
func (h *Handler) couponApplied(u *user.User) []*messenger.Message {
	outfit := h.randomOutfit(u)
	card := h.outfitTemplate(outfit, true)
	return []*messenger.Message{
		messenger.NewText(h.tr.T("leadgen.coupon")),
		card,
	}
}

// budgetPrompt asks for a price range, carrying the chosen occasion
// into the budget payloads.
func (h *Handler) budgetPrompt(payload string) []*messenger.Message {
	occasion := strings.TrimPrefix(payload, occasionPrefix)
	return []*messenger.Message{messenger.NewQuickReply(h.tr.T("curation.price"),
		[]messenger.QuickReplyOption{
			{Title: "~ $20", Payload: budgetPrefix + "20_" + occasion},
			{Title: "~ $30", Payload: budgetPrefix + "30_" + occasion},
			{Title: "+ $50", Payload: budgetPrefix + "50_" + occasion},
		})}
}

// outfitCard resolves a CURATION_BUDGET_<amount>_<occasion> payload to
// the final outfit recommendation. Spenders in the top bracket also get
// a shortcut to the sales persona.
func (h *Handler) outfitCard(u *user.User, payload string) []*messenger.Message {
	parts := strings.Split(payload, "_")
	if len(parts) < 4 {
		return []*messenger.Message{messenger.NewText(h.tr.T("fallback.default"))}
	}
	budget := parts[2]
	occasion := strings.ToLower(parts[3])
	outfit := u.Gender + "-" + occasion

	return []*messenger.Message{h.genericOutfit(outfit, budget == "50")}
}

// outfitTemplate builds the outfit card for a random pick.
func (h *Handler) outfitTemplate(outfit string, withSales bool) *messenger.Message {
	return h.genericOutfit(outfit, withSales)
}

func (h *Handler) genericOutfit(outfit string, withSales bool) *messenger.Message {
	buttons := []messenger.Button{
		messenger.NewWebURLButton(h.tr.T("curation.shop"), h.shopURL+"/products/"+outfit),
		messenger.NewPostbackButton(h.tr.T("curation.show"), PayloadOtherStyle),
	}
	if withSales {
		buttons = append(buttons, messenger.NewPostbackButton(h.tr.T("curation.sales"), careSales))
	}

	return messenger.NewGenericTemplate(
		h.appURL+"/looks/"+outfit+".jpg",
		h.tr.T("curation.title"),
		h.tr.T("curation.subtitle"),
		buttons,
	)
}

// randomOutfit keys a look by the user's gender and a random occasion.
func (h *Handler) randomOutfit(u *user.User) string {
	return u.Gender + "-" + occasions[h.randIndex(len(occasions))]
}
