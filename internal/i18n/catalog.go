package i18n

// enUS is the default response catalog. Keys use dot notation grouped by
// conversation flow. Placeholders use {name} syntax and are substituted
// by Translator.Get.
var enUS = map[string]string{
	// Messenger profile
	"profile.greeting": "Hi {userFirstName}! Tap 'Get Started' and we'll find the styles that fit you best.",

	// New user experience
	"get_started.welcome":  "Hi {userFirstName}! Welcome to Original Coast Clothing, where we care about you and your clothes! 🏝",
	"get_started.guidance": "To request help at any time, just type \"#help\".",
	"get_started.help":     "Let us know how we can help you:",

	// Menu titles
	"menu.suggestion":     "Style curation",
	"menu.help":           "Talk to an agent",
	"menu.product_launch": "Product launch",
	"menu.shop":           "Shop now",
	"menu.order":          "Track my order",
	"menu.start_over":     "Start over",

	// Common answers
	"common.yes": "Yes!",
	"common.no":  "No",

	// Style curation flow
	"curation.prompt":             "Who are you shopping for?",
	"curation.me":                 "Myself",
	"curation.someone":            "Someone else",
	"curation.occasion":           "What sort of occasion is it?",
	"curation.work":               "Work",
	"curation.dinner":             "Dinner",
	"curation.party":              "Party",
	"curation.sales":              "Talk to sales",
	"curation.price":              "How much would you like to spend?",
	"curation.title":              "An outfit tailored for you",
	"curation.subtitle":           "Based on your choices, we think you'll love this look.",
	"curation.shop":               "Shop now",
	"curation.show":               "Show me another",
	"curation.productLaunchTitle": "Get updates on our next product launch",

	// Customer care flow
	"care.help":        "Help",
	"care.prompt":      "{userFirstName}, what do you need help with?",
	"care.order":       "An order",
	"care.billing":     "Billing",
	"care.other":       "Something else",
	"care.issue":       "{userFirstName}, this is {agentFirstName} from the {topic} team. How can I help you?",
	"care.style":       "{userFirstName}, this is {agentFirstName}, your personal stylist. How can I help you?",
	"care.default":     "{userFirstName}, this is {agentFirstName} from customer care. How can I help you?",
	"care.end":         "When you are done, just let me know and I'll close this conversation.",
	"care.appointment": "We'd love to see you! You can book an appointment with one of our stylists at a store near you.",

	// Order flow
	"order.prompt":    "What would you like to do?",
	"order.account":   "Link my account",
	"order.search":    "Find my order",
	"order.number":    "Could you give me your order number?",
	"order.status":    "Here is the status of your order",
	"order.dialog":    "Thanks for linking your account!",
	"order.searching": "One second while I look up your most recent order...",

	// Agent rating survey
	"survey.prompt":      "How would you rate your conversation with {agentFirstName}?",
	"survey.rating.good": "Good 👍",
	"survey.rating.bad":  "Bad 👎",
	"survey.thanks":      "Thanks for your feedback, it helps us improve!",

	// Chat plugin entry point
	"chat_plugin.prompt": "Thanks for reaching out! What can we help you with today?",

	// Fallbacks
	"fallback.any":        "Sorry, I'm not sure how to respond to \"{message}\".",
	"fallback.attachment": "Thanks for the attachment! Is there anything we can help you with?",
	"fallback.default":    "We can't respond to this right now, but an agent will follow up shortly.",
	"fallback.error":      "An error has occurred: '{error}'. We have been notified and will fix the issue shortly!",

	// Coupon lead generation
	"leadgen.promo":    "{userFirstName}, it's your lucky day! We have a special offer for you.",
	"leadgen.title":    "50% off your next purchase",
	"leadgen.subtitle": "Claim this exclusive coupon for our summer collection",
	"leadgen.apply":    "Apply coupon",
	"leadgen.coupon":   "Your coupon has been applied! Here is a look we picked for you:",

	// Wholesale lead generation
	"wholesale_leadgen.intro":              "{userFirstName}, this is {agentFirstName} from the {topic} team. Thanks for your interest in buying wholesale. I'll be in touch shortly!",
	"wholesale_leadgen.lead_intro":         "Hi {userFirstName}, thanks for your interest in our wholesale program!",
	"wholesale_leadgen.lead_question":      "Do you own a retail store?",
	"wholesale_leadgen.lead_qualified":     "Great! One of our wholesale agents will reach out to you shortly.",
	"wholesale_leadgen.lead_disqualified": "Thanks for letting us know! Our wholesale program is currently limited to retail stores, but you can still enjoy our full collection.",
}

// catalogs maps supported locales to their string tables. Adding a locale
// means adding a table here and its tag to supportedTags in i18n.go.
var catalogs = map[string]map[string]string{
	"en-US": enUS,
}
