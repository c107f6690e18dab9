package messenger

// Messenger Send API limits (rune count)
// Reference: https://developers.facebook.com/docs/messenger-platform/reference/send-api/
const (
	MaxTextLength = 2000 // Text message max content length

	// Quick Reply Limits
	MaxQuickReplyCount       = 13 // Max quick replies per message
	MaxQuickReplyTitleLength = 20 // Max title length for a quick reply

	// Template Limits
	MaxButtonCount           = 3   // Max buttons per template or element
	MaxButtonTitleLength     = 20  // Max button title length
	MaxElementCount          = 10  // Max elements in a generic template
	MaxElementTitleLength    = 80  // Generic template element title
	MaxElementSubtitleLength = 80  // Generic template element subtitle
	MaxButtonTemplateText    = 640 // Button template text length
)
