// Package messenger provides types and builders for Messenger Send API messages.
package messenger

import "time"

// Message is a single Send API message body. Delay and PersonaID are
// delivery instructions consumed by the scheduler and the Graph client;
// they never appear on the wire.
type Message struct {
	Text         string       `json:"text,omitempty"`
	Attachment   *Attachment  `json:"attachment,omitempty"`
	QuickReplies []QuickReply `json:"quick_replies,omitempty"`

	// Delay overrides the default stagger for this message when positive.
	Delay time.Duration `json:"-"`

	// PersonaID is promoted to the request envelope at send time.
	PersonaID string `json:"-"`
}

// QuickReply is a tappable suggestion pinned under a message.
type QuickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title,omitempty"`
	Payload     string `json:"payload,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Attachment wraps a template or media payload.
type Attachment struct {
	Type    string          `json:"type"`
	Payload TemplatePayload `json:"payload"`
}

// TemplatePayload covers the template types the bot sends. Fields not
// used by a given template type are omitted from the JSON output.
type TemplatePayload struct {
	TemplateType string    `json:"template_type,omitempty"`
	Text         string    `json:"text,omitempty"`
	Title        string    `json:"title,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	Payload      string    `json:"payload,omitempty"`
	Buttons      []Button  `json:"buttons,omitempty"`
	Elements     []Element `json:"elements,omitempty"`

	// Recurring notifications template only.
	NotificationMessagesFrequency string `json:"notification_messages_frequency,omitempty"`

	// Media attachments only.
	URL        string `json:"url,omitempty"`
	IsReusable bool   `json:"is_reusable,omitempty"`
}

// Element is a card in a generic template.
type Element struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
	Buttons  []Button `json:"buttons,omitempty"`
}

// Button is a postback or web_url button.
type Button struct {
	Type                string `json:"type"`
	Title               string `json:"title"`
	Payload             string `json:"payload,omitempty"`
	URL                 string `json:"url,omitempty"`
	WebviewHeightRatio  string `json:"webview_height_ratio,omitempty"`
	MessengerExtensions bool   `json:"messenger_extensions,omitempty"`
}

// WithDelay sets a per-message delivery delay and returns the message
// for chaining.
func (m *Message) WithDelay(d time.Duration) *Message {
	m.Delay = d
	return m
}
