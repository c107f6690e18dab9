// Package events defines the inbound webhook event model and the
// classifier that turns raw events into routing decisions.
package events

import "encoding/json"

// Body is the top-level webhook delivery. Object must be "page" for
// messaging events.
type Body struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry groups the events delivered for one page. Changes carries page
// subscription updates (feed posts/comments) which this bot does not
// act on.
type Entry struct {
	ID        string   `json:"id"`
	Time      int64    `json:"time"`
	Messaging []Event  `json:"messaging"`
	Changes   []Change `json:"changes,omitempty"`
}

// Change is a page subscription field update.
type Change struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// Event is the inbound messaging event union. Exactly one of the
// variant pointers should be set; classification checks them in a fixed
// priority order in case a malformed event sets more than one.
type Event struct {
	Sender    Sender    `json:"sender"`
	Recipient Recipient `json:"recipient"`
	Timestamp int64     `json:"timestamp"`

	Message           *Message           `json:"message,omitempty"`
	Postback          *Postback          `json:"postback,omitempty"`
	Referral          *Referral          `json:"referral,omitempty"`
	OptIn             *OptIn             `json:"optin,omitempty"`
	PassThreadControl *PassThreadControl `json:"pass_thread_control,omitempty"`

	Read     json.RawMessage `json:"read,omitempty"`
	Delivery json.RawMessage `json:"delivery,omitempty"`
}

// Sender identifies the message source. ID is the page-scoped user id;
// UserRef is set instead for chat plugin guest users that have no id
// yet.
type Sender struct {
	ID      string `json:"id,omitempty"`
	UserRef string `json:"user_ref,omitempty"`
}

// Recipient is the page the event was sent to.
type Recipient struct {
	ID string `json:"id,omitempty"`
}

// Message is an inbound user message.
type Message struct {
	MID         string       `json:"mid,omitempty"`
	Text        string       `json:"text,omitempty"`
	IsEcho      bool         `json:"is_echo,omitempty"`
	QuickReply  *QuickReply  `json:"quick_reply,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	NLP         *NLP         `json:"nlp,omitempty"`
}

// QuickReply is the payload of a tapped quick reply chip.
type QuickReply struct {
	Payload string `json:"payload"`
}

// Attachment is an inbound media or file attachment.
type Attachment struct {
	Type    string `json:"type"`
	Payload struct {
		URL string `json:"url,omitempty"`
	} `json:"payload"`
}

// NLP carries built-in NLP annotations attached to a text message.
type NLP struct {
	Entities map[string][]Entity `json:"entities,omitempty"`
}

// Entity is a single NLP entity detection.
type Entity struct {
	Value      string  `json:"value,omitempty"`
	Confidence float64 `json:"confidence"`
}

// FirstEntity returns the highest-ranked detection for the named entity,
// or nil when absent.
func (m *Message) FirstEntity(name string) *Entity {
	if m == nil || m.NLP == nil {
		return nil
	}
	detections := m.NLP.Entities[name]
	if len(detections) == 0 {
		return nil
	}
	return &detections[0]
}

// Postback is a tapped postback button. Referral is present when the
// tap originated from an m.me link or ad.
type Postback struct {
	Title    string    `json:"title,omitempty"`
	Payload  string    `json:"payload,omitempty"`
	Referral *Referral `json:"referral,omitempty"`
}

// Referral carries the entry-point context for a conversation.
type Referral struct {
	Ref         string `json:"ref,omitempty"`
	Source      string `json:"source,omitempty"`
	Type        string `json:"type,omitempty"`
	IsGuestUser bool   `json:"is_guest_user,omitempty"`
}

// OptIn is a notification opt-in event.
type OptIn struct {
	Type                          string `json:"type,omitempty"`
	Payload                       string `json:"payload,omitempty"`
	NotificationMessagesFrequency string `json:"notification_messages_frequency,omitempty"`
	NotificationMessagesToken     string `json:"notification_messages_token,omitempty"`
	NotificationMessagesStatus    string `json:"notification_messages_status,omitempty"`
	TokenExpiryTimestamp          int64  `json:"token_expiry_timestamp,omitempty"`
}

// PassThreadControl is a handover protocol event. App ids arrive as
// JSON numbers.
type PassThreadControl struct {
	NewOwnerAppID      json.Number `json:"new_owner_app_id,omitempty"`
	PreviousOwnerAppID json.Number `json:"previous_owner_app_id,omitempty"`
	Metadata           string      `json:"metadata,omitempty"`
}

// IsGuestUser reports whether the event came from a chat plugin guest
// user that has no durable page-scoped id yet.
func (e *Event) IsGuestUser() bool {
	if e.Sender.UserRef != "" && e.Sender.ID == "" {
		return true
	}
	return e.Postback != nil && e.Postback.Referral != nil && e.Postback.Referral.IsGuestUser
}

// SenderKey returns the identifier used to key the user registry: the
// page-scoped id when present, the user_ref otherwise.
func (e *Event) SenderKey() string {
	if e.Sender.ID != "" {
		return e.Sender.ID
	}
	return e.Sender.UserRef
}
