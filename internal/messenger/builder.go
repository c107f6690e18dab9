package messenger

// QuickReplyOption describes one quick reply choice for NewQuickReply.
type QuickReplyOption struct {
	Title    string
	Payload  string
	ImageURL string
}

// TruncateRunes truncates text to maxRunes runes, appending "..." when
// content was cut.
func TruncateRunes(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// NewText creates a plain text message.
func NewText(text string) *Message {
	if len([]rune(text)) > MaxTextLength {
		text = TruncateRunes(text, MaxTextLength)
	}
	return &Message{Text: text}
}

// NewTextWithPersona creates a text message delivered under the given
// persona. The persona id travels out of band and is promoted to the
// request envelope by the Graph client.
func NewTextWithPersona(text, personaID string) *Message {
	msg := NewText(text)
	msg.PersonaID = personaID
	return msg
}

// NewQuickReply creates a text message with quick reply options.
// API limit: max 13 quick replies, titles max 20 runes.
func NewQuickReply(text string, options []QuickReplyOption) *Message {
	if len(options) > MaxQuickReplyCount {
		options = options[:MaxQuickReplyCount]
	}

	replies := make([]QuickReply, len(options))
	for i, opt := range options {
		replies[i] = QuickReply{
			ContentType: "text",
			Title:       TruncateRunes(opt.Title, MaxQuickReplyTitleLength),
			Payload:     opt.Payload,
			ImageURL:    opt.ImageURL,
		}
	}

	msg := NewText(text)
	msg.QuickReplies = replies
	return msg
}

// NewGenericTemplate creates a single-element generic template card with
// buttons. API limit: max 3 buttons, title and subtitle max 80 runes.
func NewGenericTemplate(imageURL, title, subtitle string, buttons []Button) *Message {
	if len(buttons) > MaxButtonCount {
		buttons = buttons[:MaxButtonCount]
	}

	return &Message{
		Attachment: &Attachment{
			Type: "template",
			Payload: TemplatePayload{
				TemplateType: "generic",
				Elements: []Element{
					{
						Title:    TruncateRunes(title, MaxElementTitleLength),
						Subtitle: TruncateRunes(subtitle, MaxElementSubtitleLength),
						ImageURL: imageURL,
						Buttons:  buttons,
					},
				},
			},
		},
	}
}

// NewImageTemplate creates a buttonless generic template card, used to
// show an image with a caption.
func NewImageTemplate(imageURL, title, subtitle string) *Message {
	return &Message{
		Attachment: &Attachment{
			Type: "template",
			Payload: TemplatePayload{
				TemplateType: "generic",
				Elements: []Element{
					{
						Title:    TruncateRunes(title, MaxElementTitleLength),
						Subtitle: TruncateRunes(subtitle, MaxElementSubtitleLength),
						ImageURL: imageURL,
					},
				},
			},
		},
	}
}

// NewButtonTemplate creates a button template message.
// API limit: max 3 buttons, text max 640 runes.
func NewButtonTemplate(text string, buttons []Button) *Message {
	if len(buttons) > MaxButtonCount {
		buttons = buttons[:MaxButtonCount]
	}

	return &Message{
		Attachment: &Attachment{
			Type: "template",
			Payload: TemplatePayload{
				TemplateType: "button",
				Text:         TruncateRunes(text, MaxButtonTemplateText),
				Buttons:      buttons,
			},
		},
	}
}

// NewRecurringNotificationsTemplate creates an opt-in request for
// recurring notifications. The frequency must be DAILY, WEEKLY or
// MONTHLY; the payload is echoed back in the resulting opt-in event.
func NewRecurringNotificationsTemplate(imageURL, title, frequency, payload string) *Message {
	return &Message{
		Attachment: &Attachment{
			Type: "template",
			Payload: TemplatePayload{
				TemplateType:                  "notification_messages",
				Title:                         title,
				ImageURL:                      imageURL,
				NotificationMessagesFrequency: frequency,
				Payload:                       payload,
			},
		},
	}
}

// NewPostbackButton creates a button that posts its payload back to the
// webhook when tapped.
func NewPostbackButton(title, payload string) Button {
	return Button{
		Type:    "postback",
		Title:   TruncateRunes(title, MaxButtonTitleLength),
		Payload: payload,
	}
}

// NewWebURLButton creates a button that opens a URL in the Messenger
// webview. Messenger extensions are enabled so the page can close the
// webview and identify the user.
func NewWebURLButton(title, url string) Button {
	return Button{
		Type:                "web_url",
		Title:               TruncateRunes(title, MaxButtonTitleLength),
		URL:                 url,
		MessengerExtensions: true,
	}
}
