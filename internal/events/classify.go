package events

import (
	"fmt"
	"strings"

	apperrors "github.com/garyellow/coast-messenger-go/internal/errors"
)

// Kind discriminates what the processor should do with an event.
type Kind int

const (
	// KindText is a free-text message, subject to shortcut matching
	// before the text strategy runs.
	KindText Kind = iota

	// KindAttachment is a message carrying attachments and no routable
	// payload.
	KindAttachment

	// KindPayload routes through the payload rule table.
	KindPayload

	// KindLead dispatches directly to the lead handler, bypassing the
	// rule table.
	KindLead

	// KindOptIn routes through the rule table and additionally triggers
	// a delayed recurring notification send.
	KindOptIn

	// KindRestart restarts onboarding after a thread handover.
	KindRestart
)

// Classification is the outcome of inspecting one inbound event.
type Classification struct {
	Kind       Kind
	RoutingKey string

	// Text and GreetingConfidence are set for KindText.
	Text               string
	GreetingConfidence float64

	// NotificationToken is set for KindOptIn; the recurring message is
	// addressed to it instead of the sender id.
	NotificationToken string
}

// NormalizeKey trims and uppercases a routing key. An empty result
// means the event carries nothing routable.
func NormalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Classify inspects an event and returns what to do with it. Variants
// are checked in fixed priority order: message > postback > referral >
// optin > pass_thread_control. Events with nothing to act on (receipts,
// echoes, empty payloads, handovers addressed elsewhere) return an
// error satisfying errors.Is(err, apperrors.ErrIgnoredEvent).
//
// appID is this application's id; leadGenAppID identifies the lead
// generation integration whose handovers are handled via the referral
// path instead.
func Classify(ev *Event, appID, leadGenAppID string) (Classification, error) {
	switch {
	case len(ev.Read) > 0:
		return Classification{}, ignore("read receipt")
	case len(ev.Delivery) > 0:
		return Classification{}, ignore("delivery receipt")
	case ev.Message != nil && ev.Message.IsEcho:
		return Classification{}, ignore("echo of own send")
	}

	switch {
	case ev.Message != nil:
		return classifyMessage(ev.Message)
	case ev.Postback != nil:
		return classifyPostback(ev.Postback)
	case ev.Referral != nil:
		return classifyReferral(ev.Referral)
	case ev.OptIn != nil:
		return classifyOptIn(ev.OptIn)
	case ev.PassThreadControl != nil:
		return classifyHandover(ev.PassThreadControl, appID, leadGenAppID)
	}

	return Classification{}, ignore("no recognized variant")
}

// classifyMessage applies the in-message priority: quick_reply >
// attachments > text.
func classifyMessage(msg *Message) (Classification, error) {
	switch {
	case msg.QuickReply != nil:
		key := NormalizeKey(msg.QuickReply.Payload)
		if key == "" {
			return Classification{}, ignore("quick reply with empty payload")
		}
		return Classification{Kind: KindPayload, RoutingKey: key}, nil

	case len(msg.Attachments) > 0:
		return Classification{Kind: KindAttachment}, nil

	case strings.TrimSpace(msg.Text) != "":
		c := Classification{Kind: KindText, Text: msg.Text}
		if greeting := msg.FirstEntity("greetings"); greeting != nil {
			c.GreetingConfidence = greeting.Confidence
		}
		return c, nil
	}

	return Classification{}, ignore("message with no content")
}

// classifyPostback prefers the referral ref over the button payload
// when the tap came through an m.me link.
func classifyPostback(pb *Postback) (Classification, error) {
	source := pb.Payload
	if pb.Referral != nil && pb.Referral.Type == "OPEN_THREAD" {
		source = pb.Referral.Ref
	}

	key := NormalizeKey(source)
	if key == "" {
		return Classification{}, ignore("postback with empty payload")
	}
	return Classification{Kind: KindPayload, RoutingKey: key}, nil
}

func classifyReferral(ref *Referral) (Classification, error) {
	switch ref.Type {
	case "LEAD_COMPLETE", "LEAD_INCOMPLETE":
		return Classification{Kind: KindLead, RoutingKey: ref.Type}, nil

	case "OPEN_THREAD":
		key := NormalizeKey(ref.Ref)
		if key == "" {
			return Classification{}, ignore("referral with empty ref")
		}
		return Classification{Kind: KindPayload, RoutingKey: key}, nil
	}

	return Classification{}, ignore(fmt.Sprintf("unsupported referral type %q", ref.Type))
}

func classifyOptIn(optin *OptIn) (Classification, error) {
	if optin.Type != "notification_messages" {
		return Classification{}, ignore(fmt.Sprintf("unsupported optin type %q", optin.Type))
	}

	return Classification{
		Kind:              KindOptIn,
		RoutingKey:        "RN_" + NormalizeKey(optin.NotificationMessagesFrequency),
		NotificationToken: optin.NotificationMessagesToken,
	}, nil
}

func classifyHandover(ptc *PassThreadControl, appID, leadGenAppID string) (Classification, error) {
	if ptc.NewOwnerAppID.String() == appID {
		return Classification{}, ignore("handover not addressed to this app")
	}
	if ptc.PreviousOwnerAppID.String() == leadGenAppID {
		// The lead generation integration also emits a referral event;
		// act on that one instead.
		return Classification{}, ignore("handover from lead generation integration")
	}
	return Classification{Kind: KindRestart, RoutingKey: "GET_STARTED"}, nil
}

func ignore(reason string) error {
	return fmt.Errorf("%w: %s", apperrors.ErrIgnoredEvent, reason)
}
