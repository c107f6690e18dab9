package events

import (
	"encoding/json"
	"errors"
	"testing"

	apperrors "github.com/garyellow/coast-messenger-go/internal/errors"
)

const (
	testAppID        = "123456789"
	testLeadGenAppID = "413038776280800"
)

func classify(t *testing.T, ev *Event) Classification {
	t.Helper()
	c, err := Classify(ev, testAppID, testLeadGenAppID)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	return c
}

func assertIgnored(t *testing.T, ev *Event) {
	t.Helper()
	_, err := Classify(ev, testAppID, testLeadGenAppID)
	if !errors.Is(err, apperrors.ErrIgnoredEvent) {
		t.Fatalf("expected ignored event, got %v", err)
	}
}

func TestClassify_Receipts(t *testing.T) {
	t.Parallel()

	assertIgnored(t, &Event{Read: json.RawMessage(`{"watermark":1}`)})
	assertIgnored(t, &Event{Delivery: json.RawMessage(`{"watermark":1}`)})
	assertIgnored(t, &Event{Message: &Message{Text: "hi", IsEcho: true}})
}

func TestClassify_Text(t *testing.T) {
	t.Parallel()

	c := classify(t, &Event{Message: &Message{Text: "where is my order?"}})
	if c.Kind != KindText {
		t.Errorf("Kind = %v, want KindText", c.Kind)
	}
	if c.Text != "where is my order?" {
		t.Errorf("Text = %q", c.Text)
	}
}

func TestClassify_TextGreetingConfidence(t *testing.T) {
	t.Parallel()

	ev := &Event{Message: &Message{
		Text: "hello there",
		NLP: &NLP{Entities: map[string][]Entity{
			"greetings": {{Value: "true", Confidence: 0.99}},
		}},
	}}

	c := classify(t, ev)
	if c.GreetingConfidence != 0.99 {
		t.Errorf("GreetingConfidence = %v, want 0.99", c.GreetingConfidence)
	}
}

func TestClassify_MessagePriority(t *testing.T) {
	t.Parallel()

	// Quick reply wins over attachments and text on a malformed event.
	ev := &Event{Message: &Message{
		Text:        "also has text",
		QuickReply:  &QuickReply{Payload: "care_help"},
		Attachments: []Attachment{{Type: "image"}},
	}}

	c := classify(t, ev)
	if c.Kind != KindPayload {
		t.Fatalf("Kind = %v, want KindPayload", c.Kind)
	}
	if c.RoutingKey != "CARE_HELP" {
		t.Errorf("RoutingKey = %q, want CARE_HELP", c.RoutingKey)
	}
}

func TestClassify_Attachment(t *testing.T) {
	t.Parallel()

	c := classify(t, &Event{Message: &Message{Attachments: []Attachment{{Type: "image"}}}})
	if c.Kind != KindAttachment {
		t.Errorf("Kind = %v, want KindAttachment", c.Kind)
	}
}

func TestClassify_Postback(t *testing.T) {
	t.Parallel()

	c := classify(t, &Event{Postback: &Postback{Payload: " get_started "}})
	if c.Kind != KindPayload || c.RoutingKey != "GET_STARTED" {
		t.Errorf("got %v/%q, want KindPayload/GET_STARTED", c.Kind, c.RoutingKey)
	}

	// OPEN_THREAD referral ref wins over the button payload.
	c = classify(t, &Event{Postback: &Postback{
		Payload:  "GET_STARTED",
		Referral: &Referral{Type: "OPEN_THREAD", Ref: "chat-plugin"},
	}})
	if c.RoutingKey != "CHAT-PLUGIN" {
		t.Errorf("RoutingKey = %q, want CHAT-PLUGIN", c.RoutingKey)
	}

	assertIgnored(t, &Event{Postback: &Postback{Payload: "   "}})
}

func TestClassify_Referral(t *testing.T) {
	t.Parallel()

	c := classify(t, &Event{Referral: &Referral{Type: "LEAD_COMPLETE"}})
	if c.Kind != KindLead || c.RoutingKey != "LEAD_COMPLETE" {
		t.Errorf("got %v/%q, want KindLead/LEAD_COMPLETE", c.Kind, c.RoutingKey)
	}

	c = classify(t, &Event{Referral: &Referral{Type: "OPEN_THREAD", Ref: "summer_coupon"}})
	if c.Kind != KindPayload || c.RoutingKey != "SUMMER_COUPON" {
		t.Errorf("got %v/%q, want KindPayload/SUMMER_COUPON", c.Kind, c.RoutingKey)
	}

	assertIgnored(t, &Event{Referral: &Referral{Type: "OPEN_THREAD", Ref: " "}})
	assertIgnored(t, &Event{Referral: &Referral{Type: "ADS"}})
}

func TestClassify_OptIn(t *testing.T) {
	t.Parallel()

	c := classify(t, &Event{OptIn: &OptIn{
		Type:                          "notification_messages",
		NotificationMessagesFrequency: "weekly",
		NotificationMessagesToken:     "token-abc",
	}})
	if c.Kind != KindOptIn {
		t.Fatalf("Kind = %v, want KindOptIn", c.Kind)
	}
	if c.RoutingKey != "RN_WEEKLY" {
		t.Errorf("RoutingKey = %q, want RN_WEEKLY", c.RoutingKey)
	}
	if c.NotificationToken != "token-abc" {
		t.Errorf("NotificationToken = %q", c.NotificationToken)
	}

	assertIgnored(t, &Event{OptIn: &OptIn{Type: "one_time_notif_req"}})
}

func TestClassify_Handover(t *testing.T) {
	t.Parallel()

	// Addressed to this app: the other side is taking over, nothing to do.
	assertIgnored(t, &Event{PassThreadControl: &PassThreadControl{
		NewOwnerAppID: json.Number(testAppID),
	}})

	// From the lead generation integration: referral path handles it.
	assertIgnored(t, &Event{PassThreadControl: &PassThreadControl{
		NewOwnerAppID:      json.Number("999"),
		PreviousOwnerAppID: json.Number(testLeadGenAppID),
	}})

	// Handed back from any other app: restart onboarding.
	c := classify(t, &Event{PassThreadControl: &PassThreadControl{
		NewOwnerAppID:      json.Number("999"),
		PreviousOwnerAppID: json.Number("888"),
	}})
	if c.Kind != KindRestart || c.RoutingKey != "GET_STARTED" {
		t.Errorf("got %v/%q, want KindRestart/GET_STARTED", c.Kind, c.RoutingKey)
	}
}

func TestClassify_EmptyEvent(t *testing.T) {
	t.Parallel()
	assertIgnored(t, &Event{})
}

func TestEvent_SenderKey(t *testing.T) {
	t.Parallel()

	ev := &Event{Sender: Sender{ID: "psid-1"}}
	if ev.SenderKey() != "psid-1" {
		t.Errorf("SenderKey = %q", ev.SenderKey())
	}
	if ev.IsGuestUser() {
		t.Error("event with psid should not be guest")
	}

	guest := &Event{Sender: Sender{UserRef: "ref-1"}}
	if guest.SenderKey() != "ref-1" {
		t.Errorf("SenderKey = %q", guest.SenderKey())
	}
	if !guest.IsGuestUser() {
		t.Error("user_ref-only event should be guest")
	}
}

func TestBody_Unmarshal(t *testing.T) {
	t.Parallel()

	raw := `{
		"object": "page",
		"entry": [{
			"id": "page-1",
			"time": 1700000000,
			"messaging": [{
				"sender": {"id": "psid-1"},
				"recipient": {"id": "page-1"},
				"timestamp": 1700000000,
				"message": {"mid": "m1", "text": "hello"}
			}]
		}]
	}`

	var body Body
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Object != "page" {
		t.Errorf("Object = %q", body.Object)
	}
	if len(body.Entry) != 1 || len(body.Entry[0].Messaging) != 1 {
		t.Fatal("entry/messaging not decoded")
	}
	if body.Entry[0].Messaging[0].Message.Text != "hello" {
		t.Errorf("Text = %q", body.Entry[0].Messaging[0].Message.Text)
	}
}
