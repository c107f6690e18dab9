package order

import (
	"testing"

	"github.com/garyellow/coast-messenger-go/internal/i18n"
	"github.com/garyellow/coast-messenger-go/internal/user"
)

func newTestHandler() *Handler {
	return New(i18n.New("en_US"), "https://oc.example.com")
}

func TestHandlePayload_TrackMenu(t *testing.T) {
	t.Parallel()

	msgs := newTestHandler().HandlePayload(user.New("psid-1"), PayloadTrack)
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs))
	}
	qrs := msgs[0].QuickReplies
	if len(qrs) != 3 {
		t.Fatalf("quick replies = %d, want 3", len(qrs))
	}
	want := []string{PayloadLink, PayloadSearch, careOrder}
	for i, qr := range qrs {
		if qr.Payload != want[i] {
			t.Errorf("quick reply[%d] = %q, want %q", i, qr.Payload, want[i])
		}
	}
}

func TestHandlePayload_SearchAsksForNumber(t *testing.T) {
	t.Parallel()

	msgs := newTestHandler().HandlePayload(user.New("psid-1"), PayloadSearch)
	if len(msgs) != 1 || msgs[0].Text == "" {
		t.Fatalf("search should reply with a plain question, got %+v", msgs)
	}
}

func TestHandlePayload_NumberShowsStatusCard(t *testing.T) {
	t.Parallel()

	msgs := newTestHandler().HandlePayload(user.New("psid-1"), PayloadNumber)
	if len(msgs) != 1 || msgs[0].Attachment == nil {
		t.Fatalf("order number should reply with a status card")
	}
	el := msgs[0].Attachment.Payload.Elements
	if len(el) != 1 || el[0].ImageURL != "https://oc.example.com/order.png" {
		t.Errorf("status card elements = %+v", el)
	}
	if len(el[0].Buttons) != 0 {
		t.Errorf("status card should be buttonless, got %d buttons", len(el[0].Buttons))
	}
}

func TestHandlePayload_LinkAccount(t *testing.T) {
	t.Parallel()

	msgs := newTestHandler().HandlePayload(user.New("psid-1"), PayloadLink)
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want thanks + searching + card", len(msgs))
	}
	if msgs[2].Attachment == nil {
		t.Error("final message should be the status card")
	}
}

func TestHandlePayload_Unknown(t *testing.T) {
	t.Parallel()

	msgs := newTestHandler().HandlePayload(user.New("psid-1"), "REORDER_WIDGET")
	if len(msgs) != 1 || msgs[0].Attachment != nil {
		t.Fatalf("unknown order payload should get the generic fallback")
	}
}
