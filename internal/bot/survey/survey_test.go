package survey

import (
	"strings"
	"testing"

	"github.com/garyellow/coast-messenger-go/internal/i18n"
)

func TestAgentRating(t *testing.T) {
	t.Parallel()

	m := New(i18n.New("en_US")).AgentRating("Riandy")
	if !strings.Contains(m.Text, "Riandy") {
		t.Errorf("prompt should name the agent: %q", m.Text)
	}
	if len(m.QuickReplies) != 2 {
		t.Fatalf("quick replies = %d, want 2", len(m.QuickReplies))
	}
	if m.QuickReplies[0].Payload != PayloadAgentGood || m.QuickReplies[1].Payload != PayloadAgentBad {
		t.Errorf("rating payloads = %+v", m.QuickReplies)
	}
}

func TestHandlePayload_Acknowledges(t *testing.T) {
	t.Parallel()

	msgs := New(i18n.New("en_US")).HandlePayload("CSAT_SUGGESTION")
	if len(msgs) != 1 || msgs[0].Text == "" {
		t.Fatalf("CSAT payload should get a thanks text, got %+v", msgs)
	}
	if strings.Contains(msgs[0].Text, "CSAT") {
		t.Errorf("acknowledgment must not echo the payload: %q", msgs[0].Text)
	}
}
