package lead

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/garyellow/coast-messenger-go/internal/i18n"
	"github.com/garyellow/coast-messenger-go/internal/messenger"
	"github.com/garyellow/coast-messenger-go/internal/persona"
	"github.com/garyellow/coast-messenger-go/internal/user"
)

type fakeReporter struct {
	calls []string
	err   error
}

func (f *fakeReporter) ReportLeadSubmitted(_ context.Context, psid string) error {
	f.calls = append(f.calls, psid)
	return f.err
}

func newTestHandler(reporter *fakeReporter) *Handler {
	tr := i18n.New("en_US")
	personas := persona.StaticDirectory{
		persona.RoleSales: {Role: persona.RoleSales, Name: "Jorge", ID: "p-sales"},
	}
	nux := func(*user.User) []*messenger.Message {
		return []*messenger.Message{messenger.NewText("welcome"), messenger.NewText("guidance")}
	}
	return New(tr, personas, reporter, nux)
}

func testUser() *user.User {
	u := user.New("psid-1")
	u.FirstName = "Sam"
	return u
}

func TestHandleReferral_Complete(t *testing.T) {
	t.Parallel()

	msgs := newTestHandler(&fakeReporter{}).HandleReferral(testUser(), ReferralComplete)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want intro + closing", len(msgs))
	}
	if msgs[0].Delay != 4*time.Second || msgs[1].Delay != 6*time.Second {
		t.Errorf("delays = %v/%v, want 4s/6s", msgs[0].Delay, msgs[1].Delay)
	}
	if msgs[0].PersonaID != "p-sales" || msgs[1].PersonaID != "p-sales" {
		t.Errorf("persona ids = %q/%q, want p-sales", msgs[0].PersonaID, msgs[1].PersonaID)
	}
	if !strings.Contains(msgs[0].Text, "Jorge") {
		t.Errorf("intro should name the sales agent: %q", msgs[0].Text)
	}
}

func TestHandleReferral_IncompleteIsSilent(t *testing.T) {
	t.Parallel()

	if msgs := newTestHandler(&fakeReporter{}).HandleReferral(testUser(), ReferralIncomplete); msgs != nil {
		t.Errorf("incomplete lead should get no reply, got %d messages", len(msgs))
	}
}

func TestHandlePayload_AdEntry(t *testing.T) {
	t.Parallel()

	msgs := newTestHandler(&fakeReporter{}).HandlePayload(context.Background(), testUser(), PayloadAd)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want intro + question", len(msgs))
	}
	qrs := msgs[1].QuickReplies
	if len(qrs) != 2 || qrs[0].Payload != PayloadYes || qrs[1].Payload != PayloadNo {
		t.Errorf("qualifying quick replies = %+v", qrs)
	}
}

func TestHandlePayload_YesReportsAndFollowsUp(t *testing.T) {
	t.Parallel()

	reporter := &fakeReporter{}
	msgs := newTestHandler(reporter).HandlePayload(context.Background(), testUser(), PayloadYes)

	if len(reporter.calls) != 1 || reporter.calls[0] != "psid-1" {
		t.Errorf("reporter calls = %v, want one for psid-1", reporter.calls)
	}
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want qualified + persona pair", len(msgs))
	}
	if msgs[1].Delay != 4*time.Second || msgs[2].Delay != 6*time.Second {
		t.Errorf("follow-up delays = %v/%v", msgs[1].Delay, msgs[2].Delay)
	}
}

func TestHandlePayload_YesSwallowsReportError(t *testing.T) {
	t.Parallel()

	reporter := &fakeReporter{err: errors.New("graph down")}
	msgs := newTestHandler(reporter).HandlePayload(context.Background(), testUser(), PayloadYes)
	if len(msgs) != 3 {
		t.Fatalf("report failure must not change the reply, got %d messages", len(msgs))
	}
}

func TestHandlePayload_NoRestartsOnboarding(t *testing.T) {
	t.Parallel()

	msgs := newTestHandler(&fakeReporter{}).HandlePayload(context.Background(), testUser(), PayloadNo)
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want disqualified + nux pair", len(msgs))
	}
	if msgs[1].Text != "welcome" {
		t.Errorf("expected onboarding to follow, got %q", msgs[1].Text)
	}
}
