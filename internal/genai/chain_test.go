package genai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/garyellow/coast-messenger-go/internal/config"
)

type fakeCompleter struct {
	name    Provider
	reply   string
	err     error
	calls   int
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, history, utterance string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, BuildUserPrompt(history, utterance))
	return f.reply, f.err
}

func (f *fakeCompleter) Provider() Provider { return f.name }
func (f *fakeCompleter) Close() error       { return nil }

func newTestChain(completers ...Completer) *Chain {
	return &Chain{
		completers: completers,
		memory:     NewMemoryStore(0, 0, 0),
	}
}

func TestChain_RespondPrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := &fakeCompleter{name: ProviderOpenAI, reply: "Our linen shirts are great for the coast."}
	fallback := &fakeCompleter{name: ProviderGemini, reply: "unused"}
	c := newTestChain(primary, fallback)

	got := c.Respond(context.Background(), "u1", "what should I pack?")
	if got != primary.reply {
		t.Errorf("Respond = %q, want primary reply", got)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback calls = %d, want 0", fallback.calls)
	}
}

func TestChain_RespondFallsBack(t *testing.T) {
	t.Parallel()

	primary := &fakeCompleter{name: ProviderOpenAI, err: errors.New("rate limited")}
	fallback := &fakeCompleter{name: ProviderGemini, reply: "Try our rain jackets."}
	c := newTestChain(primary, fallback)

	got := c.Respond(context.Background(), "u1", "rainy trip advice?")
	if got != fallback.reply {
		t.Errorf("Respond = %q, want fallback reply", got)
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", primary.calls, fallback.calls)
	}
}

func TestChain_RespondApologyWhenAllFail(t *testing.T) {
	t.Parallel()

	c := newTestChain(
		&fakeCompleter{name: ProviderOpenAI, err: errors.New("boom")},
		&fakeCompleter{name: ProviderGemini, err: errors.New("boom too")},
	)

	if got := c.Respond(context.Background(), "u1", "hello"); got != Apology {
		t.Errorf("Respond = %q, want apology", got)
	}
	// A failed exchange must not pollute the next prompt's history.
	if h := c.memory.History("u1"); h != "" {
		t.Errorf("memory after total failure = %q, want empty", h)
	}
}

func TestChain_MemoryCarriesAcrossTurns(t *testing.T) {
	t.Parallel()

	primary := &fakeCompleter{name: ProviderOpenAI, reply: "Baja is lovely in spring."}
	c := newTestChain(primary)

	c.Respond(context.Background(), "u1", "where should I go?")
	c.Respond(context.Background(), "u1", "what should I wear there?")

	if len(primary.prompts) != 2 {
		t.Fatalf("prompts = %d, want 2", len(primary.prompts))
	}
	second := primary.prompts[1]
	if !strings.Contains(second, "Conversation so far:") {
		t.Errorf("second prompt missing history preamble: %q", second)
	}
	if !strings.Contains(second, "where should I go?") {
		t.Errorf("second prompt missing first utterance: %q", second)
	}
}

func TestChain_ResetClearsMemory(t *testing.T) {
	t.Parallel()

	primary := &fakeCompleter{name: ProviderOpenAI, reply: "Hello!"}
	c := newTestChain(primary)

	c.Respond(context.Background(), "u1", "hi")
	c.Reset("u1")
	c.Respond(context.Background(), "u1", "hi again")

	last := primary.prompts[len(primary.prompts)-1]
	if strings.Contains(last, "Conversation so far:") {
		t.Errorf("prompt after Reset should have no history: %q", last)
	}
}

func TestChain_NilAndDisabled(t *testing.T) {
	t.Parallel()

	var nilChain *Chain
	if nilChain.Enabled() {
		t.Error("nil chain should report disabled")
	}
	if err := nilChain.Close(); err != nil {
		t.Errorf("Close on nil chain: %v", err)
	}

	empty := newTestChain()
	if got := empty.Respond(context.Background(), "u1", "hi"); got != Apology {
		t.Errorf("Respond with no providers = %q, want apology", got)
	}
}

func TestNew_DisabledWithoutKeys(t *testing.T) {
	t.Parallel()

	c, err := New(context.Background(), &config.Config{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c != nil {
		t.Error("New without API keys should return nil chain")
	}
}

func TestBuildUserPrompt(t *testing.T) {
	t.Parallel()

	if got := BuildUserPrompt("", "hi"); got != "User: hi" {
		t.Errorf("empty history prompt = %q", got)
	}
	got := BuildUserPrompt("User: a\nAssistant: b", "c")
	if got != "Conversation so far: User: a\nAssistant: b\n\nUser: c" {
		t.Errorf("history prompt = %q", got)
	}
}
