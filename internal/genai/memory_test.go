package genai

import (
	"strings"
	"testing"
	"time"
)

func TestMemoryStore_AppendAndHistory(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0, 0, 0)

	if got := s.History("u1"); got != "" {
		t.Errorf("History for unknown user = %q, want empty", got)
	}

	s.Append("u1", "hi there", "Hello! How can I help?")
	got := s.History("u1")
	if !strings.Contains(got, "User: hi there") {
		t.Errorf("history missing user line: %q", got)
	}
	if !strings.Contains(got, "Assistant: Hello! How can I help?") {
		t.Errorf("history missing assistant line: %q", got)
	}
}

func TestMemoryStore_IsolatedPerUser(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0, 0, 0)
	s.Append("u1", "summer dresses", "We have plenty!")
	s.Append("u2", "winter coats", "Our coastal parkas are popular.")

	if strings.Contains(s.History("u1"), "winter") {
		t.Error("u1 history leaked u2 content")
	}
	if strings.Contains(s.History("u2"), "summer") {
		t.Error("u2 history leaked u1 content")
	}
}

func TestMemoryStore_RuneBoundDropsOldest(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(120, 0, 0)
	s.Append("u1", strings.Repeat("a", 40), strings.Repeat("b", 40))
	s.Append("u1", "newest question", "newest answer")

	got := s.History("u1")
	if strings.Contains(got, strings.Repeat("a", 40)) {
		t.Error("oldest line should have been dropped")
	}
	if !strings.Contains(got, "newest answer") {
		t.Errorf("latest exchange must be kept: %q", got)
	}
}

func TestMemoryStore_LRUEviction(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0, 2, 0)
	s.Append("u1", "q1", "a1")
	time.Sleep(time.Millisecond)
	s.Append("u2", "q2", "a2")
	time.Sleep(time.Millisecond)
	s.History("u1") // refresh u1 so u2 is the LRU entry
	s.Append("u3", "q3", "a3")

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if s.History("u2") != "" {
		t.Error("u2 should have been evicted as least recently used")
	}
	if s.History("u1") == "" || s.History("u3") == "" {
		t.Error("u1 and u3 should survive eviction")
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0, 0, 10*time.Millisecond)
	s.Append("u1", "q", "a")
	time.Sleep(25 * time.Millisecond)

	if got := s.History("u1"); got != "" {
		t.Errorf("expired history = %q, want empty", got)
	}
}

func TestMemoryStore_Forget(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0, 0, 0)
	s.Append("u1", "q", "a")
	s.Forget("u1")

	if got := s.History("u1"); got != "" {
		t.Errorf("History after Forget = %q, want empty", got)
	}
}
