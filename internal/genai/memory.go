package genai

import (
	"strings"
	"sync"
	"time"
)

// Memory defaults.
const (
	DefaultMemoryMaxRunes = 2000
	DefaultMemoryMaxUsers = 1000
	DefaultMemoryTTL      = 24 * time.Hour
)

// MemoryStore keeps a rolling, size-bounded conversation transcript per
// user. Each user's history is independent; the store evicts whole
// conversations by LRU when full and by TTL on access.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]*memoryEntry
	maxRunes int
	maxUsers int
	ttl      time.Duration
}

type memoryEntry struct {
	lines      []string
	runes      int
	lastAccess time.Time
}

// NewMemoryStore creates a memory store. Zero arguments fall back to
// the package defaults.
func NewMemoryStore(maxRunes, maxUsers int, ttl time.Duration) *MemoryStore {
	if maxRunes <= 0 {
		maxRunes = DefaultMemoryMaxRunes
	}
	if maxUsers <= 0 {
		maxUsers = DefaultMemoryMaxUsers
	}
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}

	return &MemoryStore{
		entries:  make(map[string]*memoryEntry),
		maxRunes: maxRunes,
		maxUsers: maxUsers,
		ttl:      ttl,
	}
}

// History returns the user's transcript, oldest exchange first. Expired
// conversations return empty.
func (s *MemoryStore) History(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok {
		return ""
	}
	if time.Since(entry.lastAccess) > s.ttl {
		delete(s.entries, userID)
		return ""
	}
	entry.lastAccess = time.Now()
	return strings.Join(entry.lines, "\n")
}

// Append records one exchange. When the transcript exceeds the rune
// bound, the oldest lines are dropped first.
func (s *MemoryStore) Append(userID, utterance, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[userID]
	if !ok {
		if len(s.entries) >= s.maxUsers {
			s.evictOldestLocked()
		}
		entry = &memoryEntry{}
		s.entries[userID] = entry
	}
	entry.lastAccess = time.Now()

	for _, line := range []string{"User: " + utterance, "Assistant: " + reply} {
		count := len([]rune(line))
		entry.lines = append(entry.lines, line)
		entry.runes += count
	}

	for entry.runes > s.maxRunes && len(entry.lines) > 2 {
		dropped := len([]rune(entry.lines[0]))
		entry.lines = entry.lines[1:]
		entry.runes -= dropped
	}
}

// Forget removes a user's conversation, used when onboarding restarts.
func (s *MemoryStore) Forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
}

// Len returns the number of tracked conversations.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictOldestLocked removes the least recently used conversation.
// Caller holds s.mu.
func (s *MemoryStore) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range s.entries {
		if oldestKey == "" || entry.lastAccess.Before(oldest) {
			oldestKey = key
			oldest = entry.lastAccess
		}
	}
	if oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}
