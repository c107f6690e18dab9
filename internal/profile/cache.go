package profile

import (
	"sync"

	"github.com/garyellow/coast-messenger-go/internal/persona"
)

// Cache is the process-wide persona directory, filled during persona
// setup and read by the conversation handlers. Before setup runs (or
// when it fails) lookups return personas without ids, which senders
// treat as "no persona".
type Cache struct {
	mu    sync.RWMutex
	roles map[persona.Role]persona.Persona
}

// NewCache creates a persona cache pre-seeded with the default catalog
// so names resolve even before registration has completed.
func NewCache(appURL string) *Cache {
	roles := make(map[persona.Role]persona.Persona)
	for _, p := range persona.Defaults(appURL) {
		roles[p.Role] = p
	}
	return &Cache{roles: roles}
}

// Put stores a persona under its role.
func (c *Cache) Put(p persona.Persona) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roles[p.Role] = p
}

// Lookup implements persona.Directory.
func (c *Cache) Lookup(role persona.Role) persona.Persona {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roles[role]
}
