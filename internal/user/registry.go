package user

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/garyellow/coast-messenger-go/internal/logger"
	"github.com/garyellow/coast-messenger-go/internal/metrics"
)

// Store is the durable backing for repeat-visitor lookup across
// restarts. Implemented by the sqlite store in internal/storage.
type Store interface {
	SaveUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, psid string) (*User, error)
	TouchUser(ctx context.Context, psid string) error
}

// ProfileFunc fetches the platform profile for a page-scoped id.
type ProfileFunc func(ctx context.Context, psid string) (Profile, error)

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	Store        Store       // optional durable backing
	FetchProfile ProfileFunc // optional profile hydration

	TTL           time.Duration // entry lifetime since last access
	MaxEntries    int           // cache size bound (0 = unbounded)
	CleanupPeriod time.Duration

	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

// Registry is a bounded in-memory user cache with atomic
// insert-if-absent semantics. Concurrent first-contact events for the
// same identifier are collapsed into one hydration via singleflight, so
// exactly one profile fetch runs and every caller sees the same User.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
	cfg     RegistryConfig
	sf      singleflight.Group
	stopCh  chan struct{}
	stopped sync.Once
}

type registryEntry struct {
	user       *User
	lastAccess time.Time
}

// NewRegistry creates a user registry and starts its eviction loop.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.TTL <= 0 {
		cfg.TTL = 168 * time.Hour
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = time.Hour
	}

	r := &Registry{
		entries: make(map[string]*registryEntry),
		cfg:     cfg,
		stopCh:  make(chan struct{}),
	}
	go r.cleanupLoop()
	return r
}

// Resolve returns the user for key, creating and hydrating one on first
// contact. Guest users (chat plugin user_ref) are never hydrated or
// persisted; their reference is transient.
func (r *Registry) Resolve(ctx context.Context, key string, guest bool) (*User, error) {
	if u := r.lookup(key); u != nil {
		if r.cfg.Metrics != nil {
			r.cfg.Metrics.RecordUserCacheHit("memory")
		}
		return u, nil
	}

	if r.cfg.Metrics != nil {
		r.cfg.Metrics.RecordUserCacheMiss("memory")
	}

	v, err, shared := r.sf.Do(key, func() (interface{}, error) {
		// Another event may have populated the cache while this call
		// waited on the singleflight lock.
		if u := r.lookup(key); u != nil {
			return u, nil
		}
		return r.create(ctx, key, guest), nil
	})
	if err != nil {
		return nil, err
	}
	if shared && r.cfg.Metrics != nil {
		r.cfg.Metrics.RecordSingleflightDedup("user")
	}
	return v.(*User), nil
}

// lookup returns a cached live user, bumping its last access time.
func (r *Registry) lookup(key string) *User {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok {
		return nil
	}
	if time.Since(entry.lastAccess) > r.cfg.TTL {
		delete(r.entries, key)
		return nil
	}
	entry.lastAccess = time.Now()
	return entry.user
}

// create builds a user from the store or the platform profile and
// inserts it. Store and profile failures degrade to a default user;
// they never fail event handling.
func (r *Registry) create(ctx context.Context, key string, guest bool) *User {
	u := New(key)
	u.Guest = guest

	if guest {
		return r.insert(key, u)
	}

	if r.cfg.Store != nil {
		stored, err := r.cfg.Store.GetUser(ctx, key)
		if err != nil {
			r.logWarn(ctx, "user store lookup failed", err)
		} else if stored != nil {
			if r.cfg.Metrics != nil {
				r.cfg.Metrics.RecordUserCacheHit("sqlite")
			}
			if err := r.cfg.Store.TouchUser(ctx, key); err != nil {
				r.logWarn(ctx, "user store touch failed", err)
			}
			return r.insert(key, stored)
		}
	}

	if r.cfg.FetchProfile != nil {
		profile, err := r.cfg.FetchProfile(ctx, key)
		if err != nil {
			r.logWarn(ctx, "profile is unavailable", err)
		} else {
			u.SetProfile(profile)
		}
	}

	if r.cfg.Store != nil {
		u.LastSeen = time.Now()
		if err := r.cfg.Store.SaveUser(ctx, u); err != nil {
			r.logWarn(ctx, "user store save failed", err)
		}
	}

	return r.insert(key, u)
}

// insert adds the user unless a concurrent insert won the race, in
// which case the existing user is returned so both events observe one
// instance.
func (r *Registry) insert(key string, u *User) *User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[key]; ok {
		existing.lastAccess = time.Now()
		return existing.user
	}

	if r.cfg.MaxEntries > 0 && len(r.entries) >= r.cfg.MaxEntries {
		r.evictOldestLocked()
	}

	r.entries[key] = &registryEntry{user: u, lastAccess: time.Now()}
	return u
}

// evictOldestLocked removes the least recently accessed entry. Caller
// holds r.mu.
func (r *Registry) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range r.entries {
		if oldestKey == "" || entry.lastAccess.Before(oldest) {
			oldestKey = key
			oldest = entry.lastAccess
		}
	}
	if oldestKey != "" {
		delete(r.entries, oldestKey)
	}
}

// Len returns the number of cached users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) cleanupLoop() {
	ticker := time.NewTicker(r.cfg.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.mu.Lock()
			for key, entry := range r.entries {
				if time.Since(entry.lastAccess) > r.cfg.TTL {
					delete(r.entries, key)
				}
			}
			r.mu.Unlock()
		}
	}
}

// Stop terminates the eviction loop. Safe to call multiple times.
func (r *Registry) Stop() {
	r.stopped.Do(func() { close(r.stopCh) })
}

func (r *Registry) logWarn(ctx context.Context, msg string, err error) {
	if r.cfg.Logger != nil {
		r.cfg.Logger.WarnContext(ctx, msg, "error", err)
	}
}
