package vehicle

import (
	"sync"
	"time"
)

// Clock abstracts time for the cache so expiry is testable without
// sleeping.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type cacheEntry struct {
	makes     []Make
	expiresAt time.Time
}

// Cache holds lookup results for a fixed TTL. Expired entries are
// dropped on read.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   Clock
	entries map[string]cacheEntry
}

// NewCache builds an empty cache. A nil clock defaults to SystemClock.
func NewCache(ttl time.Duration, clock Clock) *Cache {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Cache{ttl: ttl, clock: clock, entries: make(map[string]cacheEntry)}
}

func (c *Cache) Get(key string) ([]Make, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.makes, true
}

func (c *Cache) Set(key string, makes []Make) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{makes: makes, expiresAt: c.clock.Now().Add(c.ttl)}
}
