package cache

import (
	"sync"
	"time"
)

// Cache is a small TTL map used for read-mostly lookups (role records
// mostly). Expired entries are dropped lazily on access and swept
// opportunistically on writes.
type Cache struct {
	mu        sync.Mutex
	ttl       time.Duration
	items     map[string]item
	lastSweep time.Time
}

type item struct {
	value     any
	expiresAt time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl:       ttl,
		items:     make(map[string]item),
		lastSweep: time.Now(),
	}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]

	if !ok {
		return nil, false
	}

	if time.Now().After(it.expiresAt) {
		delete(c.items, key)
		return nil, false
	}

	return it.value, true
}

func (c *Cache) Set(key string, value any) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{value: value, expiresAt: now.Add(c.ttl)}

	// sweep at most once per ttl so a busy writer does not scan constantly
	if now.Sub(c.lastSweep) >= c.ttl {
		for k, it := range c.items {
			if now.After(it.expiresAt) {
				delete(c.items, k)
			}
		}
		c.lastSweep = now
	}
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]item)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}
