package aws

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value   int
	expires time.Time
}

// ttlCache caches slow-moving integer values (applied quota values, prefix
// list capacities) so repeated fan-out ticks do not burn describe rate limit
// on data that changes at support-ticket speed.
type ttlCache struct {
	mu   sync.RWMutex
	ttl  time.Duration
	data map[string]cacheEntry
}

func newTTLCache(ttl time.Duration) *ttlCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ttlCache{
		ttl:  ttl,
		data: make(map[string]cacheEntry),
	}
}

func (c *ttlCache) get(key string) (int, bool) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return 0, false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return 0, false
	}
	return entry.value, true
}

func (c *ttlCache) set(key string, value int) {
	c.mu.Lock()
	c.data[key] = cacheEntry{
		value:   value,
		expires: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}
