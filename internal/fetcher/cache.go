package fetcher

import (
	"sync"

	"yt-traffic/internal/domain"
)

// Cache holds lookup results for one session. It has no TTL and is never
// shared implicitly: the caller creates it and hands it to New.
//
// Failed entries are kept for reporting but Get treats them as misses,
// so the next Fetch asks the platform again.
type Cache struct {
	mu      sync.Mutex
	entries map[domain.VideoID]domain.VideoLookup
}

func NewCache() *Cache {
	return &Cache{entries: make(map[domain.VideoID]domain.VideoLookup)}
}

// Get returns a cached Available or Unavailable lookup.
func (c *Cache) Get(id domain.VideoID) (domain.VideoLookup, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.entries[id]
	if !ok || l.Status == domain.StatusFailed {
		return domain.VideoLookup{}, false
	}
	return l, true
}

// Peek returns whatever is stored for id, failed entries included.
func (c *Cache) Peek(id domain.VideoID) (domain.VideoLookup, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.entries[id]
	return l, ok
}

func (c *Cache) Put(id domain.VideoID, l domain.VideoLookup) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = l
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear ends the session.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}
