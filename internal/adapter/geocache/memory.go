package geocache

import (
	"sync"

	"github.com/cvneat/delivery-quote-service/internal/domain"
)

// fifoCache is a bounded in-process map with FIFO eviction. Addresses
// do not change, so this is purely a memory bound, not a freshness
// mechanism: the oldest inserted key is dropped when the cap is
// exceeded, regardless of how recently it was read.
type fifoCache struct {
	maxEntries int

	mu      sync.Mutex
	entries map[string]domain.GeocodedAddress
	order   []string // insertion order, oldest first
}

func newFIFOCache(maxEntries int) *fifoCache {
	return &fifoCache{
		maxEntries: maxEntries,
		entries:    make(map[string]domain.GeocodedAddress, maxEntries),
	}
}

func (c *fifoCache) get(key string) (domain.GeocodedAddress, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	addr, ok := c.entries[key]
	return addr, ok
}

func (c *fifoCache) put(key string, addr domain.GeocodedAddress) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = addr
		return
	}

	c.entries[key] = addr
	c.order = append(c.order, key)

	for len(c.entries) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func (c *fifoCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
