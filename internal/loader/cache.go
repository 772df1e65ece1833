package loader

import "sync"

// Cache keeps recently fetched side files (material libraries, textures)
// so that reloading a mesh does not refetch them. Entries are evicted
// oldest first once the byte budget is exceeded.
type Cache struct {
	data  map[string][]byte
	order []string
	size  int64
	limit int64
	mu    sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a cache holding at most limit bytes. A limit <= 0
// disables caching.
func NewCache(limit int64) *Cache {
	return &Cache{
		data:  make(map[string][]byte),
		limit: limit,
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache. Items larger than the whole budget are not kept.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := int64(len(data))
	if c.limit <= 0 || n > c.limit {
		return
	}
	if old, ok := c.data[key]; ok {
		c.size -= int64(len(old))
		c.remove(key)
	}
	for c.size+n > c.limit && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		c.size -= int64(len(c.data[oldest]))
		delete(c.data, oldest)
	}
	c.data[key] = data
	c.order = append(c.order, key)
	c.size += n
}

func (c *Cache) remove(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.order = nil
	c.size = 0
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
