package detail

import "github.com/starford/mannaz/internal/directory"

// Cache stores fetched profiles keyed by username for the lifetime of a
// session. It is append-only: no eviction, no TTL. It is not safe for
// concurrent use; the controller confines all access to its event loop.
// It is injected rather than package-global so independent sessions can
// hold independent caches.
type Cache struct {
	entries map[string]*directory.ProfileDetail
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*directory.ProfileDetail)}
}

// Get returns the cached profile for username, or nil and false on miss.
func (c *Cache) Get(username string) (*directory.ProfileDetail, bool) {
	p, ok := c.entries[username]
	return p, ok
}

// Set stores a profile, replacing any existing entry.
func (c *Cache) Set(username string, p *directory.ProfileDetail) {
	c.entries[username] = p
}

// Len returns the number of cached profiles.
func (c *Cache) Len() int {
	return len(c.entries)
}
