package gallery

import (
	"image"
	"sync"
)

// Cache is the in-process overlay cache. Loaded overlays are immutable and
// safely shared read-only across concurrent composites; the cache lives for
// the process and is invalidated only by explicit Dispose.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]image.Image
}

// NewCache creates an empty overlay cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]image.Image)}
}

// Get returns a cached overlay.
func (c *Cache) Get(identityID, expressionID string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.entries[Key{IdentityID: identityID, ExpressionID: expressionID}]
	return img, ok
}

// GetOrLoad returns the cached overlay or loads, caches, and returns it.
// The loader runs outside the lock; concurrent loads of the same key may
// race, last write wins, which is harmless for immutable images.
func (c *Cache) GetOrLoad(identityID, expressionID string, load func() (image.Image, error)) (image.Image, error) {
	if img, ok := c.Get(identityID, expressionID); ok {
		return img, nil
	}

	img, err := load()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[Key{IdentityID: identityID, ExpressionID: expressionID}] = img
	c.mu.Unlock()
	return img, nil
}

// Len returns the number of cached overlays.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Dispose drops every cached overlay.
func (c *Cache) Dispose() {
	c.mu.Lock()
	c.entries = make(map[Key]image.Image)
	c.mu.Unlock()
}
