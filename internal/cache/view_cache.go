package cache

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Invalidator marks a view stale.
type Invalidator interface {
	Invalidate(ctx context.Context, path string)
}

// Page is a rendered GET response.
type Page struct {
	Status int
	Header http.Header
	Body   []byte
}

// ViewCache keeps rendered views keyed by URL path with a TTL.
// generation advances on every invalidation so a render that started
// before a mutation cannot be stored after it.
type ViewCache struct {
	pages      map[string]*pageEntry
	mu         sync.RWMutex
	ttl        time.Duration
	now        func() time.Time
	generation uint64
}

type pageEntry struct {
	page      Page
	expiresAt time.Time
}

// NewViewCache creates a cache whose entries live for ttl.
func NewViewCache(ttl time.Duration) *ViewCache {
	return &ViewCache{
		pages: make(map[string]*pageEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns the cached page for path if it has not expired.
func (c *ViewCache) Get(path string) (Page, bool) {
	c.mu.RLock()
	entry, ok := c.pages[path]
	c.mu.RUnlock()

	if !ok || !c.now().Before(entry.expiresAt) {
		return Page{}, false
	}
	return entry.page, true
}

// Generation returns the current invalidation generation.
func (c *ViewCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// SetIfCurrent stores page only if no invalidation happened since gen was read.
func (c *ViewCache) SetIfCurrent(path string, page Page, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return false
	}
	c.pages[path] = &pageEntry{page: page, expiresAt: c.now().Add(c.ttl)}
	return true
}

// Invalidate drops path and every view nested under it.
// Invalidating a path that is not cached is a no-op.
func (c *ViewCache) Invalidate(_ context.Context, path string) {
	prefix := strings.TrimSuffix(path, "/") + "/"
	c.mu.Lock()
	c.generation++
	for key := range c.pages {
		if key == path || strings.HasPrefix(key, prefix) {
			delete(c.pages, key)
		}
	}
	c.mu.Unlock()
}
