package catalog

import (
	"context"

	"github.com/thomas/knits-terminal-go/internal/cache"
)

// Cached shares one catalog load between sessions for the lifetime of a
// cache entry.
type Cached struct {
	source Provider
	cache  *cache.Cache[string, *Catalog]
}

const cachedKey = "catalog"

// NewCached wraps source with c.
func NewCached(source Provider, c *cache.Cache[string, *Catalog]) *Cached {
	return &Cached{source: source, cache: c}
}

// Load returns the cached catalog or loads it from the source.
func (c *Cached) Load(ctx context.Context) (*Catalog, error) {
	return c.cache.GetOrLoad(cachedKey, func() (*Catalog, error) {
		return c.source.Load(ctx)
	})
}

// Invalidate drops the cached catalog so the next Load hits the source.
func (c *Cached) Invalidate() {
	c.cache.Delete(cachedKey)
}
