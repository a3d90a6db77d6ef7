package catalog

import (
	"context"
	"log/slog"
	"sync"
)

// Cache is a read-through cache over a Store. The first read after creation
// or invalidation loads the full asset list from the store; subsequent reads
// are served from memory. Safe for concurrent use.
//
// The cache never refreshes on its own. Whoever mutates the underlying
// catalog is responsible for calling Invalidate.
type Cache struct {
	store  Store
	logger *slog.Logger

	mu     sync.RWMutex
	assets []Asset
	loaded bool
}

// NewCache creates a Cache over the given store.
func NewCache(log *slog.Logger, store Store) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{
		store:  store,
		logger: log.With(slog.String("service", "catalog")),
	}
}

// Assets returns the cached asset list, loading it from the store on first
// use. A store failure leaves the cache unloaded and is returned to the
// caller.
func (c *Cache) Assets(ctx context.Context) ([]Asset, error) {
	c.mu.RLock()
	if c.loaded {
		assets := c.assets
		c.mu.RUnlock()
		return assets, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.assets, nil
	}
	assets, err := c.store.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	c.assets = assets
	c.loaded = true
	c.logger.Debug("catalog loaded", slog.Int("assets", len(assets)))
	return c.assets, nil
}

// BySlug returns the cached asset with the given slug, if one exists.
func (c *Cache) BySlug(ctx context.Context, slug string) (Asset, bool, error) {
	assets, err := c.Assets(ctx)
	if err != nil {
		return Asset{}, false, err
	}
	for _, a := range assets {
		if a.Slug == slug {
			return a, true, nil
		}
	}
	return Asset{}, false, nil
}

// Invalidate drops the cached list. The next read loads fresh data.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.assets = nil
	c.loaded = false
	c.mu.Unlock()
	c.logger.Debug("catalog invalidated")
}
