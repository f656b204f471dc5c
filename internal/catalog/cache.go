package catalog

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/ItemForge_Go/internal/domain"
)

// CacheConfig sizes the template cache
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// DefaultCacheConfig returns the cache settings used when none are configured
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{Size: 1024, TTL: 10 * time.Minute}
}

// CacheStats reports template cache effectiveness
type CacheStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Size   int    `json:"size"`
}

// templateCache keeps recently read templates with time based expiry.
// Writes through the catalog service invalidate the affected entry.
type templateCache struct {
	lru    *expirable.LRU[int, domain.Template]
	hits   atomic.Uint64
	misses atomic.Uint64
}

func newTemplateCache(cfg CacheConfig) *templateCache {
	if cfg.Size <= 0 {
		cfg.Size = DefaultCacheConfig().Size
	}
	return &templateCache{lru: expirable.NewLRU[int, domain.Template](cfg.Size, nil, cfg.TTL)}
}

func (c *templateCache) Get(id int) (*domain.Template, bool) {
	tmpl, ok := c.lru.Get(id)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &tmpl, true
}

func (c *templateCache) Set(tmpl domain.Template) {
	c.lru.Add(tmpl.ID, tmpl)
}

func (c *templateCache) Invalidate(id int) {
	c.lru.Remove(id)
}

func (c *templateCache) Stats() CacheStats {
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load(), Size: c.lru.Len()}
}
