package author

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const DefaultCacheSize = 4096

// LRUCache is an in-process LookupCache bounded by size. A zero ttl keeps
// entries until they are evicted.
type LRUCache struct {
	lru *expirable.LRU[string, *Profile]
}

func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &LRUCache{lru: expirable.NewLRU[string, *Profile](size, nil, ttl)}
}

func (c *LRUCache) Get(_ context.Context, name string) (*Profile, bool, error) {
	p, ok := c.lru.Get(name)
	return p, ok, nil
}

func (c *LRUCache) Set(_ context.Context, name string, p *Profile) error {
	c.lru.Add(name, p)
	return nil
}

// Purge drops every entry.
func (c *LRUCache) Purge() {
	c.lru.Purge()
}

func (c *LRUCache) Len() int {
	return c.lru.Len()
}
