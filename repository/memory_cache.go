package repository

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCache is the in-process CacheRepository used when no Redis is configured.
// Expired entries are purged in the background; the least recently used entry
// goes first once size is reached.
type MemoryCache struct {
	lru *expirable.LRU[string, string]
}

// NewMemoryCache creates a cache of at most size entries. A size or ttl of
// zero means no limit.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	return m.lru.Get(key)
}

func (m *MemoryCache) Set(_ context.Context, key, value string) error {
	m.lru.Add(key, value)
	return nil
}

// Len reports the number of entries not yet purged.
func (m *MemoryCache) Len() int {
	return m.lru.Len()
}
