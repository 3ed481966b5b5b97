package search

import (
	"sync"
	"time"

	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

// DefaultCacheTTL is the freshness window for cached search results.
const DefaultCacheTTL = 30 * time.Minute

type cacheKey struct {
	query     string
	timeRange string
}

type cacheEntry struct {
	storedAt time.Time
	articles []news.Article
}

// Cache is a process-lifetime map from (query, time range) to a timestamped
// result list. Entries past the TTL are treated as absent. Safe for
// concurrent use; a race costs at most a redundant provider fetch.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[cacheKey]cacheEntry
	now     func() time.Time
}

// NewCache creates a cache with the given TTL. A non-positive TTL falls back
// to DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[cacheKey]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached articles for (query, timeRange) if present and
// fresh. The second return reports a hit.
func (c *Cache) Get(query, timeRange string) ([]news.Article, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{query: query, timeRange: timeRange}
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.articles, true
}

// Set stores articles under (query, timeRange) with the current timestamp.
func (c *Cache) Set(query, timeRange string, articles []news.Article) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{query: query, timeRange: timeRange}] = cacheEntry{
		storedAt: c.now(),
		articles: articles,
	}
}

// Len returns the number of live entries (expired ones included until read).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
