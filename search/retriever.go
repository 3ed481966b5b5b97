package search

import (
	"context"

	"github.com/BrooklynD23/RAG-Agent-CS4200/log"
	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

// BackendCache is the backend name reported for cache hits.
const BackendCache = "cache"

// Retriever orchestrates article retrieval: cache lookup, then each provider
// in order, deduplication, and cache write-back. Provider errors degrade to
// "no results from this provider" and are never propagated; only total
// exhaustion yields an empty list.
type Retriever struct {
	providers []Provider
	cache     *Cache
	logger    log.Logger
}

// NewRetriever creates a retriever over the given providers, tried in order.
func NewRetriever(cache *Cache, providers ...Provider) *Retriever {
	return &Retriever{
		providers: providers,
		cache:     cache,
		logger:    log.Default(),
	}
}

// SetLogger overrides the retriever's logger.
func (r *Retriever) SetLogger(l log.Logger) {
	r.logger = l
}

// Retrieve returns a deduplicated article list for the topic, plus the name
// of the backend that served it ("cache", a provider name, or "" when every
// provider came up empty).
func (r *Retriever) Retrieve(ctx context.Context, topic, timeRange string, maxResults int) ([]news.Article, string) {
	if cached, ok := r.cache.Get(topic, timeRange); ok {
		r.logger.Infof("retrieve cache hit topic=%q time_range=%s results=%d", topic, timeRange, len(cached))
		return cached, BackendCache
	}

	for _, p := range r.providers {
		articles, err := p.Search(ctx, topic, timeRange, maxResults)
		if err != nil {
			r.logger.Warnf("retrieve provider=%s failed, trying next: %v", p.Name(), err)
			continue
		}
		if len(articles) == 0 {
			r.logger.Infof("retrieve provider=%s returned no results", p.Name())
			continue
		}

		articles = news.Deduplicate(articles)
		// Only non-empty provider results are worth caching; caching an
		// empty list would pin the retry loop to the same miss.
		r.cache.Set(topic, timeRange, articles)
		r.logger.Infof("retrieve provider=%s topic=%q results=%d", p.Name(), topic, len(articles))
		return articles, p.Name()
	}

	r.logger.Warnf("retrieve exhausted all providers topic=%q", topic)
	return nil, ""
}
