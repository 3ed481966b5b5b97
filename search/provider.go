// Package search talks to hosted news-search APIs. It exposes a common
// Provider interface, a process-lifetime result cache, and a Retriever that
// orchestrates cache lookup, provider fallback and deduplication.
package search

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

// Time ranges accepted by the inbound API.
const (
	TimeRangeDay   = "24h"
	TimeRangeWeek  = "7d"
	TimeRangeMonth = "30d"
	TimeRangeAll   = "all"
)

// ErrNotConfigured is returned by providers whose API key is missing.
var ErrNotConfigured = errors.New("search provider not configured")

// Provider is a single hosted news-search backend.
type Provider interface {
	Name() string
	Search(ctx context.Context, query, timeRange string, maxResults int) ([]news.Article, error)
}

// httpClient is shared by the concrete providers.
var httpClient = &http.Client{Timeout: 15 * time.Second}

// timeRangeDays maps an inbound time range to a day count, 0 meaning
// unbounded.
func timeRangeDays(timeRange string) int {
	switch timeRange {
	case TimeRangeDay:
		return 1
	case TimeRangeWeek:
		return 7
	case TimeRangeMonth:
		return 30
	default:
		return 0
	}
}
