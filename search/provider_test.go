package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "news", body["topic"])
		assert.Equal(t, float64(7), body["days"])

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Story", "url": "https://example.com/s", "content": "body text", "score": 0.91},
				{"title": "Empty", "url": "https://example.com/e", "content": ""},
			},
		})
	}))
	defer srv.Close()

	p := NewTavily("key")
	p.BaseURL = srv.URL

	articles, err := p.Search(context.Background(), "batteries", TimeRangeWeek, 5)
	require.NoError(t, err)
	require.Len(t, articles, 1, "empty-content results are dropped")
	assert.Equal(t, "1", articles[0].ID)
	assert.Equal(t, "example.com", articles[0].Source)
	assert.InDelta(t, 0.91, articles[0].Score, 1e-9)
}

func TestTavilyMissingKey(t *testing.T) {
	p := NewTavily("")
	_, err := p.Search(context.Background(), "q", TimeRangeWeek, 5)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGNewsSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "batteries", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.URL.Query().Get("from"))

		json.NewEncoder(w).Encode(map[string]any{
			"articles": []map[string]any{
				{
					"title":       "Story",
					"description": "desc",
					"content":     "full content",
					"url":         "https://example.org/a",
					"publishedAt": "2026-08-29T10:00:00Z",
					"source":      map[string]any{"name": "Example Org"},
				},
			},
		})
	}))
	defer srv.Close()

	p := NewGNews("key")
	p.BaseURL = srv.URL

	articles, err := p.Search(context.Background(), "batteries", TimeRangeWeek, 5)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Example Org", articles[0].Source)
	require.NotNil(t, articles[0].PublishedAt)
	assert.Equal(t, 29, articles[0].PublishedAt.Day())
}

func TestBraveSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "pw", r.URL.Query().Get("freshness"))

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Story", "url": "https://example.net/a", "description": "snippet"},
			},
		})
	}))
	defer srv.Close()

	p := NewBrave("key")
	p.BaseURL = srv.URL

	articles, err := p.Search(context.Background(), "batteries", TimeRangeWeek, 5)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "example.net", articles[0].Source)
}

func TestProviderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewTavily("key")
	p.BaseURL = srv.URL
	_, err := p.Search(context.Background(), "q", TimeRangeAll, 5)
	assert.Error(t, err)
}
