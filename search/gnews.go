package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

const defaultGNewsURL = "https://gnews.io/api/v4/search"

// GNews is the fallback news-search provider.
type GNews struct {
	APIKey  string
	BaseURL string
}

// NewGNews creates a GNews provider.
func NewGNews(apiKey string) *GNews {
	return &GNews{APIKey: apiKey, BaseURL: defaultGNewsURL}
}

func (g *GNews) Name() string { return "gnews" }

type gnewsSource struct {
	Name string `json:"name"`
}

type gnewsArticle struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Content     string      `json:"content"`
	URL         string      `json:"url"`
	PublishedAt string      `json:"publishedAt"`
	Source      gnewsSource `json:"source"`
}

type gnewsResponse struct {
	Articles []gnewsArticle `json:"articles"`
}

// Search queries the GNews REST API and maps results into Articles.
func (g *GNews) Search(ctx context.Context, query, timeRange string, maxResults int) ([]news.Article, error) {
	if g.APIKey == "" {
		return nil, fmt.Errorf("%w: GNEWS_API_KEY is not set", ErrNotConfigured)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("lang", "en")
	params.Set("max", strconv.Itoa(maxResults))
	params.Set("apikey", g.APIKey)
	if days := timeRangeDays(timeRange); days > 0 {
		from := time.Now().UTC().AddDate(0, 0, -days)
		params.Set("from", from.Format(time.RFC3339))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gnews request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gnews api status: %d", resp.StatusCode)
	}

	var result gnewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("gnews decode: %w", err)
	}

	articles := make([]news.Article, 0, len(result.Articles))
	for i, item := range result.Articles {
		content := item.Content
		if content == "" {
			content = item.Description
		}
		if content == "" {
			continue
		}

		id := item.ID
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		source := item.Source.Name
		if source == "" {
			source = news.SourceFromURL(item.URL)
		}

		a := news.Article{
			ID:      id,
			Title:   item.Title,
			URL:     item.URL,
			Source:  source,
			Content: content,
		}
		if ts, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
			a.PublishedAt = &ts
		}
		articles = append(articles, a)
	}
	return articles, nil
}
