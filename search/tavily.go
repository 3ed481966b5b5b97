package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

const defaultTavilyURL = "https://api.tavily.com/search"

// Tavily is the primary news-search provider.
type Tavily struct {
	APIKey  string
	BaseURL string
}

// NewTavily creates a Tavily provider. The key may be empty; Search then
// reports ErrNotConfigured so the orchestrator can fall back.
func NewTavily(apiKey string) *Tavily {
	return &Tavily{APIKey: apiKey, BaseURL: defaultTavilyURL}
}

func (t *Tavily) Name() string { return "tavily" }

type tavilyResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content"`
	Score      float64 `json:"score"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

// Search queries the Tavily news topic and maps results into Articles.
func (t *Tavily) Search(ctx context.Context, query, timeRange string, maxResults int) ([]news.Article, error) {
	if t.APIKey == "" {
		return nil, fmt.Errorf("%w: TAVILY_API_KEY is not set", ErrNotConfigured)
	}

	reqBody := map[string]any{
		"api_key":             t.APIKey,
		"query":               query,
		"topic":               "news",
		"search_depth":        "basic",
		"max_results":         maxResults,
		"include_answer":      false,
		"include_raw_content": true,
	}
	if days := timeRangeDays(timeRange); days > 0 {
		reqBody["days"] = days
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily api status: %d", resp.StatusCode)
	}

	var result tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("tavily decode: %w", err)
	}

	articles := make([]news.Article, 0, len(result.Results))
	for i, item := range result.Results {
		content := item.Content
		if content == "" {
			content = item.RawContent
		}
		if content == "" {
			continue
		}
		articles = append(articles, news.Article{
			ID:      strconv.Itoa(i + 1),
			Title:   item.Title,
			URL:     item.URL,
			Source:  news.SourceFromURL(item.URL),
			Content: content,
			Score:   item.Score,
		})
	}
	return articles, nil
}
