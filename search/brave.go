package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

const defaultBraveURL = "https://api.search.brave.com/res/v1/news/search"

// Brave is an optional extra fallback provider using the Brave news API.
type Brave struct {
	APIKey  string
	BaseURL string
	Country string
	Lang    string
}

// NewBrave creates a Brave provider.
func NewBrave(apiKey string) *Brave {
	return &Brave{
		APIKey:  apiKey,
		BaseURL: defaultBraveURL,
		Country: "US",
		Lang:    "en",
	}
}

func (b *Brave) Name() string { return "brave" }

type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Age         string `json:"age"`
}

type braveResponse struct {
	Results []braveResult `json:"results"`
}

// braveFreshness maps an inbound time range onto Brave's freshness codes.
func braveFreshness(timeRange string) string {
	switch timeRange {
	case TimeRangeDay:
		return "pd"
	case TimeRangeWeek:
		return "pw"
	case TimeRangeMonth:
		return "pm"
	default:
		return ""
	}
}

// Search queries the Brave news API and maps results into Articles.
func (b *Brave) Search(ctx context.Context, query, timeRange string, maxResults int) ([]news.Article, error) {
	if b.APIKey == "" {
		return nil, fmt.Errorf("%w: BRAVE_API_KEY is not set", ErrNotConfigured)
	}

	count := maxResults
	if count < 1 {
		count = 1
	}
	if count > 20 {
		count = 20
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("country", b.Country)
	params.Set("search_lang", b.Lang)
	if f := braveFreshness(timeRange); f != "" {
		params.Set("freshness", f)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave api status: %d", resp.StatusCode)
	}

	var result braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("brave decode: %w", err)
	}

	articles := make([]news.Article, 0, len(result.Results))
	for i, item := range result.Results {
		if item.Description == "" {
			continue
		}
		articles = append(articles, news.Article{
			ID:      strconv.Itoa(i + 1),
			Title:   item.Title,
			URL:     item.URL,
			Source:  news.SourceFromURL(item.URL),
			Content: item.Description,
		})
	}
	return articles, nil
}
