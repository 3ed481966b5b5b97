// Package fetch enriches search-result snippets with the full article body:
// it downloads the page, extracts paragraph text with goquery and sanitizes
// it with bluemonday before the text reaches the chunker.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/BrooklynD23/RAG-Agent-CS4200/log"
	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

// maxBodyBytes caps the extracted text so one page cannot dominate the
// chunker input.
const maxBodyBytes = 32 * 1024

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher downloads article pages and extracts readable text.
type Fetcher struct {
	client *http.Client
	policy *bluemonday.Policy
	logger log.Logger
}

// New creates a fetcher with the given per-request timeout.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		policy: bluemonday.StrictPolicy(),
		logger: log.Default(),
	}
}

// SetLogger overrides the fetcher's logger.
func (f *Fetcher) SetLogger(l log.Logger) {
	f.logger = l
}

// Body downloads a URL and returns the article paragraphs as plain text.
func (f *Fetcher) Body(ctx context.Context, rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", errors.New("fetch url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trimmed, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch http %d for %s", resp.StatusCode, trimmed)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetch parse: %w", err)
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()

	var parts []string
	doc.Find("article p, main p, p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			parts = append(parts, text)
		}
	})

	body := strings.Join(parts, "\n\n")
	body = html.UnescapeString(f.policy.Sanitize(body))
	if len(body) > maxBodyBytes {
		cut := maxBodyBytes
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	return body, nil
}

// Enrich replaces each article's snippet content with the fetched page body
// where the fetch succeeds and yields more text than the snippet. Failures
// keep the snippet; they are logged, not returned.
func (f *Fetcher) Enrich(ctx context.Context, articles []news.Article) []news.Article {
	out := make([]news.Article, len(articles))
	copy(out, articles)
	for i := range out {
		body, err := f.Body(ctx, out[i].URL)
		if err != nil {
			f.logger.Debugf("fetch enrich skip url=%s: %v", out[i].URL, err)
			continue
		}
		if len(body) > len(out[i].Content) {
			out[i].Content = body
		}
	}
	return out
}
