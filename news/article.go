// Package news defines the domain types shared across the agent: articles
// fetched from search providers, chunks stored in the vector store, and the
// cited summaries produced by the LLM.
package news

import (
	"net/url"
	"strings"
	"time"
)

// Article is a single news document returned by a search provider.
// Articles are immutable once retrieved; the ID is unique within one
// retrieval batch and is what summary sentences cite.
type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Content     string     `json:"content"`
	Score       float64    `json:"score,omitempty"`
}

// SourceFromURL derives the source domain from an article URL.
func SourceFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// normalizeTitle lowers the case and collapses whitespace so that
// near-identical titles from different providers compare equal.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// Deduplicate collapses articles that share a URL or a near-identical title,
// keeping the entry with the higher relevance score. Input order is preserved
// for the surviving entries.
func Deduplicate(articles []Article) []Article {
	type key struct {
		url   string
		title string
	}

	index := make(map[string]int) // url or normalized title -> position in out
	out := make([]Article, 0, len(articles))

	better := func(a, b Article) bool { return a.Score > b.Score }

	for _, a := range articles {
		keys := make([]string, 0, 2)
		if a.URL != "" {
			keys = append(keys, "u:"+a.URL)
		}
		if t := normalizeTitle(a.Title); t != "" {
			keys = append(keys, "t:"+t)
		}

		dup := -1
		for _, k := range keys {
			if pos, ok := index[k]; ok {
				dup = pos
				break
			}
		}

		if dup >= 0 {
			if better(a, out[dup]) {
				out[dup] = a
			}
			continue
		}

		pos := len(out)
		out = append(out, a)
		for _, k := range keys {
			index[k] = pos
		}
	}

	return out
}

// MergeBatches deduplicates articles accumulated across search attempts.
// Articles from later attempts that repeat a URL already seen are dropped
// unless they carry a higher score.
func MergeBatches(batches ...[]Article) []Article {
	var all []Article
	for _, b := range batches {
		all = append(all, b...)
	}
	return Deduplicate(all)
}
