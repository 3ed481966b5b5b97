package news

import (
	"time"

	"github.com/google/uuid"
)

// NewConversationID returns a fresh opaque conversation identifier.
func NewConversationID() string {
	return uuid.NewString()
}

// Chunk is a bounded slice of an article's body prepared for vector storage.
// Chunks are created during ingestion, never mutated, and removed only when
// their conversation is cleared.
type Chunk struct {
	ChunkID        string     `json:"chunk_id"`
	ArticleID      string     `json:"article_id"`
	ConversationID string     `json:"conversation_id"`
	Content        string     `json:"content"`
	ChunkIndex     int        `json:"chunk_index"`
	URL            string     `json:"url"`
	Title          string     `json:"title"`
	Source         string     `json:"source"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	Embedding      []float32  `json:"embedding,omitempty"`
}

// RetrievedChunk is a chunk returned from a similarity query.
type RetrievedChunk struct {
	Chunk
	Similarity float64 `json:"similarity"`
}

// SourceRef is a deduplicated citation pointer derived from chunks, used in
// follow-up answers where whole articles are no longer in hand.
type SourceRef struct {
	ArticleID   string     `json:"article_id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// SourceRefsFromArticles maps fetched articles to citation references,
// preserving order.
func SourceRefsFromArticles(articles []Article) []SourceRef {
	refs := make([]SourceRef, len(articles))
	for i, a := range articles {
		refs[i] = SourceRef{
			ArticleID:   a.ID,
			URL:         a.URL,
			Title:       a.Title,
			Source:      a.Source,
			PublishedAt: a.PublishedAt,
		}
	}
	return refs
}

// SourceRefsFromChunks collapses chunks into one SourceRef per article,
// preserving retrieval order.
func SourceRefsFromChunks(chunks []RetrievedChunk) []SourceRef {
	seen := make(map[string]struct{}, len(chunks))
	refs := make([]SourceRef, 0, len(chunks))
	for _, c := range chunks {
		if _, ok := seen[c.ArticleID]; ok {
			continue
		}
		seen[c.ArticleID] = struct{}{}
		refs = append(refs, SourceRef{
			ArticleID:   c.ArticleID,
			URL:         c.URL,
			Title:       c.Title,
			Source:      c.Source,
			PublishedAt: c.PublishedAt,
		})
	}
	return refs
}
