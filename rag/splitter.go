// Package rag implements the semantic-retrieval layer: chunking article
// bodies, embedding chunks, storing them per conversation, retrieving them by
// similarity, and judging whether what was retrieved suffices to answer.
package rag

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

// Splitter cuts text into fixed-size windows with overlap, preferring to
// break at a separator when one falls inside the window.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separator    string
}

// NewSplitter creates a splitter. Non-positive sizes fall back to the
// defaults used for news articles (1000/150).
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 150
	}
	return &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separator:    "\n\n",
	}
}

// SplitText splits text into chunks.
func (s *Splitter) SplitText(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= s.ChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + s.ChunkSize
		if end > len(text) {
			end = len(text)
		}

		if end < len(text) {
			// Never cut inside a multi-byte rune.
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == start {
				_, size := utf8.DecodeRuneInString(text[start:])
				end = start + size
			}
			// Prefer breaking at a separator inside the window.
			if sep := strings.LastIndex(text[start:end], s.Separator); sep > 0 {
				end = start + sep + len(s.Separator)
			}
		}

		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := end - s.ChunkOverlap
		if next <= start {
			next = end
		}
		for next < len(text) && !utf8.RuneStart(text[next]) {
			next++
		}
		start = next
	}

	return chunks
}

var (
	reSpaces     = regexp.MustCompile(`[ \t]+`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes whitespace before chunking: runs of spaces collapse,
// three-plus newlines become a paragraph break.
func CleanText(text string) string {
	text = reSpaces.ReplaceAllString(text, " ")
	text = reBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ChunkArticle splits one article's cleaned body into conversation-tagged
// chunks carrying the article metadata.
func (s *Splitter) ChunkArticle(article news.Article, conversationID string) []news.Chunk {
	cleaned := CleanText(article.Content)
	if cleaned == "" {
		return nil
	}

	pieces := s.SplitText(cleaned)
	chunks := make([]news.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, news.Chunk{
			ChunkID:        chunkID(article.ID, conversationID, i),
			ArticleID:      article.ID,
			ConversationID: conversationID,
			Content:        piece,
			ChunkIndex:     i,
			URL:            article.URL,
			Title:          article.Title,
			Source:         article.Source,
			PublishedAt:    article.PublishedAt,
		})
	}
	return chunks
}

func chunkID(articleID, conversationID string, index int) string {
	return fmt.Sprintf("%s_%s_%d_%s", articleID, conversationID, index, uuid.NewString()[:6])
}
