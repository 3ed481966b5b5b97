// Package store provides chunk storage backends with per-conversation
// similarity search. Backends share one interface so the agent can run
// against an in-memory map, Redis, SQLite, or Postgres unchanged.
package store

import (
	"context"
	"math"
	"sort"

	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

// ChunkStore persists embedded chunks scoped to a conversation.
type ChunkStore interface {
	// Add stores chunks, skipping any whose ChunkID is already present.
	// It returns the number actually stored.
	Add(ctx context.Context, chunks []news.Chunk) (int, error)

	// Query returns up to k chunks of the conversation whose cosine
	// similarity to embedding meets threshold, ordered by similarity
	// descending.
	Query(ctx context.Context, embedding []float32, conversationID string, k int, threshold float64) ([]news.RetrievedChunk, error)

	// ByConversation returns all chunks of a conversation.
	ByConversation(ctx context.Context, conversationID string) ([]news.Chunk, error)

	// DeleteConversation removes a conversation's chunks and returns how
	// many were removed.
	DeleteConversation(ctx context.Context, conversationID string) (int, error)
}

// Cosine returns the cosine similarity of two vectors, 0 when either is
// zero-length or the dimensions differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopK scores candidates against embedding and keeps those at or above
// threshold, sorted by similarity descending, truncated to k. Shared by
// backends that filter in process.
func TopK(candidates []news.Chunk, embedding []float32, k int, threshold float64) []news.RetrievedChunk {
	scored := make([]news.RetrievedChunk, 0, len(candidates))
	for _, c := range candidates {
		sim := Cosine(embedding, c.Embedding)
		if sim < threshold {
			continue
		}
		scored = append(scored, news.RetrievedChunk{Chunk: c, Similarity: sim})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func sortChunks(chunks []news.Chunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].ArticleID != chunks[j].ArticleID {
			return chunks[i].ArticleID < chunks[j].ArticleID
		}
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})
}
