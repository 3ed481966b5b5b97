package rag

import (
	"context"
	"fmt"

	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
	"github.com/BrooklynD23/RAG-Agent-CS4200/rag/store"
)

// Retriever embeds a query and pulls the most similar chunks of a
// conversation from the store.
type Retriever struct {
	embedder  Embedder
	store     store.ChunkStore
	k         int
	threshold float64
}

// NewRetriever creates a retriever. Non-positive k defaults to 10, a
// non-positive threshold to 0.3.
func NewRetriever(embedder Embedder, chunkStore store.ChunkStore, k int, threshold float64) *Retriever {
	if k <= 0 {
		k = 10
	}
	if threshold <= 0 {
		threshold = 0.3
	}
	return &Retriever{
		embedder:  embedder,
		store:     chunkStore,
		k:         k,
		threshold: threshold,
	}
}

// Retrieve returns the conversation's chunks most similar to query, best
// first.
func (r *Retriever) Retrieve(ctx context.Context, query, conversationID string) ([]news.RetrievedChunk, error) {
	embedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := r.store.Query(ctx, embedding, conversationID, r.k, r.threshold)
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}
	return chunks, nil
}
