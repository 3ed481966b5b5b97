package rag

import (
	"context"
	"fmt"

	"github.com/BrooklynD23/RAG-Agent-CS4200/log"
	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
	"github.com/BrooklynD23/RAG-Agent-CS4200/rag/store"
)

// IngestResult reports what an ingestion pass produced.
type IngestResult struct {
	Articles     int `json:"articles"`
	ChunksStored int `json:"chunks_stored"`
	Skipped      int `json:"skipped"`
}

// Ingestor turns articles into embedded chunks inside a conversation.
type Ingestor struct {
	splitter *Splitter
	embedder Embedder
	store    store.ChunkStore
	logger   log.Logger
}

// NewIngestor wires the ingestion pipeline.
func NewIngestor(splitter *Splitter, embedder Embedder, chunkStore store.ChunkStore) *Ingestor {
	return &Ingestor{
		splitter: splitter,
		embedder: embedder,
		store:    chunkStore,
		logger:   log.Default(),
	}
}

// SetLogger replaces the ingestor's logger.
func (in *Ingestor) SetLogger(logger log.Logger) {
	if logger != nil {
		in.logger = logger
	}
}

// Ingest chunks, embeds, and stores the articles under conversationID.
// Articles with no usable body are skipped, not failed.
func (in *Ingestor) Ingest(ctx context.Context, articles []news.Article, conversationID string) (IngestResult, error) {
	var result IngestResult
	var chunks []news.Chunk

	for _, a := range articles {
		pieces := in.splitter.ChunkArticle(a, conversationID)
		if len(pieces) == 0 {
			result.Skipped++
			in.logger.Debugf("skipping article %s: empty body", a.ID)
			continue
		}
		result.Articles++
		chunks = append(chunks, pieces...)
	}

	if len(chunks) == 0 {
		return result, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := in.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return result, fmt.Errorf("embed chunks: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	stored, err := in.store.Add(ctx, chunks)
	if err != nil {
		return result, fmt.Errorf("store chunks: %w", err)
	}
	result.ChunksStored = stored

	in.logger.Infof("ingested %d articles into %d chunks for conversation %s",
		result.Articles, stored, conversationID)
	return result, nil
}
