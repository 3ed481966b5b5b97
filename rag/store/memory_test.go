package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

func sampleChunks(conversationID string) []news.Chunk {
	return []news.Chunk{
		{
			ChunkID:        "a1_" + conversationID + "_0_aaaaaa",
			ArticleID:      "a1",
			ConversationID: conversationID,
			Content:        "Solid-state batteries reached a new energy density record this week.",
			ChunkIndex:     0,
			URL:            "https://example.com/batteries",
			Title:          "Battery breakthrough",
			Source:         "example.com",
			Embedding:      []float32{1, 0, 0},
		},
		{
			ChunkID:        "a1_" + conversationID + "_1_bbbbbb",
			ArticleID:      "a1",
			ConversationID: conversationID,
			Content:        "The manufacturer plans pilot production in 2027.",
			ChunkIndex:     1,
			URL:            "https://example.com/batteries",
			Title:          "Battery breakthrough",
			Source:         "example.com",
			Embedding:      []float32{0.8, 0.6, 0},
		},
		{
			ChunkID:        "a2_" + conversationID + "_0_cccccc",
			ArticleID:      "a2",
			ConversationID: conversationID,
			Content:        "An unrelated story about sports results.",
			ChunkIndex:     0,
			URL:            "https://example.com/sports",
			Title:          "Sports roundup",
			Source:         "example.com",
			Embedding:      []float32{0, 0, 1},
		},
	}
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, Cosine(nil, []float32{1}))
	assert.Equal(t, 0.0, Cosine([]float32{1, 2}, []float32{1}))
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 1}))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	convID := "conv-1"

	added, err := s.Add(ctx, sampleChunks(convID))
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	t.Run("duplicate chunk ids are skipped", func(t *testing.T) {
		again, err := s.Add(ctx, sampleChunks(convID)[:1])
		require.NoError(t, err)
		assert.Equal(t, 0, again)
	})

	t.Run("query orders by similarity and honors threshold", func(t *testing.T) {
		got, err := s.Query(ctx, []float32{1, 0, 0}, convID, 10, 0.3)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a1_conv-1_0_aaaaaa", got[0].ChunkID)
		assert.InDelta(t, 1.0, got[0].Similarity, 1e-9)
		assert.Equal(t, "a1_conv-1_1_bbbbbb", got[1].ChunkID)
		assert.Greater(t, got[0].Similarity, got[1].Similarity)
	})

	t.Run("query truncates to k", func(t *testing.T) {
		got, err := s.Query(ctx, []float32{1, 0, 0}, convID, 1, 0.0)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("conversations are isolated", func(t *testing.T) {
		got, err := s.Query(ctx, []float32{1, 0, 0}, "other-conv", 10, 0.0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("by conversation returns everything", func(t *testing.T) {
		got, err := s.ByConversation(ctx, convID)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("delete conversation", func(t *testing.T) {
		n, err := s.DeleteConversation(ctx, convID)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		got, err := s.ByConversation(ctx, convID)
		require.NoError(t, err)
		assert.Empty(t, got)

		// Deleted chunk ids may be re-added.
		added, err := s.Add(ctx, sampleChunks(convID)[:1])
		require.NoError(t, err)
		assert.Equal(t, 1, added)
	})
}
