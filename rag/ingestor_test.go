package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
	"github.com/BrooklynD23/RAG-Agent-CS4200/rag/store"
)

// fakeEmbedder maps text onto a fixed axis per leading keyword so similarity
// is predictable in tests.
type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		switch {
		case strings.Contains(strings.ToLower(text), "battery"):
			vectors[i] = []float32{1, 0, 0}
		case strings.Contains(strings.ToLower(text), "sports"):
			vectors[i] = []float32{0, 1, 0}
		default:
			vectors[i] = []float32{0, 0, 1}
		}
	}
	return vectors, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func testArticles() []news.Article {
	return []news.Article{
		{
			ID:      "a1",
			Title:   "Battery breakthrough",
			URL:     "https://example.com/batteries",
			Source:  "example.com",
			Content: strings.Repeat("Battery density records fell again this quarter. ", 8),
		},
		{
			ID:      "a2",
			Title:   "Sports roundup",
			URL:     "https://example.com/sports",
			Source:  "example.com",
			Content: strings.Repeat("Sports scores from the weekend fixtures. ", 8),
		},
		{ID: "a3", Title: "Empty", URL: "https://example.com/empty", Content: "  "},
	}
}

func TestIngestorIngest(t *testing.T) {
	ctx := context.Background()
	memStore := store.NewMemoryStore()
	ing := NewIngestor(NewSplitter(1000, 150), &fakeEmbedder{}, memStore)

	result, err := ing.Ingest(ctx, testArticles(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Articles)
	assert.Equal(t, 2, result.ChunksStored)
	assert.Equal(t, 1, result.Skipped)

	stored, err := memStore.ByConversation(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, c := range stored {
		assert.NotEmpty(t, c.Embedding)
	}

	t.Run("re-ingesting adds fresh chunk ids", func(t *testing.T) {
		again, err := ing.Ingest(ctx, testArticles()[:1], "conv-1")
		require.NoError(t, err)
		assert.Equal(t, 1, again.ChunksStored)
	})

	t.Run("embedder failure propagates", func(t *testing.T) {
		broken := NewIngestor(NewSplitter(1000, 150), &fakeEmbedder{err: errors.New("quota exceeded")}, memStore)
		_, err := broken.Ingest(ctx, testArticles()[:1], "conv-1")
		assert.Error(t, err)
	})

	t.Run("all-empty input stores nothing", func(t *testing.T) {
		result, err := ing.Ingest(ctx, []news.Article{{ID: "a9", Content: ""}}, "conv-1")
		require.NoError(t, err)
		assert.Zero(t, result.ChunksStored)
		assert.Equal(t, 1, result.Skipped)
	})
}

func TestRetrieverRetrieve(t *testing.T) {
	ctx := context.Background()
	memStore := store.NewMemoryStore()
	ing := NewIngestor(NewSplitter(1000, 150), &fakeEmbedder{}, memStore)

	_, err := ing.Ingest(ctx, testArticles(), "conv-1")
	require.NoError(t, err)

	r := NewRetriever(&fakeEmbedder{}, memStore, 10, 0.3)

	t.Run("finds matching conversation chunks", func(t *testing.T) {
		got, err := r.Retrieve(ctx, "battery progress", "conv-1")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a1", got[0].ArticleID)
		assert.InDelta(t, 1.0, got[0].Similarity, 1e-9)
	})

	t.Run("other conversations stay invisible", func(t *testing.T) {
		got, err := r.Retrieve(ctx, "battery progress", "conv-2")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("embedder failure propagates", func(t *testing.T) {
		broken := NewRetriever(&fakeEmbedder{err: errors.New("quota exceeded")}, memStore, 10, 0.3)
		_, err := broken.Retrieve(ctx, "battery progress", "conv-1")
		assert.Error(t, err)
	})
}
