package news

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCitations(t *testing.T) {
	summary := Summary{
		Topic:       "batteries",
		SummaryText: "text",
		Sentences: []SummarySentence{
			{Text: "claim one", SourceIDs: []string{"1", "2"}},
			{Text: "claim two", SourceIDs: []string{"2"}},
		},
		Sources: []Article{{ID: "1"}, {ID: "2"}},
	}
	assert.NoError(t, summary.ValidateCitations())

	summary.Sentences = append(summary.Sentences, SummarySentence{
		Text: "fabricated", SourceIDs: []string{"99"},
	})
	assert.Error(t, summary.ValidateCitations())
}

func TestFilterCitations(t *testing.T) {
	summary := Summary{
		Sentences: []SummarySentence{
			{Text: "a", SourceIDs: []string{"1", "99"}},
			{Text: "b", SourceIDs: []string{"nope"}},
		},
		Sources: []Article{{ID: "1"}},
	}
	summary.FilterCitations()
	assert.NoError(t, summary.ValidateCitations())
	assert.Equal(t, []string{"1"}, summary.Sentences[0].SourceIDs)
	assert.Empty(t, summary.Sentences[1].SourceIDs)
}

func TestSourceRefsFromArticles(t *testing.T) {
	refs := SourceRefsFromArticles([]Article{
		{ID: "1", Title: "A", URL: "https://x/a", Source: "x"},
		{ID: "2", Title: "B", URL: "https://x/b", Source: "x"},
	})
	assert.Len(t, refs, 2)
	assert.Equal(t, "1", refs[0].ArticleID)
	assert.Equal(t, "https://x/b", refs[1].URL)

	assert.Empty(t, SourceRefsFromArticles(nil))
}

func TestSourceRefsFromChunks(t *testing.T) {
	chunks := []RetrievedChunk{
		{Chunk: Chunk{ArticleID: "a", Title: "A", URL: "https://x/a"}, Similarity: 0.9},
		{Chunk: Chunk{ArticleID: "a", Title: "A", URL: "https://x/a"}, Similarity: 0.8},
		{Chunk: Chunk{ArticleID: "b", Title: "B", URL: "https://x/b"}, Similarity: 0.7},
	}
	refs := SourceRefsFromChunks(chunks)
	assert.Len(t, refs, 2)
	assert.Equal(t, "a", refs[0].ArticleID)
	assert.Equal(t, "b", refs[1].ArticleID)
}
