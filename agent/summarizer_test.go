package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrooklynD23/RAG-Agent-CS4200/llm"
	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

func summaryArticles() []news.Article {
	return []news.Article{
		{ID: "1", Title: "Rate decision", URL: "https://example.com/rates", Source: "example.com",
			Content: "The central bank raised rates by 0.25 points."},
		{ID: "2", Title: "Market reaction", URL: "https://example.com/markets", Source: "example.com",
			Content: "Equities fell after the announcement."},
	}
}

func TestSummarizerNoArticles(t *testing.T) {
	s := NewSummarizer(llm.CompleterFunc(func(context.Context, string, string) (string, error) {
		t.Fatal("completer should not be called")
		return "", nil
	}), "test-model")

	summary, err := s.Summarize(context.Background(), "rates", nil)
	require.NoError(t, err)
	assert.Empty(t, summary.Sentences)
	assert.Equal(t, ErrNoArticles, summary.Meta["warning"])
	assert.NotEmpty(t, summary.SummaryText)
}

func TestSummarizerParsesSentences(t *testing.T) {
	s := NewSummarizer(llm.CompleterFunc(func(_ context.Context, _, user string) (string, error) {
		var in summarizerInput
		require.NoError(t, json.Unmarshal([]byte(user), &in))
		assert.Equal(t, "rates", in.Topic)
		assert.Len(t, in.Articles, 2)

		return "```json\n" + `{
			"summary_text": "Rates rose by 0.25 points.[1] Markets fell.[2]",
			"sentences": [
				{"text": "Rates rose by 0.25 points.", "source_ids": ["1"]},
				{"text": "Markets fell.", "source_ids": ["2", "99"]}
			]
		}` + "\n```", nil
	}), "test-model")

	summary, err := s.Summarize(context.Background(), "rates", summaryArticles())
	require.NoError(t, err)
	require.Len(t, summary.Sentences, 2)
	assert.Equal(t, []string{"1"}, summary.Sentences[0].SourceIDs)

	// The unknown citation "99" is filtered, so the invariant always holds.
	assert.Equal(t, []string{"2"}, summary.Sentences[1].SourceIDs)
	assert.NoError(t, summary.ValidateCitations())
	assert.Equal(t, "test-model", summary.Meta["model"])
}

func TestSummarizerRejectsMalformedOutput(t *testing.T) {
	t.Run("non-json", func(t *testing.T) {
		s := NewSummarizer(llm.CompleterFunc(func(context.Context, string, string) (string, error) {
			return "here is your summary", nil
		}), "test-model")
		_, err := s.Summarize(context.Background(), "rates", summaryArticles())
		assert.ErrorContains(t, err, "non-JSON")
	})

	t.Run("missing keys", func(t *testing.T) {
		s := NewSummarizer(llm.CompleterFunc(func(context.Context, string, string) (string, error) {
			return `{"sentences": []}`, nil
		}), "test-model")
		_, err := s.Summarize(context.Background(), "rates", summaryArticles())
		assert.ErrorContains(t, err, "missing required keys")
	})

	t.Run("provider error", func(t *testing.T) {
		s := NewSummarizer(llm.CompleterFunc(func(context.Context, string, string) (string, error) {
			return "", errors.New("timeout")
		}), "test-model")
		_, err := s.Summarize(context.Background(), "rates", summaryArticles())
		assert.Error(t, err)
	})
}

func TestCriticVerify(t *testing.T) {
	summary := &news.Summary{
		Topic:       "rates",
		SummaryText: "Rates rose.[1]",
		Sentences:   []news.SummarySentence{{Text: "Rates rose.", SourceIDs: []string{"1"}}},
		Sources:     summaryArticles(),
	}

	t.Run("parses verdict", func(t *testing.T) {
		c := NewCritic(llm.CompleterFunc(func(_ context.Context, _, user string) (string, error) {
			var in criticInput
			require.NoError(t, json.Unmarshal([]byte(user), &in))
			assert.Len(t, in.Articles, 2)

			return `{
				"overall_verdict": "revise",
				"issues": [{"sentence_index": 0, "verdict": "partial", "reason": "magnitude missing", "suggested_fix": "state 0.25 points"}]
			}`, nil
		}))

		verdict, err := c.Verify(context.Background(), summary, summaryArticles())
		require.NoError(t, err)
		assert.Equal(t, "revise", verdict.OverallVerdict)
		require.Len(t, verdict.Issues, 1)
		assert.Equal(t, "partial", verdict.Issues[0].Verdict)
	})

	t.Run("missing verdict key", func(t *testing.T) {
		c := NewCritic(llm.CompleterFunc(func(context.Context, string, string) (string, error) {
			return `{"issues": []}`, nil
		}))
		_, err := c.Verify(context.Background(), summary, summaryArticles())
		assert.ErrorContains(t, err, "missing required keys")
	})

	t.Run("not configured", func(t *testing.T) {
		c := NewCritic(llm.CompleterFunc(func(context.Context, string, string) (string, error) {
			return "", llm.ErrNotConfigured
		}))
		_, err := c.Verify(context.Background(), summary, summaryArticles())
		assert.ErrorIs(t, err, llm.ErrNotConfigured)
	})
}

func TestParseAnswer(t *testing.T) {
	t.Run("clean json", func(t *testing.T) {
		got := parseAnswer(`{"answer": "Rates rose. [Source 1]", "sources_used": [1], "confidence": "high", "missing_info": null}`)
		assert.Equal(t, "Rates rose. [Source 1]", got.Answer)
		assert.Equal(t, []int{1}, got.SourcesUsed)
		assert.Equal(t, "high", got.Confidence)
		assert.Empty(t, got.MissingInfo)
	})

	t.Run("fenced json", func(t *testing.T) {
		got := parseAnswer("```json\n{\"answer\": \"ok\", \"sources_used\": [], \"confidence\": \"low\", \"missing_info\": \"dates\"}\n```")
		assert.Equal(t, "ok", got.Answer)
		assert.Equal(t, "dates", got.MissingInfo)
	})

	t.Run("json embedded in prose", func(t *testing.T) {
		got := parseAnswer(`Sure! {"answer": "embedded", "sources_used": [2], "confidence": "medium", "missing_info": null}`)
		assert.Equal(t, "embedded", got.Answer)
	})

	t.Run("unparseable falls back to raw text", func(t *testing.T) {
		got := parseAnswer("I could not produce JSON")
		assert.Equal(t, "I could not produce JSON", got.Answer)
		assert.Equal(t, "low", got.Confidence)
	})
}

func TestMapSourcesUsed(t *testing.T) {
	chunks := []news.RetrievedChunk{
		{Chunk: news.Chunk{ArticleID: "a1", URL: "https://example.com/1", Title: "One"}},
		{Chunk: news.Chunk{ArticleID: "a2", URL: "https://example.com/2", Title: "Two"}},
	}

	t.Run("valid indexes map to refs", func(t *testing.T) {
		refs := MapSourcesUsed([]int{2}, chunks)
		require.Len(t, refs, 1)
		assert.Equal(t, "a2", refs[0].ArticleID)
	})

	t.Run("out-of-range indexes fall back to all sources", func(t *testing.T) {
		refs := MapSourcesUsed([]int{0, 7}, chunks)
		assert.Len(t, refs, 2)
	})

	t.Run("empty usage falls back to all sources", func(t *testing.T) {
		refs := MapSourcesUsed(nil, chunks)
		assert.Len(t, refs, 2)
	})
}
