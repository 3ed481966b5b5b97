package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrooklynD23/RAG-Agent-CS4200/agent"
	"github.com/BrooklynD23/RAG-Agent-CS4200/llm"
	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
	"github.com/BrooklynD23/RAG-Agent-CS4200/rag"
	"github.com/BrooklynD23/RAG-Agent-CS4200/rag/store"
	"github.com/BrooklynD23/RAG-Agent-CS4200/search"
)

type staticProvider struct {
	articles []news.Article
}

func (p *staticProvider) Name() string { return "static" }

func (p *staticProvider) Search(context.Context, string, string, int) ([]news.Article, error) {
	return p.articles, nil
}

type staticEmbedder struct{}

func (staticEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

func (e staticEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func testArticles() []news.Article {
	now := time.Now()
	return []news.Article{
		{ID: "1", Title: "Rate decision", URL: "https://example.com/rates", Source: "example.com",
			PublishedAt: &now, Content: "The central bank raised rates by 0.25 percentage points this week, the third consecutive increase this cycle."},
		{ID: "2", Title: "Market reaction", URL: "https://example.com/markets", Source: "example.com",
			PublishedAt: &now, Content: "Equities fell sharply after the announcement on Tuesday, with rate-sensitive sectors leading the decline."},
		{ID: "3", Title: "Bank statement", URL: "https://example.com/statement", Source: "example.com",
			PublishedAt: &now, Content: "The accompanying statement cited persistent inflation pressure as the main reason for continued tightening."},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerWith(t, llm.CompleterFunc(func(_ context.Context, system, _ string) (string, error) {
		if strings.Contains(system, "news summarization agent") {
			return `{
				"summary_text": "Rates rose by **0.25 points**.[1]",
				"sentences": [{"text": "Rates rose by 0.25 points.", "source_ids": ["1"]}]
			}`, nil
		}
		if strings.Contains(system, "fact-checking") {
			return `{"overall_verdict": "accept", "issues": []}`, nil
		}
		return `{"answer": "Rates rose. [Source 1]", "sources_used": [1], "confidence": "high", "missing_info": null}`, nil
	}))
}

func newTestServerWith(t *testing.T, completer llm.Completer) *Server {
	t.Helper()

	provider := &staticProvider{articles: testArticles()}
	retriever := search.NewRetriever(search.NewCache(time.Minute), provider)

	newsAgent, err := agent.NewNewsAgent(
		agent.NewClassifier(nil), retriever, agent.NewSummarizer(completer, "test-model"), agent.NewCritic(completer))
	require.NoError(t, err)

	memStore := store.NewMemoryStore()
	embedder := staticEmbedder{}
	convAgent, err := agent.NewConversationAgent(
		retriever,
		nil,
		rag.NewIngestor(rag.NewSplitter(1000, 150), embedder, memStore),
		rag.NewRetriever(embedder, memStore, 10, 0.3),
		rag.NewSufficiencyChecker(rag.DefaultThresholds()),
		agent.NewAnswerGenerator(completer),
		memStore,
	)
	require.NoError(t, err)

	return New(newsAgent, convAgent)
}

func postJSON(t *testing.T, srv http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSummarizeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/summarize", SummarizeRequest{
		Query:        "latest rate decision",
		Verification: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SummarizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, agent.StatusDone, resp.Status)
	assert.Equal(t, agent.QueryTypeNews, resp.QueryType)
	require.NotNil(t, resp.Summary)
	assert.NotEmpty(t, resp.Summary.Sentences)
	assert.Contains(t, resp.SummaryHTML, "<strong>0.25 points</strong>")
	assert.Len(t, resp.Sources, 3)
	require.NotNil(t, resp.Verification)
	assert.Equal(t, "accept", resp.Verification.OverallVerdict)

	t.Run("missing query", func(t *testing.T) {
		rec := postJSON(t, srv, "/summarize", SummarizeRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		meta, ok := body["meta"].(map[string]any)
		require.True(t, ok)
		assert.NotEmpty(t, meta["error"])
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader("{broken"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSummarizeEndpointDegradesOnSummarizerFailure(t *testing.T) {
	// A model that answers in prose never turns into an HTTP failure: the
	// endpoint reports the failed run with the retrieved sources and the
	// parse error in the metadata.
	srv := newTestServerWith(t, llm.CompleterFunc(func(context.Context, string, string) (string, error) {
		return "I cannot answer in the requested format.", nil
	}))

	rec := postJSON(t, srv, "/summarize", SummarizeRequest{Query: "latest rate decision"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SummarizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, agent.StatusFailed, resp.Status)
	assert.Nil(t, resp.Summary)
	assert.Len(t, resp.Sources, 3)
	assert.Contains(t, resp.Meta["error"], "non-JSON")
}

func TestSummarizeEndpointSurfacesMissingKey(t *testing.T) {
	srv := newTestServerWith(t, llm.CompleterFunc(func(context.Context, string, string) (string, error) {
		return "", llm.ErrNotConfigured
	}))

	rec := postJSON(t, srv, "/summarize", SummarizeRequest{Query: "latest rate decision"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SummarizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, agent.StatusFailed, resp.Status)
	assert.Len(t, resp.Sources, 3)
	assert.Contains(t, resp.Meta["error"], "not configured")
}

func TestQueryAndConversationEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/query", QueryRequest{Message: "latest rate decision"})
	require.Equal(t, http.StatusOK, rec.Code)

	var first QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, agent.StatusDone, first.Status)
	assert.Equal(t, agent.AnswerTypeSummary, first.AnswerType)
	require.NotEmpty(t, first.ConversationID)
	assert.NotEmpty(t, first.AnswerHTML)

	t.Run("follow-up reuses the conversation", func(t *testing.T) {
		rec := postJSON(t, srv, "/query", QueryRequest{
			ConversationID: first.ConversationID,
			Message:        "why did they raise rates",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var followup QueryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &followup))
		assert.Equal(t, first.ConversationID, followup.ConversationID)
		assert.Equal(t, agent.AnswerTypeFollowup, followup.AnswerType)
	})

	t.Run("sources", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/conversations/"+first.ConversationID+"/sources", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			ConversationID string           `json:"conversation_id"`
			Sources        []news.SourceRef `json:"sources"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, first.ConversationID, body.ConversationID)
		assert.Len(t, body.Sources, 3)
	})

	t.Run("delete conversation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/conversations/"+first.ConversationID, nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			ChunksDeleted int `json:"chunks_deleted"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 3, body.ChunksDeleted)
	})

	t.Run("missing message", func(t *testing.T) {
		rec := postJSON(t, srv, "/query", QueryRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDebugRunGraph(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/debug/run-graph", SummarizeRequest{Query: "latest rate decision"})
	require.Equal(t, http.StatusOK, rec.Code)

	var state agent.NewsState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, agent.StatusDone, state.Status)
	assert.Len(t, state.Articles, 3)
}
