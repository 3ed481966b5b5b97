// Package server exposes the news agent over a JSON HTTP API.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gomarkdown/markdown"

	"github.com/BrooklynD23/RAG-Agent-CS4200/agent"
	"github.com/BrooklynD23/RAG-Agent-CS4200/log"
	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

// Server routes HTTP requests to the two agent pipelines.
type Server struct {
	newsAgent *agent.NewsAgent
	convAgent *agent.ConversationAgent
	logger    log.Logger
	mux       *http.ServeMux
}

// New creates a server around the given agents.
func New(newsAgent *agent.NewsAgent, convAgent *agent.ConversationAgent) *Server {
	s := &Server{
		newsAgent: newsAgent,
		convAgent: convAgent,
		logger:    log.Default(),
		mux:       http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /summarize", s.handleSummarize)
	s.mux.HandleFunc("POST /query", s.handleQuery)
	s.mux.HandleFunc("GET /conversations/{id}/sources", s.handleSources)
	s.mux.HandleFunc("DELETE /conversations/{id}", s.handleClearConversation)
	s.mux.HandleFunc("POST /debug/run-graph", s.handleDebugRunGraph)

	return s
}

// SetLogger replaces the server's logger.
func (s *Server) SetLogger(logger log.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts serving on addr and blocks.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Infof("listening on %s", addr)
	return http.ListenAndServe(addr, s)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorf("write response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{
		"status": "error",
		"meta":   map[string]any{"error": msg},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// SummarizeRequest is the body of POST /summarize.
type SummarizeRequest struct {
	Query             string `json:"query"`
	TimeRange         string `json:"time_range"`
	Verification      bool   `json:"verification"`
	MaxArticles       int    `json:"max_articles"`
	MaxSearchAttempts int    `json:"max_search_attempts"`
}

// SummarizeResponse is the body of POST /summarize. Sources carries the
// retrieved articles even when no summary was produced.
type SummarizeResponse struct {
	Status       string             `json:"status"`
	QueryType    string             `json:"query_type"`
	Summary      *news.Summary      `json:"summary,omitempty"`
	SummaryHTML  string             `json:"summary_html,omitempty"`
	Sources      []news.SourceRef   `json:"sources"`
	Verification *news.Verification `json:"verification,omitempty"`
	Meta         map[string]any     `json:"meta"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	final, err := s.newsAgent.Run(r.Context(), agent.NewsRequest{
		Query:             req.Query,
		TimeRange:         req.TimeRange,
		Verification:      req.Verification,
		MaxArticles:       req.MaxArticles,
		MaxSearchAttempts: req.MaxSearchAttempts,
	})
	if err != nil {
		s.logger.Errorf("summarize pipeline: %v", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := SummarizeResponse{
		Status:       final.Status,
		QueryType:    final.QueryType,
		Summary:      final.Summary,
		Sources:      news.SourceRefsFromArticles(final.Articles),
		Verification: final.Verification,
		Meta: map[string]any{
			"search_attempts": final.SearchAttempts,
			"search_backend":  final.SearchBackend,
		},
	}
	if final.Error != "" {
		resp.Meta["error"] = final.Error
	}
	if final.Summary != nil {
		resp.SummaryHTML = renderMarkdown(final.Summary.SummaryText)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	Message        string `json:"message"`
	TimeRange      string `json:"time_range"`
	MaxArticles    int    `json:"max_articles"`
	MaxChunks      int    `json:"max_chunks"`
	IncludeDebug   bool   `json:"include_debug"`
}

// QueryResponse is the body of a successful POST /query.
type QueryResponse struct {
	agent.AgentResponse
	AnswerHTML string `json:"answer_html,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	resp, err := s.convAgent.Query(r.Context(), agent.QueryRequest{
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
		Message:        req.Message,
		TimeRange:      req.TimeRange,
		MaxArticles:    req.MaxArticles,
		MaxChunks:      req.MaxChunks,
		IncludeDebug:   req.IncludeDebug,
	})
	if err != nil {
		s.logger.Errorf("query pipeline: %v", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, QueryResponse{
		AgentResponse: resp,
		AnswerHTML:    renderMarkdown(resp.Answer),
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sources, err := s.convAgent.Sources(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sources == nil {
		sources = []news.SourceRef{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"sources":         sources,
	})
}

func (s *Server) handleClearConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	deleted, err := s.convAgent.ClearConversation(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"chunks_deleted":  deleted,
	})
}

// handleDebugRunGraph runs the summarize pipeline and returns the raw final
// state for inspection.
func (s *Server) handleDebugRunGraph(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	final, err := s.newsAgent.Run(r.Context(), agent.NewsRequest{
		Query:             req.Query,
		TimeRange:         req.TimeRange,
		Verification:      req.Verification,
		MaxArticles:       req.MaxArticles,
		MaxSearchAttempts: req.MaxSearchAttempts,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, final)
}

func renderMarkdown(text string) string {
	if text == "" {
		return ""
	}
	return string(markdown.ToHTML([]byte(text), nil, nil))
}
