// Package agent wires the retrieval, RAG, and LLM layers into two runnable
// pipelines: a summarize pipeline that searches, grades, summarizes, and
// optionally verifies, and a conversation pipeline that routes between
// initial summaries and follow-up answers over stored chunks.
package agent

import (
	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

// Pipeline status values. A run always terminates in StatusDone or
// StatusFailed.
const (
	StatusInit        = "init"
	StatusSearching   = "searching"
	StatusSummarizing = "summarizing"
	StatusVerifying   = "verifying"
	StatusRetrieving  = "retrieving"
	StatusIngesting   = "ingesting"
	StatusGenerating  = "generating"
	StatusDone        = "done"
	StatusFailed      = "failed"
)

// Query classes produced by the router.
const (
	QueryTypeNews    = "news"
	QueryTypeGeneral = "general"
)

// ErrNoArticles is the error string recorded when every search attempt came
// back empty.
const ErrNoArticles = "no_articles"

// NewsState carries one summarize run through the pipeline.
type NewsState struct {
	Query             string              `json:"query"`
	QueryType         string              `json:"query_type"`
	TimeRange         string              `json:"time_range"`
	Articles          []news.Article      `json:"articles"`
	Summary           *news.Summary       `json:"summary,omitempty"`
	SearchAttempts    int                 `json:"search_attempts"`
	MaxSearchAttempts int                 `json:"max_search_attempts"`
	MaxArticles       int                 `json:"max_articles"`
	SearchBackend     string              `json:"search_backend,omitempty"`
	VerificationOn    bool                `json:"verification_enabled"`
	Verification      *news.Verification  `json:"verification_result,omitempty"`
	Status            string              `json:"status"`
	Error             string              `json:"error,omitempty"`
}

// Message classes for the conversation pipeline.
const (
	MessageInitial  = "initial"
	MessageFollowup = "followup"
)

// Answer types returned by the conversation pipeline.
const (
	AnswerTypeSummary      = "summary"
	AnswerTypeFollowup     = "followup_answer"
	AnswerTypeWebAugmented = "web_augmented_answer"
)

// RAGState carries one conversation turn through the pipeline.
type RAGState struct {
	Query          string                `json:"query"`
	ConversationID string                `json:"conversation_id"`
	UserID         string                `json:"user_id,omitempty"`
	MessageType    string                `json:"message_type"`
	TimeRange      string                `json:"time_range"`
	MaxArticles    int                   `json:"max_articles"`
	MaxChunks      int                   `json:"max_chunks"`
	Articles       []news.Article        `json:"articles,omitempty"`
	NewArticles    []news.Article        `json:"new_articles,omitempty"`
	Chunks         []news.RetrievedChunk `json:"retrieved_chunks,omitempty"`
	Sufficient     bool                  `json:"retrieval_sufficient"`
	SufficiencyWhy string                `json:"sufficiency_reason,omitempty"`
	WebSearched    bool                  `json:"web_search_triggered"`
	AnswerText     string                `json:"answer_text,omitempty"`
	AnswerType     string                `json:"answer_type,omitempty"`
	Confidence     string                `json:"confidence,omitempty"`
	MissingInfo    string                `json:"missing_info,omitempty"`
	SourcesUsed    []news.SourceRef      `json:"sources_used,omitempty"`
	Status         string                `json:"status"`
	Error          string                `json:"error,omitempty"`
	Debug          map[string]any        `json:"debug_info,omitempty"`
}

func (s RAGState) withDebug(key string, value any) RAGState {
	debug := make(map[string]any, len(s.Debug)+1)
	for k, v := range s.Debug {
		debug[k] = v
	}
	debug[key] = value
	s.Debug = debug
	return s
}

// AgentResponse is the external shape of a finished conversation turn.
type AgentResponse struct {
	ConversationID string           `json:"conversation_id"`
	Answer         string           `json:"answer"`
	AnswerType     string           `json:"answer_type"`
	Sources        []news.SourceRef `json:"sources"`
	Confidence     string           `json:"confidence,omitempty"`
	MissingInfo    string           `json:"missing_info,omitempty"`
	WebSearched    bool             `json:"web_search_triggered"`
	Status         string           `json:"status"`
	Error          string           `json:"error,omitempty"`
	Debug          map[string]any   `json:"debug,omitempty"`
}

// ResponseFromState projects the final pipeline state into the API shape.
func ResponseFromState(s RAGState, includeDebug bool) AgentResponse {
	resp := AgentResponse{
		ConversationID: s.ConversationID,
		Answer:         s.AnswerText,
		AnswerType:     s.AnswerType,
		Sources:        s.SourcesUsed,
		Confidence:     s.Confidence,
		MissingInfo:    s.MissingInfo,
		WebSearched:    s.WebSearched,
		Status:         s.Status,
		Error:          s.Error,
	}
	if includeDebug {
		resp.Debug = s.Debug
	}
	return resp
}
