package agent

import (
	"context"
	"fmt"

	"github.com/BrooklynD23/RAG-Agent-CS4200/fetch"
	"github.com/BrooklynD23/RAG-Agent-CS4200/graph"
	"github.com/BrooklynD23/RAG-Agent-CS4200/log"
	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
	"github.com/BrooklynD23/RAG-Agent-CS4200/rag"
	"github.com/BrooklynD23/RAG-Agent-CS4200/rag/store"
	"github.com/BrooklynD23/RAG-Agent-CS4200/search"
)

// Node names of the conversation pipeline.
const (
	nodeClassifyMessage  = "classify_message"
	nodeFetchNews        = "fetch_news"
	nodeIngestArticles   = "ingest_articles"
	nodeGenerateSummary  = "generate_summary"
	nodeRetrieveChunks   = "retrieve_chunks"
	nodeCheckSufficiency = "check_sufficiency"
	nodeWebSearch        = "web_search"
	nodeIngestNew        = "ingest_new_articles"
	nodeGenerateAnswer   = "generate_answer"
)

// QueryRequest parameterizes one conversation turn.
type QueryRequest struct {
	ConversationID string
	UserID         string
	Message        string
	TimeRange      string
	MaxArticles    int
	MaxChunks      int
	IncludeDebug   bool
}

// ConversationAgent runs the conversation pipeline: initial turns fetch,
// ingest, and summarize; follow-up turns retrieve stored chunks, check
// sufficiency, and fall back to one web search when they come up short.
type ConversationAgent struct {
	retriever    *search.Retriever
	fetcher      *fetch.Fetcher
	ingestor     *rag.Ingestor
	ragRetriever *rag.Retriever
	sufficiency  *rag.SufficiencyChecker
	answerer     *AnswerGenerator
	chunks       store.ChunkStore
	logger       log.Logger
	runnable     *graph.Runnable[RAGState]
}

// NewConversationAgent wires the pipeline. The fetcher may be nil, in which
// case articles keep their provider snippets.
func NewConversationAgent(
	retriever *search.Retriever,
	fetcher *fetch.Fetcher,
	ingestor *rag.Ingestor,
	ragRetriever *rag.Retriever,
	sufficiency *rag.SufficiencyChecker,
	answerer *AnswerGenerator,
	chunks store.ChunkStore,
) (*ConversationAgent, error) {
	a := &ConversationAgent{
		retriever:    retriever,
		fetcher:      fetcher,
		ingestor:     ingestor,
		ragRetriever: ragRetriever,
		sufficiency:  sufficiency,
		answerer:     answerer,
		chunks:       chunks,
		logger:       log.Default(),
	}

	g := graph.NewStateGraph[RAGState]()
	g.AddNode(nodeClassifyMessage, "route between initial and follow-up turns", a.classifyMessage)
	g.AddNode(nodeFetchNews, "fetch articles for an initial query", a.fetchNews)
	g.AddNode(nodeIngestArticles, "chunk and embed fetched articles", a.ingestArticles)
	g.AddNode(nodeGenerateSummary, "summarize the initial fetch", a.generateSummary)
	g.AddNode(nodeRetrieveChunks, "retrieve stored chunks for a follow-up", a.retrieveChunks)
	g.AddNode(nodeCheckSufficiency, "judge whether retrieval suffices", a.checkSufficiency)
	g.AddNode(nodeWebSearch, "one-shot web search augmentation", a.webSearch)
	g.AddNode(nodeIngestNew, "ingest augmentation results and re-retrieve", a.ingestNewArticles)
	g.AddNode(nodeGenerateAnswer, "answer the follow-up from chunks", a.generateAnswer)

	g.SetEntryPoint(nodeClassifyMessage)
	g.AddConditionalEdge(nodeClassifyMessage, a.routeByMessageType)
	g.AddEdge(nodeFetchNews, nodeIngestArticles)
	g.AddEdge(nodeIngestArticles, nodeGenerateSummary)
	g.AddEdge(nodeGenerateSummary, graph.END)
	g.AddEdge(nodeRetrieveChunks, nodeCheckSufficiency)
	g.AddConditionalEdge(nodeCheckSufficiency, a.routeBySufficiency)
	g.AddEdge(nodeWebSearch, nodeIngestNew)
	g.AddEdge(nodeIngestNew, nodeGenerateAnswer)
	g.AddEdge(nodeGenerateAnswer, graph.END)

	runnable, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile conversation graph: %w", err)
	}
	a.runnable = runnable
	return a, nil
}

// SetLogger replaces the agent's logger.
func (a *ConversationAgent) SetLogger(logger log.Logger) {
	if logger != nil {
		a.logger = logger
	}
}

// Query runs one conversation turn. A missing conversation ID starts a new
// conversation.
func (a *ConversationAgent) Query(ctx context.Context, req QueryRequest) (AgentResponse, error) {
	convID := req.ConversationID
	if convID == "" {
		convID = news.NewConversationID()
	}
	if req.TimeRange == "" {
		req.TimeRange = search.TimeRangeWeek
	}
	if req.MaxArticles <= 0 {
		req.MaxArticles = 10
	}
	if req.MaxChunks <= 0 {
		req.MaxChunks = 10
	}

	initial := RAGState{
		Query:          req.Message,
		ConversationID: convID,
		UserID:         req.UserID,
		TimeRange:      req.TimeRange,
		MaxArticles:    req.MaxArticles,
		MaxChunks:      req.MaxChunks,
		Status:         StatusInit,
	}

	final, err := a.runnable.Invoke(ctx, initial)
	if err != nil {
		return AgentResponse{}, err
	}
	return ResponseFromState(final, req.IncludeDebug), nil
}

// Sources returns one reference per article stored for a conversation.
func (a *ConversationAgent) Sources(ctx context.Context, conversationID string) ([]news.SourceRef, error) {
	chunks, err := a.chunks.ByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	retrieved := make([]news.RetrievedChunk, len(chunks))
	for i, c := range chunks {
		retrieved[i] = news.RetrievedChunk{Chunk: c}
	}
	return news.SourceRefsFromChunks(retrieved), nil
}

// ClearConversation removes a conversation's chunks and reports how many
// were deleted.
func (a *ConversationAgent) ClearConversation(ctx context.Context, conversationID string) (int, error) {
	return a.chunks.DeleteConversation(ctx, conversationID)
}

func (a *ConversationAgent) classifyMessage(ctx context.Context, state RAGState) (RAGState, error) {
	existing, err := a.chunks.ByConversation(ctx, state.ConversationID)
	if err != nil {
		// An unreadable store classifies the turn as initial.
		a.logger.Warnf("inspect conversation %s: %v", state.ConversationID, err)
		state = state.withDebug("classify_error", err.Error())
		existing = nil
	}

	if len(existing) > 0 {
		state.MessageType = MessageFollowup
		state.Status = StatusRetrieving
	} else {
		state.MessageType = MessageInitial
		state.Status = StatusSearching
	}
	a.logger.Infof("conversation %s: message classified as %s (%d existing chunks)",
		state.ConversationID, state.MessageType, len(existing))
	return state, nil
}

func (a *ConversationAgent) routeByMessageType(_ context.Context, state RAGState) string {
	if state.MessageType == MessageFollowup {
		return nodeRetrieveChunks
	}
	return nodeFetchNews
}

func (a *ConversationAgent) fetchNews(ctx context.Context, state RAGState) (RAGState, error) {
	articles, backend := a.retriever.Retrieve(ctx, state.Query, state.TimeRange, state.MaxArticles)
	if len(articles) == 0 {
		a.logger.Warnf("no articles found for %q", state.Query)
	}
	if a.fetcher != nil {
		articles = a.fetcher.Enrich(ctx, articles)
	}

	state.Articles = articles
	state.Status = StatusIngesting
	state = state.withDebug("search_backend", backend)
	return state, nil
}

func (a *ConversationAgent) ingestArticles(ctx context.Context, state RAGState) (RAGState, error) {
	if len(state.Articles) == 0 {
		state.Status = StatusGenerating
		return state, nil
	}

	result, err := a.ingestor.Ingest(ctx, state.Articles, state.ConversationID)
	if err != nil {
		// A summary can still be produced straight from the articles.
		a.logger.Errorf("ingest failed: %v", err)
	}

	state.Status = StatusGenerating
	state = state.withDebug("chunks_stored", result.ChunksStored)
	return state, nil
}

func (a *ConversationAgent) generateSummary(ctx context.Context, state RAGState) (RAGState, error) {
	chunks, err := a.ragRetriever.Retrieve(ctx, state.Query, state.ConversationID)
	if err != nil {
		a.logger.Warnf("chunk retrieval for summary failed: %v", err)
	}

	if len(chunks) == 0 && len(state.Articles) == 0 {
		state.AnswerText = "No relevant news articles were found for this topic."
		state.AnswerType = AnswerTypeSummary
		state.SourcesUsed = []news.SourceRef{}
		state.Status = StatusDone
		return state, nil
	}

	// With no stored chunks, answer directly from the fetched articles.
	if len(chunks) == 0 {
		chunks = chunksFromArticles(state.Articles, state.ConversationID)
	}

	answer, err := a.answerer.Generate(ctx, state.Query, chunks, false)
	if err != nil {
		state.Status = StatusFailed
		state.Error = err.Error()
		return state, nil
	}

	state.AnswerText = answer.Answer
	state.AnswerType = AnswerTypeSummary
	state.Confidence = answer.Confidence
	state.MissingInfo = answer.MissingInfo
	state.SourcesUsed = MapSourcesUsed(answer.SourcesUsed, chunks)
	state.Status = StatusDone
	state = state.withDebug("chunks_used", len(chunks))
	return state, nil
}

func (a *ConversationAgent) retrieveChunks(ctx context.Context, state RAGState) (RAGState, error) {
	chunks, err := a.ragRetriever.Retrieve(ctx, state.Query, state.ConversationID)
	if err != nil {
		// A failed retrieval degrades to an empty result, which the
		// sufficiency check routes to the web search fallback.
		a.logger.Warnf("retrieve chunks: %v", err)
		state = state.withDebug("retrieve_error", err.Error())
		chunks = nil
	}

	state.Chunks = chunks
	state.Status = StatusRetrieving
	state = state.withDebug("chunks_retrieved", len(chunks))
	return state, nil
}

func (a *ConversationAgent) checkSufficiency(ctx context.Context, state RAGState) (RAGState, error) {
	ok, reason := a.sufficiency.Check(ctx, state.Query, state.Chunks)
	a.logger.Infof("sufficiency for %q: %v (%s)", state.Query, ok, reason)

	state.Sufficient = ok
	state.SufficiencyWhy = reason
	if ok {
		state.Status = StatusGenerating
	} else {
		state.Status = StatusSearching
	}
	return state, nil
}

func (a *ConversationAgent) routeBySufficiency(_ context.Context, state RAGState) string {
	if state.Sufficient {
		return nodeGenerateAnswer
	}
	return nodeWebSearch
}

func (a *ConversationAgent) webSearch(ctx context.Context, state RAGState) (RAGState, error) {
	a.logger.Infof("web search augmentation for %q: %s", state.Query, state.SufficiencyWhy)

	articles, _ := a.retriever.Retrieve(ctx, state.Query, state.TimeRange, state.MaxArticles)
	if a.fetcher != nil {
		articles = a.fetcher.Enrich(ctx, articles)
	}

	state.NewArticles = articles
	state.WebSearched = true
	state.Status = StatusIngesting
	return state, nil
}

func (a *ConversationAgent) ingestNewArticles(ctx context.Context, state RAGState) (RAGState, error) {
	if len(state.NewArticles) > 0 {
		result, err := a.ingestor.Ingest(ctx, state.NewArticles, state.ConversationID)
		if err != nil {
			a.logger.Errorf("augmentation ingest failed: %v", err)
		}
		state = state.withDebug("new_chunks_stored", result.ChunksStored)

		chunks, err := a.ragRetriever.Retrieve(ctx, state.Query, state.ConversationID)
		if err == nil {
			state.Chunks = chunks
		}
	}
	state.Status = StatusGenerating
	return state, nil
}

func (a *ConversationAgent) generateAnswer(ctx context.Context, state RAGState) (RAGState, error) {
	answer, err := a.answerer.Generate(ctx, state.Query, state.Chunks, true)
	if err != nil {
		state.Status = StatusFailed
		state.Error = err.Error()
		return state, nil
	}

	state.AnswerText = answer.Answer
	state.Confidence = answer.Confidence
	state.MissingInfo = answer.MissingInfo
	state.SourcesUsed = MapSourcesUsed(answer.SourcesUsed, state.Chunks)
	if state.WebSearched {
		state.AnswerType = AnswerTypeWebAugmented
	} else {
		state.AnswerType = AnswerTypeFollowup
	}
	state.Status = StatusDone
	return state, nil
}

// chunksFromArticles shapes raw articles as pseudo-chunks so the answer
// prompt can cite them when ingestion produced nothing retrievable.
func chunksFromArticles(articles []news.Article, conversationID string) []news.RetrievedChunk {
	chunks := make([]news.RetrievedChunk, len(articles))
	for i, a := range articles {
		chunks[i] = news.RetrievedChunk{
			Chunk: news.Chunk{
				ChunkID:        fmt.Sprintf("%s_%s_inline", a.ID, conversationID),
				ArticleID:      a.ID,
				ConversationID: conversationID,
				Content:        a.Content,
				URL:            a.URL,
				Title:          a.Title,
				Source:         a.Source,
				PublishedAt:    a.PublishedAt,
			},
		}
	}
	return chunks
}
