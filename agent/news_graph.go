package agent

import (
	"context"
	"fmt"

	"github.com/BrooklynD23/RAG-Agent-CS4200/graph"
	"github.com/BrooklynD23/RAG-Agent-CS4200/log"
	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
	"github.com/BrooklynD23/RAG-Agent-CS4200/search"
)

// Node names of the summarize pipeline.
const (
	nodeRouteQuery    = "route_query"
	nodeSearchNews    = "search_news"
	nodeGradeResults  = "grade_results"
	nodeSummarizeNews = "summarize_news"
	nodeVerifyNews    = "verify_news"
	nodeHandleError   = "handle_error"
)

// NewsRequest parameterizes one summarize run.
type NewsRequest struct {
	Query             string
	TimeRange         string
	Verification      bool
	MaxArticles       int
	MaxSearchAttempts int
}

// NewsAgent runs the summarize pipeline: route, search with bounded retry,
// summarize, and optionally verify.
type NewsAgent struct {
	classifier *Classifier
	retriever  *search.Retriever
	summarizer *Summarizer
	critic     *Critic
	logger     log.Logger
	runnable   *graph.Runnable[NewsState]
}

// NewNewsAgent wires the pipeline. The critic may be nil when verification
// is never requested.
func NewNewsAgent(classifier *Classifier, retriever *search.Retriever, summarizer *Summarizer, critic *Critic) (*NewsAgent, error) {
	a := &NewsAgent{
		classifier: classifier,
		retriever:  retriever,
		summarizer: summarizer,
		critic:     critic,
		logger:     log.Default(),
	}

	g := graph.NewStateGraph[NewsState]()
	g.AddNode(nodeRouteQuery, "classify the query and start the search", a.routeQuery)
	g.AddNode(nodeSearchNews, "search providers for articles", a.searchNews)
	g.AddNode(nodeGradeResults, "decide whether to re-search, summarize, or fail", a.gradeResults)
	g.AddNode(nodeSummarizeNews, "produce a cited summary", a.summarizeNews)
	g.AddNode(nodeVerifyNews, "fact-check the summary", a.verifyNews)
	g.AddNode(nodeHandleError, "terminal error state", a.handleError)

	g.SetEntryPoint(nodeRouteQuery)
	g.AddEdge(nodeRouteQuery, nodeSearchNews)
	g.AddEdge(nodeSearchNews, nodeGradeResults)
	g.AddConditionalEdge(nodeGradeResults, a.gradeDecision)
	g.AddConditionalEdge(nodeSummarizeNews, a.summarizeDecision)
	g.AddEdge(nodeVerifyNews, graph.END)
	g.AddEdge(nodeHandleError, graph.END)

	runnable, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile news graph: %w", err)
	}
	a.runnable = runnable
	return a, nil
}

// SetLogger replaces the agent's logger.
func (a *NewsAgent) SetLogger(logger log.Logger) {
	if logger != nil {
		a.logger = logger
	}
}

// Run executes the pipeline for req and returns the terminal state.
func (a *NewsAgent) Run(ctx context.Context, req NewsRequest) (NewsState, error) {
	if req.TimeRange == "" {
		req.TimeRange = search.TimeRangeWeek
	}
	if req.MaxArticles <= 0 {
		req.MaxArticles = 10
	}
	if req.MaxSearchAttempts <= 0 {
		req.MaxSearchAttempts = 3
	}

	initial := NewsState{
		Query:             req.Query,
		QueryType:         QueryTypeNews,
		TimeRange:         req.TimeRange,
		VerificationOn:    req.Verification,
		MaxArticles:       req.MaxArticles,
		MaxSearchAttempts: req.MaxSearchAttempts,
		Status:            StatusInit,
	}
	return a.runnable.Invoke(ctx, initial)
}

func (a *NewsAgent) routeQuery(ctx context.Context, state NewsState) (NewsState, error) {
	state.QueryType = a.classifier.Classify(ctx, state.Query)
	state.Status = StatusSearching
	return state, nil
}

func (a *NewsAgent) searchNews(ctx context.Context, state NewsState) (NewsState, error) {
	articles, backend := a.retriever.Retrieve(ctx, state.Query, state.TimeRange, state.MaxArticles)

	// Later attempts extend earlier results, deduplicated by URL, rather
	// than replacing them.
	state.Articles = news.MergeBatches(state.Articles, articles)
	state.SearchAttempts++
	state.SearchBackend = backend
	state.Status = StatusSearching
	a.logger.Infof("search attempt %d/%d found %d articles (total %d)",
		state.SearchAttempts, state.MaxSearchAttempts, len(articles), len(state.Articles))
	return state, nil
}

func (a *NewsAgent) gradeResults(_ context.Context, state NewsState) (NewsState, error) {
	if len(state.Articles) == 0 && state.SearchAttempts >= state.MaxSearchAttempts {
		state.Status = StatusFailed
		state.Error = ErrNoArticles
	}
	return state, nil
}

func (a *NewsAgent) gradeDecision(_ context.Context, state NewsState) string {
	if len(state.Articles) == 0 && state.SearchAttempts >= state.MaxSearchAttempts {
		return nodeHandleError
	}
	if len(state.Articles) < 3 && state.SearchAttempts < state.MaxSearchAttempts {
		return nodeSearchNews
	}
	return nodeSummarizeNews
}

func (a *NewsAgent) summarizeNews(ctx context.Context, state NewsState) (NewsState, error) {
	state.Status = StatusSummarizing
	summary, err := a.summarizer.Summarize(ctx, state.Query, state.Articles)
	if err != nil {
		// The articles found so far still go back to the caller.
		a.logger.Errorf("summarization failed: %v", err)
		state.Status = StatusFailed
		state.Error = err.Error()
		return state, nil
	}
	state.Summary = summary
	if state.VerificationOn {
		state.Status = StatusVerifying
	} else {
		state.Status = StatusDone
	}
	return state, nil
}

func (a *NewsAgent) summarizeDecision(_ context.Context, state NewsState) string {
	if state.Summary != nil && state.VerificationOn {
		return nodeVerifyNews
	}
	return graph.END
}

func (a *NewsAgent) verifyNews(ctx context.Context, state NewsState) (NewsState, error) {
	if state.Summary == nil {
		state.Status = StatusFailed
		state.Error = "no_summary"
		return state, nil
	}
	if a.critic == nil {
		state.Status = StatusDone
		state.Error = "verification requested but no critic configured"
		return state, nil
	}

	verdict, err := a.critic.Verify(ctx, state.Summary, state.Articles)
	if err != nil {
		// A failed verification pass never discards a usable summary.
		a.logger.Warnf("verification failed: %v", err)
		state.Status = StatusDone
		state.Error = err.Error()
		return state, nil
	}
	state.Verification = verdict
	state.Status = StatusDone
	return state, nil
}

func (a *NewsAgent) handleError(_ context.Context, state NewsState) (NewsState, error) {
	a.logger.Errorf("pipeline failed: %s", state.Error)
	return state, nil
}
