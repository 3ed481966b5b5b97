// Command newsagent runs the news RAG assistant, either as an HTTP server or
// as a one-shot command-line summarizer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	langchainopenai "github.com/tmc/langchaingo/llms/openai"

	"github.com/BrooklynD23/RAG-Agent-CS4200/agent"
	"github.com/BrooklynD23/RAG-Agent-CS4200/config"
	"github.com/BrooklynD23/RAG-Agent-CS4200/fetch"
	"github.com/BrooklynD23/RAG-Agent-CS4200/llm"
	"github.com/BrooklynD23/RAG-Agent-CS4200/log"
	"github.com/BrooklynD23/RAG-Agent-CS4200/rag"
	"github.com/BrooklynD23/RAG-Agent-CS4200/rag/store"
	"github.com/BrooklynD23/RAG-Agent-CS4200/search"
	"github.com/BrooklynD23/RAG-Agent-CS4200/server"
)

func main() {
	var (
		serve     = flag.Bool("serve", false, "run the HTTP server")
		query     = flag.String("query", "", "one-shot query to summarize")
		timeRange = flag.String("time-range", search.TimeRangeWeek, "search window: 24h, 7d, 30d or all")
		verify    = flag.Bool("verify", false, "run the verification pass on the summary")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.NewGologLogger(cfg.LogLevel)
	log.SetDefault(logger)

	chunkStore, closeStore, err := buildStore(cfg)
	if err != nil {
		logger.Errorf("store init: %v", err)
		os.Exit(1)
	}
	defer closeStore()

	newsAgent, convAgent, err := buildAgents(cfg, chunkStore)
	if err != nil {
		logger.Errorf("agent init: %v", err)
		os.Exit(1)
	}

	switch {
	case *serve:
		srv := server.New(newsAgent, convAgent)
		srv.SetLogger(logger)
		if err := srv.ListenAndServe(cfg.ServerAddr); err != nil {
			logger.Errorf("server: %v", err)
			os.Exit(1)
		}
	case *query != "":
		runOnce(newsAgent, *query, *timeRange, *verify, cfg)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func buildStore(cfg *config.Config) (store.ChunkStore, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemoryStore(), func() {}, nil
	case "redis":
		s := store.NewRedisStore(store.RedisOptions{Addr: cfg.RedisAddr})
		return s, func() { s.Close() }, nil
	case "sqlite":
		s, err := store.NewSQLiteStore(store.SQLiteOptions{Path: cfg.SQLitePath})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "postgres":
		s, err := store.NewPostgresStore(context.Background(), store.PostgresOptions{ConnString: cfg.PostgresURL})
		if err != nil {
			return nil, nil, err
		}
		if err := s.InitSchema(context.Background()); err != nil {
			s.Close()
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func buildAgents(cfg *config.Config, chunkStore store.ChunkStore) (*agent.NewsAgent, *agent.ConversationAgent, error) {
	var providers []search.Provider
	if cfg.TavilyKey != "" {
		providers = append(providers, search.NewTavily(cfg.TavilyKey))
	}
	if cfg.GNewsKey != "" {
		providers = append(providers, search.NewGNews(cfg.GNewsKey))
	}
	if cfg.BraveKey != "" {
		providers = append(providers, search.NewBrave(cfg.BraveKey))
	}
	retriever := search.NewRetriever(search.NewCache(cfg.CacheTTL), providers...)

	completer, err := buildCompleter(cfg)
	if err != nil {
		return nil, nil, err
	}
	embedder := rag.NewOpenAIEmbedder(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel)

	var fetcher *fetch.Fetcher
	if cfg.FetchBodies {
		fetcher = fetch.New(cfg.FetchTimeout)
	}

	newsAgent, err := agent.NewNewsAgent(
		agent.NewClassifier(completer),
		retriever,
		agent.NewSummarizer(completer, cfg.ChatModel),
		agent.NewCritic(completer),
	)
	if err != nil {
		return nil, nil, err
	}

	thresholds := rag.Thresholds{
		MinChunks:        cfg.MinChunks,
		MinTopSimilarity: cfg.MinTopSimilarity,
		MinAvgSimilarity: cfg.MinAvgSimilarity,
		MinContentLength: cfg.MinContentLength,
	}
	convAgent, err := agent.NewConversationAgent(
		retriever,
		fetcher,
		rag.NewIngestor(rag.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap), embedder, chunkStore),
		rag.NewRetriever(embedder, chunkStore, cfg.MaxChunks, cfg.SimilarityThreshold),
		rag.NewSufficiencyChecker(thresholds),
		agent.NewAnswerGenerator(completer),
		chunkStore,
	)
	if err != nil {
		return nil, nil, err
	}
	return newsAgent, convAgent, nil
}

func buildCompleter(cfg *config.Config) (llm.Completer, error) {
	switch cfg.LLMBackend {
	case "openai":
		return llm.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.ChatModel), nil
	case "langchain":
		opts := []langchainopenai.Option{
			langchainopenai.WithToken(cfg.OpenAIKey),
			langchainopenai.WithModel(cfg.ChatModel),
		}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, langchainopenai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		model, err := langchainopenai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("langchain backend: %w", err)
		}
		return llm.NewLangChain(model), nil
	default:
		return nil, fmt.Errorf("unknown llm backend %q", cfg.LLMBackend)
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

func runOnce(newsAgent *agent.NewsAgent, query, timeRange string, verify bool, cfg *config.Config) {
	final, err := newsAgent.Run(context.Background(), agent.NewsRequest{
		Query:             query,
		TimeRange:         timeRange,
		Verification:      verify,
		MaxArticles:       cfg.MaxArticles,
		MaxSearchAttempts: cfg.MaxSearchAttempts,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("pipeline error: "+err.Error()))
		os.Exit(1)
	}

	fmt.Println(titleStyle.Render(query))
	fmt.Println(faintStyle.Render(fmt.Sprintf("type=%s attempts=%d backend=%s status=%s",
		final.QueryType, final.SearchAttempts, final.SearchBackend, final.Status)))
	fmt.Println()

	if final.Status == agent.StatusFailed {
		fmt.Println(errorStyle.Render("failed: " + final.Error))
		os.Exit(1)
	}

	if final.Summary != nil {
		fmt.Println(sectionStyle.Render("Summary"))
		fmt.Println(final.Summary.SummaryText)
		fmt.Println()

		if len(final.Summary.Sources) > 0 {
			fmt.Println(sectionStyle.Render("Sources"))
			for _, a := range final.Summary.Sources {
				fmt.Printf("  [%s] %s\n      %s\n", a.ID, a.Title, faintStyle.Render(a.URL))
			}
			fmt.Println()
		}
	}

	if final.Verification != nil {
		fmt.Println(sectionStyle.Render("Verification: " + final.Verification.OverallVerdict))
		for _, issue := range final.Verification.Issues {
			fmt.Printf("  sentence %d: %s (%s)\n", issue.SentenceIndex, issue.Verdict, issue.Reason)
		}
	}

	if final.Error != "" {
		fmt.Println(faintStyle.Render("note: " + final.Error))
	}
}
