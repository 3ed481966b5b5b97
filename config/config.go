// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable of the news agent. All fields are read from
// environment variables; a local .env file is honoured when present.
type Config struct {
	// Provider credentials. Missing keys are configuration errors surfaced
	// in response metadata, never crashes.
	OpenAIKey     string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	TavilyKey     string `envconfig:"TAVILY_API_KEY"`
	GNewsKey      string `envconfig:"GNEWS_API_KEY"`
	BraveKey      string `envconfig:"BRAVE_API_KEY"`

	// Models. LLMBackend selects the completion client: "openai" talks to
	// the API directly, "langchain" goes through langchaingo.
	LLMBackend     string `envconfig:"LLM_BACKEND" default:"openai"`
	ChatModel      string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`

	// Retrieval.
	MaxArticles       int           `envconfig:"MAX_ARTICLES" default:"10"`
	MaxSearchAttempts int           `envconfig:"MAX_SEARCH_ATTEMPTS" default:"3"`
	CacheTTL          time.Duration `envconfig:"CACHE_TTL" default:"30m"`

	// Chunking.
	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"150"`

	// Vector retrieval.
	MaxChunks           int     `envconfig:"MAX_CHUNKS" default:"10"`
	SimilarityThreshold float64 `envconfig:"SIMILARITY_THRESHOLD" default:"0.3"`

	// Sufficiency heuristic thresholds. Kept as configuration rather than
	// hard-coded constants.
	MinChunks        int     `envconfig:"SUFFICIENCY_MIN_CHUNKS" default:"2"`
	MinTopSimilarity float64 `envconfig:"SUFFICIENCY_MIN_TOP_SIMILARITY" default:"0.45"`
	MinAvgSimilarity float64 `envconfig:"SUFFICIENCY_MIN_AVG_SIMILARITY" default:"0.35"`
	MinContentLength int     `envconfig:"SUFFICIENCY_MIN_CONTENT_LENGTH" default:"200"`

	// Chunk store backend: memory, redis, sqlite or postgres.
	StoreBackend string `envconfig:"STORE_BACKEND" default:"memory"`
	RedisAddr    string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	SQLitePath   string `envconfig:"SQLITE_PATH" default:"newsagent.db"`
	PostgresURL  string `envconfig:"POSTGRES_URL"`

	// Serving.
	ServerAddr string `envconfig:"SERVER_ADDR" default:":8080"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`

	// Article body enrichment via page fetching.
	FetchBodies  bool          `envconfig:"FETCH_BODIES" default:"false"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`
}

// Load reads configuration from the environment, first merging in a .env
// file if one exists in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load() // absent .env is fine

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
