package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

// DBPool is the subset of pgxpool.Pool the store needs. Tests substitute a
// mock pool.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore persists chunks in PostgreSQL. Embeddings are stored as
// JSONB and similarity is computed in process after loading a conversation.
type PostgresStore struct {
	pool      DBPool
	tableName string
}

// PostgresOptions configures the Postgres connection.
type PostgresOptions struct {
	ConnString string
	TableName  string // default "chunks"
}

// NewPostgresStore creates a connection pool and returns a store backed by it.
func NewPostgresStore(ctx context.Context, opts PostgresOptions) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "chunks"
	}
	return &PostgresStore{pool: pool, tableName: tableName}, nil
}

// NewPostgresStoreWithPool wraps an existing pool. Useful for testing with
// mocks.
func NewPostgresStoreWithPool(pool DBPool, tableName string) *PostgresStore {
	if tableName == "" {
		tableName = "chunks"
	}
	return &PostgresStore{pool: pool, tableName: tableName}
}

// InitSchema creates the chunks table if it does not exist.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			chunk_id TEXT PRIMARY KEY,
			article_id TEXT NOT NULL,
			conversation_id TEXT NOT NULL,
			content TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			url TEXT,
			title TEXT,
			source TEXT,
			published_at TIMESTAMPTZ,
			embedding JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_conversation_id ON %s (conversation_id);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Add(ctx context.Context, chunks []news.Chunk) (int, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (chunk_id, article_id, conversation_id, content, chunk_index, url, title, source, published_at, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (chunk_id) DO NOTHING
	`, s.tableName)

	added := 0
	for _, c := range chunks {
		embedding, err := json.Marshal(c.Embedding)
		if err != nil {
			return added, fmt.Errorf("marshal embedding for %s: %w", c.ChunkID, err)
		}

		tag, err := s.pool.Exec(ctx, query,
			c.ChunkID, c.ArticleID, c.ConversationID, c.Content, c.ChunkIndex,
			c.URL, c.Title, c.Source, c.PublishedAt, embedding)
		if err != nil {
			return added, fmt.Errorf("insert chunk %s: %w", c.ChunkID, err)
		}
		if tag.RowsAffected() > 0 {
			added++
		}
	}
	return added, nil
}

func (s *PostgresStore) Query(ctx context.Context, embedding []float32, conversationID string, k int, threshold float64) ([]news.RetrievedChunk, error) {
	candidates, err := s.ByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return TopK(candidates, embedding, k, threshold), nil
}

func (s *PostgresStore) ByConversation(ctx context.Context, conversationID string) ([]news.Chunk, error) {
	query := fmt.Sprintf(`
		SELECT chunk_id, article_id, conversation_id, content, chunk_index, url, title, source, published_at, embedding
		FROM %s WHERE conversation_id = $1
		ORDER BY article_id, chunk_index
	`, s.tableName)

	rows, err := s.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", conversationID, err)
	}
	defer rows.Close()

	var chunks []news.Chunk
	for rows.Next() {
		var c news.Chunk
		var embedding []byte
		if err := rows.Scan(&c.ChunkID, &c.ArticleID, &c.ConversationID, &c.Content, &c.ChunkIndex,
			&c.URL, &c.Title, &c.Source, &c.PublishedAt, &embedding); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if err := json.Unmarshal(embedding, &c.Embedding); err != nil {
			return nil, fmt.Errorf("unmarshal embedding for %s: %w", c.ChunkID, err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (s *PostgresStore) DeleteConversation(ctx context.Context, conversationID string) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE conversation_id = $1`, s.tableName)

	tag, err := s.pool.Exec(ctx, query, conversationID)
	if err != nil {
		return 0, fmt.Errorf("delete conversation %s: %w", conversationID, err)
	}
	return int(tag.RowsAffected()), nil
}
