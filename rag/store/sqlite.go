package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

// SQLiteStore persists chunks in a SQLite database. Embeddings are stored as
// JSON and similarity is computed in process after loading a conversation.
type SQLiteStore struct {
	db        *sql.DB
	tableName string
}

// SQLiteOptions configures the SQLite connection.
type SQLiteOptions struct {
	Path      string
	TableName string // default "chunks"
}

// NewSQLiteStore opens (or creates) the database and ensures the schema.
func NewSQLiteStore(opts SQLiteOptions) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "chunks"
	}

	s := &SQLiteStore{db: db, tableName: tableName}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
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
			published_at DATETIME,
			embedding TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_conversation_id ON %s (conversation_id);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Add(ctx context.Context, chunks []news.Chunk) (int, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (chunk_id, article_id, conversation_id, content, chunk_index, url, title, source, published_at, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (chunk_id) DO NOTHING
	`, s.tableName)

	added := 0
	for _, c := range chunks {
		embedding, err := json.Marshal(c.Embedding)
		if err != nil {
			return added, fmt.Errorf("marshal embedding for %s: %w", c.ChunkID, err)
		}

		res, err := s.db.ExecContext(ctx, query,
			c.ChunkID, c.ArticleID, c.ConversationID, c.Content, c.ChunkIndex,
			c.URL, c.Title, c.Source, c.PublishedAt, string(embedding))
		if err != nil {
			return added, fmt.Errorf("insert chunk %s: %w", c.ChunkID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			added++
		}
	}
	return added, nil
}

func (s *SQLiteStore) Query(ctx context.Context, embedding []float32, conversationID string, k int, threshold float64) ([]news.RetrievedChunk, error) {
	candidates, err := s.ByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return TopK(candidates, embedding, k, threshold), nil
}

func (s *SQLiteStore) ByConversation(ctx context.Context, conversationID string) ([]news.Chunk, error) {
	query := fmt.Sprintf(`
		SELECT chunk_id, article_id, conversation_id, content, chunk_index, url, title, source, published_at, embedding
		FROM %s WHERE conversation_id = ?
		ORDER BY article_id, chunk_index
	`, s.tableName)

	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", conversationID, err)
	}
	defer rows.Close()

	var chunks []news.Chunk
	for rows.Next() {
		var c news.Chunk
		var embedding string
		if err := rows.Scan(&c.ChunkID, &c.ArticleID, &c.ConversationID, &c.Content, &c.ChunkIndex,
			&c.URL, &c.Title, &c.Source, &c.PublishedAt, &embedding); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(embedding), &c.Embedding); err != nil {
			return nil, fmt.Errorf("unmarshal embedding for %s: %w", c.ChunkID, err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (s *SQLiteStore) DeleteConversation(ctx context.Context, conversationID string) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE conversation_id = ?`, s.tableName)

	res, err := s.db.ExecContext(ctx, query, conversationID)
	if err != nil {
		return 0, fmt.Errorf("delete conversation %s: %w", conversationID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
