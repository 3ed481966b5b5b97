package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

// RedisStore keeps each conversation's chunks in a Redis hash keyed by
// chunk ID. Similarity scoring happens in process after loading the hash.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // key prefix, default "newsagent:"
	TTL      time.Duration // conversation expiry, 0 means no expiry
}

// NewRedisStore connects a chunk store to Redis.
func NewRedisStore(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "newsagent:"
	}

	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) conversationKey(conversationID string) string {
	return fmt.Sprintf("%sconversation:%s:chunks", s.prefix, conversationID)
}

func (s *RedisStore) Add(ctx context.Context, chunks []news.Chunk) (int, error) {
	added := 0
	for _, c := range chunks {
		data, err := json.Marshal(c)
		if err != nil {
			return added, fmt.Errorf("marshal chunk %s: %w", c.ChunkID, err)
		}

		key := s.conversationKey(c.ConversationID)
		ok, err := s.client.HSetNX(ctx, key, c.ChunkID, data).Result()
		if err != nil {
			return added, fmt.Errorf("store chunk %s: %w", c.ChunkID, err)
		}
		if ok {
			added++
		}
		if s.ttl > 0 {
			s.client.Expire(ctx, key, s.ttl)
		}
	}
	return added, nil
}

func (s *RedisStore) Query(ctx context.Context, embedding []float32, conversationID string, k int, threshold float64) ([]news.RetrievedChunk, error) {
	candidates, err := s.ByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return TopK(candidates, embedding, k, threshold), nil
}

func (s *RedisStore) ByConversation(ctx context.Context, conversationID string) ([]news.Chunk, error) {
	values, err := s.client.HGetAll(ctx, s.conversationKey(conversationID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", conversationID, err)
	}

	chunks := make([]news.Chunk, 0, len(values))
	for id, raw := range values {
		var c news.Chunk
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("unmarshal chunk %s: %w", id, err)
		}
		chunks = append(chunks, c)
	}

	// Hash iteration order is arbitrary, restore ingestion order.
	sortChunks(chunks)
	return chunks, nil
}

func (s *RedisStore) DeleteConversation(ctx context.Context, conversationID string) (int, error) {
	key := s.conversationKey(conversationID)
	n, err := s.client.HLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("inspect conversation %s: %w", conversationID, err)
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return 0, fmt.Errorf("delete conversation %s: %w", conversationID, err)
	}
	return int(n), nil
}
