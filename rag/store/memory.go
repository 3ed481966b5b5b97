package store

import (
	"context"
	"sync"

	"github.com/BrooklynD23/RAG-Agent-CS4200/news"
)

// MemoryStore keeps chunks in process memory, grouped by conversation.
// Safe for concurrent use.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]news.Chunk
	index         map[string]struct{}
}

// NewMemoryStore creates an empty in-memory chunk store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string][]news.Chunk),
		index:         make(map[string]struct{}),
	}
}

func (s *MemoryStore) Add(_ context.Context, chunks []news.Chunk) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, c := range chunks {
		if _, ok := s.index[c.ChunkID]; ok {
			continue
		}
		s.index[c.ChunkID] = struct{}{}
		s.conversations[c.ConversationID] = append(s.conversations[c.ConversationID], c)
		added++
	}
	return added, nil
}

func (s *MemoryStore) Query(_ context.Context, embedding []float32, conversationID string, k int, threshold float64) ([]news.RetrievedChunk, error) {
	s.mu.RLock()
	candidates := s.conversations[conversationID]
	s.mu.RUnlock()

	return TopK(candidates, embedding, k, threshold), nil
}

func (s *MemoryStore) ByConversation(_ context.Context, conversationID string) ([]news.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := s.conversations[conversationID]
	out := make([]news.Chunk, len(chunks))
	copy(out, chunks)
	return out, nil
}

func (s *MemoryStore) DeleteConversation(_ context.Context, conversationID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunks := s.conversations[conversationID]
	for _, c := range chunks {
		delete(s.index, c.ChunkID)
	}
	delete(s.conversations, conversationID)
	return len(chunks), nil
}
