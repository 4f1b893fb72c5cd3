package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/biocactus/biocactus/internal/apperr"
)

// Store persists the shared topic catalog.
type Store interface {
	GetTopic(ctx context.Context, id string) (Topic, error)
	ListTopics(ctx context.Context) ([]Topic, error)
	PutTopic(ctx context.Context, topic Topic) error
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	topics map[string]Topic
	mu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory topic store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		topics: make(map[string]Topic),
	}
}

func (s *MemoryStore) GetTopic(_ context.Context, id string) (Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.topics[id]
	if !ok {
		return Topic{}, apperr.NotFoundf("topic not found: %s", id)
	}
	return t, nil
}

func (s *MemoryStore) ListTopics(_ context.Context) ([]Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topics := make([]Topic, 0, len(s.topics))
	for _, t := range s.topics {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Order < topics[j].Order })
	return topics, nil
}

func (s *MemoryStore) PutTopic(_ context.Context, topic Topic) error {
	if topic.ID == "" {
		return apperr.Invalidf("topic id is required")
	}

	s.mu.Lock()
	s.topics[topic.ID] = topic
	s.mu.Unlock()
	return nil
}
