package content

import (
	"context"
	"sync"
	"time"

	"github.com/biocactus/biocactus/internal/apperr"
)

// Store persists quiz cache entries. PutIfAbsent is a conditional create: it
// must succeed for at most one writer per key, which is what keeps the cache
// deterministic under concurrent misses.
type Store interface {
	Get(ctx context.Context, topicID, languageCode string) (*Entry, error)
	// PutIfAbsent writes the entry unless the key already exists. It
	// reports whether this call created the entry.
	PutIfAbsent(ctx context.Context, entry *Entry) (bool, error)
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	entries map[string]Entry
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory quiz cache store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
	}
}

func (s *MemoryStore) Get(_ context.Context, topicID, languageCode string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[Key(topicID, languageCode)]
	if !ok {
		return nil, apperr.NotFoundf("quiz cache entry not found: %s", Key(topicID, languageCode))
	}
	return &e, nil
}

func (s *MemoryStore) PutIfAbsent(_ context.Context, entry *Entry) (bool, error) {
	if entry.TopicID == "" || entry.Language == "" {
		return false, apperr.Invalidf("topic id and language are required")
	}
	if len(entry.Questions) == 0 {
		return false, apperr.Invalidf("refusing to cache an empty question set")
	}

	key := Key(entry.TopicID, entry.Language)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; exists {
		return false, nil
	}
	e := *entry
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.entries[key] = e
	return true, nil
}
