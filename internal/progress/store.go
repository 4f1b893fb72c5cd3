package progress

import (
	"context"
	"sync"

	"github.com/biocactus/biocactus/internal/apperr"
)

// Store persists progress records as single documents keyed by
// learnerID_topicID.
type Store interface {
	GetRecord(ctx context.Context, learnerID, topicID string) (*Record, error)
	PutRecord(ctx context.Context, record *Record) error
	ListRecords(ctx context.Context, learnerID string) ([]*Record, error)
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	records map[string]Record
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory progress store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

func (s *MemoryStore) GetRecord(_ context.Context, learnerID, topicID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[Key(learnerID, topicID)]
	if !ok {
		return nil, apperr.NotFoundf("progress record not found: %s", Key(learnerID, topicID))
	}
	return &r, nil
}

func (s *MemoryStore) PutRecord(_ context.Context, record *Record) error {
	if record.LearnerID == "" || record.TopicID == "" {
		return apperr.Invalidf("learner id and topic id are required")
	}

	s.mu.Lock()
	s.records[Key(record.LearnerID, record.TopicID)] = *record
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListRecords(_ context.Context, learnerID string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*Record
	for key := range s.records {
		r := s.records[key]
		if r.LearnerID == learnerID {
			records = append(records, &r)
		}
	}
	return records, nil
}
