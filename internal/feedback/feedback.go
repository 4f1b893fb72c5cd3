// Package feedback stores learner-submitted product feedback.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/biocactus/biocactus/internal/apperr"
)

// Entry is one piece of learner feedback.
type Entry struct {
	LearnerID string    `json:"userId"`
	Email     string    `json:"userEmail,omitempty"`
	Name      string    `json:"userName,omitempty"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Rating    int       `json:"rating"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists feedback entries.
type Store interface {
	Add(ctx context.Context, entry Entry) error
	ListByLearner(ctx context.Context, learnerID string) ([]Entry, error)
}

func validate(entry Entry) error {
	if entry.LearnerID == "" {
		return apperr.Invalidf("learner id is required")
	}
	if entry.Type == "" || entry.Message == "" {
		return apperr.Invalidf("feedback type and message are required")
	}
	return nil
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: []Entry{}}
}

func (s *MemoryStore) Add(_ context.Context, entry Entry) error {
	if err := validate(entry); err != nil {
		return err
	}
	if entry.Status == "" {
		entry.Status = "new"
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListByLearner(_ context.Context, learnerID string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, e := range s.entries {
		if e.LearnerID == learnerID {
			out = append(out, e)
		}
	}
	return out, nil
}

// PostgresStore is a PostgreSQL-backed Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Add(ctx context.Context, entry Entry) error {
	if err := validate(entry); err != nil {
		return err
	}
	if entry.Status == "" {
		entry.Status = "new"
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	doc, err := json.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO feedback (learner_id, doc, created_at) VALUES ($1, $2, $3)`,
		entry.LearnerID, doc, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByLearner(ctx context.Context, learnerID string) ([]Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM feedback WHERE learner_id = $1 ORDER BY created_at`,
		learnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		var e Entry
		if err := json.Unmarshal(doc, &e); err != nil {
			return nil, fmt.Errorf("decode feedback: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return entries, nil
}
