package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/biocactus/biocactus/internal/apperr"
)

// PostgresStore is a PostgreSQL-backed progress store. Each record is one
// JSONB document; the row is the atomicity boundary.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed progress store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) GetRecord(ctx context.Context, learnerID, topicID string) (*Record, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM progress WHERE id = $1`,
		Key(learnerID, topicID),
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("progress record not found: %s", Key(learnerID, topicID))
		}
		return nil, fmt.Errorf("get progress record: %w", err)
	}

	var r Record
	if err := json.Unmarshal(doc, &r); err != nil {
		return nil, fmt.Errorf("decode progress record: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) PutRecord(ctx context.Context, record *Record) error {
	if record.LearnerID == "" || record.TopicID == "" {
		return apperr.Invalidf("learner id and topic id are required")
	}

	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode progress record: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO progress (id, learner_id, doc, updated_at) VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		Key(record.LearnerID, record.TopicID), record.LearnerID, doc,
	)
	if err != nil {
		return fmt.Errorf("put progress record: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecords(ctx context.Context, learnerID string) ([]*Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM progress WHERE learner_id = $1`,
		learnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list progress records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan progress record: %w", err)
		}
		var r Record
		if err := json.Unmarshal(doc, &r); err != nil {
			return nil, fmt.Errorf("decode progress record: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress records: %w", err)
	}
	return records, nil
}
