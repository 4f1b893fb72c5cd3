package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/biocactus/biocactus/internal/apperr"
)

// PostgresStore is a PostgreSQL-backed topic store. Topics are stored as JSONB
// documents keyed by slug.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed topic store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) GetTopic(ctx context.Context, id string) (Topic, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM topics WHERE id = $1`,
		id,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Topic{}, apperr.NotFoundf("topic not found: %s", id)
		}
		return Topic{}, fmt.Errorf("get topic: %w", err)
	}

	var t Topic
	if err := json.Unmarshal(doc, &t); err != nil {
		return Topic{}, fmt.Errorf("decode topic %s: %w", id, err)
	}
	return t, nil
}

func (s *PostgresStore) ListTopics(ctx context.Context) ([]Topic, error) {
	rows, err := s.pool.Query(ctx, `SELECT doc FROM topics ORDER BY ord ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []Topic
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		var t Topic
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, fmt.Errorf("decode topic: %w", err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topics: %w", err)
	}
	return topics, nil
}

func (s *PostgresStore) PutTopic(ctx context.Context, topic Topic) error {
	if topic.ID == "" {
		return apperr.Invalidf("topic id is required")
	}

	doc, err := json.Marshal(topic)
	if err != nil {
		return fmt.Errorf("encode topic %s: %w", topic.ID, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO topics (id, ord, doc) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET ord = EXCLUDED.ord, doc = EXCLUDED.doc`,
		topic.ID, topic.Order, doc,
	)
	if err != nil {
		return fmt.Errorf("put topic %s: %w", topic.ID, err)
	}
	return nil
}
