package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/biocactus/biocactus/internal/apperr"
)

// PostgresStore is a PostgreSQL-backed quiz cache store. The conditional
// create is an INSERT ... ON CONFLICT DO NOTHING, so concurrent writers race
// safely: exactly one row wins and the rest observe created=false.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed quiz cache store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context, topicID, languageCode string) (*Entry, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM quiz_cache WHERE id = $1`,
		Key(topicID, languageCode),
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("quiz cache entry not found: %s", Key(topicID, languageCode))
		}
		return nil, fmt.Errorf("get quiz cache entry: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(doc, &e); err != nil {
		return nil, fmt.Errorf("decode quiz cache entry: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) PutIfAbsent(ctx context.Context, entry *Entry) (bool, error) {
	if entry.TopicID == "" || entry.Language == "" {
		return false, apperr.Invalidf("topic id and language are required")
	}
	if len(entry.Questions) == 0 {
		return false, apperr.Invalidf("refusing to cache an empty question set")
	}

	e := *entry
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	doc, err := json.Marshal(&e)
	if err != nil {
		return false, fmt.Errorf("encode quiz cache entry: %w", err)
	}

	cmd, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_cache (id, doc, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`,
		Key(e.TopicID, e.Language), doc, e.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("put quiz cache entry: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}
