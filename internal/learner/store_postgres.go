package learner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/biocactus/biocactus/internal/apperr"
)

// PostgresStore is a PostgreSQL-backed AccountStore. Accounts are stored as
// one JSONB document per learner; the row is the atomicity boundary.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed account store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) GetAccount(ctx context.Context, id string) (*Account, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM accounts WHERE id = $1`,
		id,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("account not found: %s", id)
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	var a Account
	if err := json.Unmarshal(doc, &a); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", id, err)
	}
	return &a, nil
}

func (s *PostgresStore) PutAccount(ctx context.Context, account *Account) error {
	if account.ID == "" {
		return apperr.Invalidf("account id is required")
	}

	doc, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("encode account %s: %w", account.ID, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO accounts (id, doc, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		account.ID, doc,
	)
	if err != nil {
		return fmt.Errorf("put account %s: %w", account.ID, err)
	}
	return nil
}

func (s *PostgresStore) TopByXP(ctx context.Context, limit int) ([]*Account, error) {
	if limit < 1 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM accounts
		 ORDER BY COALESCE((doc->>'xp')::int, 0) DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		var a Account
		if err := json.Unmarshal(doc, &a); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		accounts = append(accounts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}
