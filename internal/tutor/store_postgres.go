package tutor

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

// PostgresStore is a PostgreSQL-backed ConversationStore. Each conversation
// is one JSONB document; the active flag is kept as a column so the
// active-conversation lookup can use the partial index.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed conversation store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) CreateConversation(ctx context.Context, conv Conversation) (string, error) {
	if conv.LearnerID == "" {
		return "", apperr.Invalidf("learner id is required")
	}

	conv.ID = generateID()
	conv.StartedAt = time.Now()
	if conv.Messages == nil {
		conv.Messages = []StoredMessage{}
	}

	doc, err := json.Marshal(&conv)
	if err != nil {
		return "", fmt.Errorf("encode conversation: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO conversations (id, learner_id, active, doc, updated_at)
		 VALUES ($1, $2, TRUE, $3, NOW())`,
		conv.ID, conv.LearnerID, doc,
	)
	if err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}
	return conv.ID, nil
}

func (s *PostgresStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM conversations WHERE id = $1`,
		id,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("conversation not found: %s", id)
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return decodeConversation(doc)
}

func (s *PostgresStore) GetActiveConversation(ctx context.Context, learnerID string) (*Conversation, bool, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM conversations
		 WHERE learner_id = $1 AND active
		 ORDER BY updated_at DESC
		 LIMIT 1`,
		learnerID,
	).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get active conversation: %w", err)
	}

	conv, err := decodeConversation(doc)
	if err != nil {
		return nil, false, err
	}
	return conv, true, nil
}

func (s *PostgresStore) AddMessage(ctx context.Context, conversationID string, msg StoredMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	encoded, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	cmd, err := s.pool.Exec(ctx,
		`UPDATE conversations
		 SET doc = jsonb_set(doc, '{messages}', doc->'messages' || $2::jsonb),
		     updated_at = NOW()
		 WHERE id = $1`,
		conversationID, encoded,
	)
	if err != nil {
		return fmt.Errorf("add message: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFoundf("conversation not found: %s", conversationID)
	}
	return nil
}

func (s *PostgresStore) SetSummary(ctx context.Context, conversationID, summary string, compactedAt int) error {
	cmd, err := s.pool.Exec(ctx,
		`UPDATE conversations
		 SET doc = doc || jsonb_build_object('summary', $2::text, 'compactedAt', $3::int),
		     updated_at = NOW()
		 WHERE id = $1`,
		conversationID, summary, compactedAt,
	)
	if err != nil {
		return fmt.Errorf("set summary: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFoundf("conversation not found: %s", conversationID)
	}
	return nil
}

func (s *PostgresStore) EndConversation(ctx context.Context, id string) error {
	cmd, err := s.pool.Exec(ctx,
		`UPDATE conversations
		 SET active = FALSE,
		     doc = doc || jsonb_build_object('endedAt', NOW()),
		     updated_at = NOW()
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("end conversation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.NotFoundf("conversation not found: %s", id)
	}
	return nil
}

func decodeConversation(doc []byte) (*Conversation, error) {
	var conv Conversation
	if err := json.Unmarshal(doc, &conv); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	return &conv, nil
}
