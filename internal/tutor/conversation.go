// Package tutor runs the conversational biology tutor behind the chat endpoint.
package tutor

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/biocactus/biocactus/internal/apperr"
)

// StoredMessage is a single message in a tutoring conversation.
type StoredMessage struct {
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	Model        string    `json:"model,omitempty"`
	InputTokens  int       `json:"input_tokens,omitempty"`
	OutputTokens int       `json:"output_tokens,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Conversation is a tutoring session with its full message history.
type Conversation struct {
	ID          string          `json:"id"`
	LearnerID   string          `json:"learnerId"`
	TopicID     string          `json:"topicId,omitempty"`
	Messages    []StoredMessage `json:"messages"`
	Summary     string          `json:"summary,omitempty"`
	CompactedAt int             `json:"compactedAt,omitempty"` // number of messages included in Summary
	StartedAt   time.Time       `json:"startedAt"`
	EndedAt     *time.Time      `json:"endedAt,omitempty"`
}

// ConversationStore persists conversation state and message history.
type ConversationStore interface {
	CreateConversation(ctx context.Context, conv Conversation) (string, error)
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	GetActiveConversation(ctx context.Context, learnerID string) (*Conversation, bool, error)
	AddMessage(ctx context.Context, conversationID string, msg StoredMessage) error
	SetSummary(ctx context.Context, conversationID, summary string, compactedAt int) error
	EndConversation(ctx context.Context, id string) error
}

// MemoryStore is an in-memory ConversationStore.
type MemoryStore struct {
	conversations map[string]*Conversation
	mu            sync.RWMutex
}

// NewMemoryStore creates an in-memory conversation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*Conversation),
	}
}

func (s *MemoryStore) CreateConversation(_ context.Context, conv Conversation) (string, error) {
	if conv.LearnerID == "" {
		return "", apperr.Invalidf("learner id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := generateID()
	conv.ID = id
	conv.StartedAt = time.Now()
	if conv.Messages == nil {
		conv.Messages = []StoredMessage{}
	}
	s.conversations[id] = &conv
	return id, nil
}

func (s *MemoryStore) GetConversation(_ context.Context, id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, apperr.NotFoundf("conversation not found: %s", id)
	}
	return conv, nil
}

func (s *MemoryStore) GetActiveConversation(_ context.Context, learnerID string) (*Conversation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, conv := range s.conversations {
		if conv.LearnerID == learnerID && conv.EndedAt == nil {
			return conv, true, nil
		}
	}
	return nil, false, nil
}

func (s *MemoryStore) AddMessage(_ context.Context, conversationID string, msg StoredMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return apperr.NotFoundf("conversation not found: %s", conversationID)
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	conv.Messages = append(conv.Messages, msg)
	return nil
}

func (s *MemoryStore) SetSummary(_ context.Context, conversationID, summary string, compactedAt int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return apperr.NotFoundf("conversation not found: %s", conversationID)
	}
	conv.Summary = summary
	conv.CompactedAt = compactedAt
	return nil
}

func (s *MemoryStore) EndConversation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return apperr.NotFoundf("conversation not found: %s", id)
	}
	now := time.Now()
	conv.EndedAt = &now
	return nil
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
