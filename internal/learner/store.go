package learner

import (
	"context"
	"sort"
	"sync"

	"github.com/biocactus/biocactus/internal/apperr"
)

// AccountStore persists learner accounts as single documents. Reads and
// writes are atomic per document only.
type AccountStore interface {
	GetAccount(ctx context.Context, id string) (*Account, error)
	PutAccount(ctx context.Context, account *Account) error
	// TopByXP returns up to limit accounts ordered by XP descending.
	TopByXP(ctx context.Context, limit int) ([]*Account, error)
}

// MemoryStore is an in-memory AccountStore implementation.
type MemoryStore struct {
	accounts map[string]Account
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]Account),
	}
}

func (s *MemoryStore) GetAccount(_ context.Context, id string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, apperr.NotFoundf("account not found: %s", id)
	}
	return &a, nil
}

func (s *MemoryStore) PutAccount(_ context.Context, account *Account) error {
	if account.ID == "" {
		return apperr.Invalidf("account id is required")
	}

	s.mu.Lock()
	s.accounts[account.ID] = *account
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) TopByXP(_ context.Context, limit int) ([]*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*Account, 0, len(s.accounts))
	for id := range s.accounts {
		a := s.accounts[id]
		all = append(all, &a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].XP > all[j].XP })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
