package ai

import (
	"fmt"
	"sync"
)

// BudgetChecker checks and records token usage against per-learner budgets.
type BudgetChecker interface {
	// Check returns true if the learner has budget remaining.
	Check(learnerID string) (bool, error)
	// Record records token usage for a learner.
	Record(learnerID string, tokens int) error
	// Usage returns current usage for a learner.
	Usage(learnerID string) (used int64, budget int64, err error)
}

// InMemoryBudget is a per-learner token budget tracker. A default budget
// applies to every learner unless an explicit one is set; a default of
// zero means unlimited.
type InMemoryBudget struct {
	mu            sync.RWMutex
	defaultBudget int64
	budgets       map[string]int64
	usage         map[string]int64
}

// NewInMemoryBudget creates a budget tracker with the given default
// per-learner token budget.
func NewInMemoryBudget(defaultBudget int64) *InMemoryBudget {
	return &InMemoryBudget{
		defaultBudget: defaultBudget,
		budgets:       make(map[string]int64),
		usage:         make(map[string]int64),
	}
}

// SetBudget sets the token budget for a single learner, overriding the default.
func (b *InMemoryBudget) SetBudget(learnerID string, tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.budgets[learnerID] = tokens
}

func (b *InMemoryBudget) Check(learnerID string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	budget, ok := b.budgets[learnerID]
	if !ok {
		budget = b.defaultBudget
	}
	if budget == 0 {
		return true, nil
	}
	return b.usage[learnerID] < budget, nil
}

func (b *InMemoryBudget) Record(learnerID string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.usage[learnerID] += int64(tokens)
	return nil
}

func (b *InMemoryBudget) Usage(learnerID string) (int64, int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	budget, ok := b.budgets[learnerID]
	if !ok {
		budget = b.defaultBudget
	}
	return b.usage[learnerID], budget, nil
}
