package learner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/biocactus/biocactus/internal/apperr"
	"github.com/biocactus/biocactus/internal/catalog"
	"github.com/biocactus/biocactus/internal/streak"
)

// LedgerConfig holds dependencies for the progression ledger.
type LedgerConfig struct {
	Store        AccountStore
	DefaultLives int              // lives granted to new accounts (default 5)
	Now          func() time.Time // clock override for tests
}

// Ledger applies progression events to learner accounts: XP, level, streak,
// and lives. Each operation is one read/modify/write of the account document.
type Ledger struct {
	store        AccountStore
	defaultLives int
	now          func() time.Time
}

// NewLedger creates a progression ledger.
func NewLedger(cfg LedgerConfig) *Ledger {
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	lives := cfg.DefaultLives
	if lives == 0 {
		lives = 5
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Ledger{store: store, defaultLives: lives, now: now}
}

// QuizOutcome is the result of applying a quiz submission to the ledger.
type QuizOutcome struct {
	Passed    bool `json:"passed"`
	XPGained  int  `json:"xpGained"`
	NewLevel  int  `json:"level"`
	NewLives  int  `json:"lives"`
	NewStreak int  `json:"streak"`
}

// Profile carries identity fields from the verified token on login.
type Profile struct {
	Email       string
	DisplayName string
	PhotoURL    string
}

// Account loads a learner account.
func (l *Ledger) Account(ctx context.Context, id string) (*Account, error) {
	return l.store.GetAccount(ctx, id)
}

// EnsureAccount loads the account for a verified identity, creating it on
// first login. Existing accounts get their last-login timestamp refreshed.
func (l *Ledger) EnsureAccount(ctx context.Context, id string, profile Profile) (*Account, error) {
	if id == "" {
		return nil, apperr.Invalidf("account id is required")
	}

	account, err := l.store.GetAccount(ctx, id)
	if err == nil {
		account.LastLogin = l.now()
		if err := l.store.PutAccount(ctx, account); err != nil {
			return nil, fmt.Errorf("refresh last login: %w", err)
		}
		return account, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	now := l.now()
	account = &Account{
		ID:          id,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		PhotoURL:    profile.PhotoURL,
		XP:          0,
		Level:       0,
		Streak:      0,
		Lives:       l.defaultLives,
		CreatedAt:   now,
		LastLogin:   now,
	}
	if err := l.store.PutAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	slog.Info("account created", "learner_id", id)
	return account, nil
}

// ApplyLessonCompletion awards the fixed lesson XP and advances the streak.
// Completing a lesson always counts as qualifying activity.
func (l *Ledger) ApplyLessonCompletion(ctx context.Context, id string) (*Account, error) {
	account, err := l.store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	account.XP += XPPerLessonCompleted
	account.Level = LevelForXP(account.XP)

	newStreak, lastActivity := streak.Compute(l.now(), account.LastActivityDate, account.Streak)
	account.Streak = newStreak
	account.LastActivityDate = &lastActivity

	if err := l.store.PutAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("persist lesson completion: %w", err)
	}

	slog.Info("lesson completion applied",
		"learner_id", id,
		"xp", account.XP,
		"level", account.Level,
		"streak", account.Streak,
	)
	return account, nil
}

// ApplyQuizResult applies a scored quiz to the account. A quiz passes when
// score/total is at least one half, compared exactly. XP is earned per
// correct answer regardless of outcome. Failing costs one life (floor zero)
// and leaves the streak untouched; only a pass counts as streak activity.
func (l *Ledger) ApplyQuizResult(ctx context.Context, id string, score, total int) (QuizOutcome, error) {
	if total <= 0 {
		return QuizOutcome{}, apperr.Invalidf("quiz total must be positive, got %d", total)
	}
	if score < 0 || score > total {
		return QuizOutcome{}, apperr.Invalidf("score %d out of range 0..%d", score, total)
	}

	account, err := l.store.GetAccount(ctx, id)
	if err != nil {
		return QuizOutcome{}, err
	}

	// Exact rational comparison: score/total >= 1/2.
	passed := score*2 >= total
	xpGained := score * XPPerCorrectAnswer

	account.XP += xpGained
	account.Level = LevelForXP(account.XP)

	if !passed && account.Lives > 0 {
		account.Lives--
	}

	if passed {
		newStreak, lastActivity := streak.Compute(l.now(), account.LastActivityDate, account.Streak)
		account.Streak = newStreak
		account.LastActivityDate = &lastActivity
	}

	if err := l.store.PutAccount(ctx, account); err != nil {
		return QuizOutcome{}, fmt.Errorf("persist quiz result: %w", err)
	}

	slog.Info("quiz result applied",
		"learner_id", id,
		"score", score,
		"total", total,
		"passed", passed,
		"xp_gained", xpGained,
		"lives", account.Lives,
	)
	return QuizOutcome{
		Passed:    passed,
		XPGained:  xpGained,
		NewLevel:  account.Level,
		NewLives:  account.Lives,
		NewStreak: account.Streak,
	}, nil
}

// Leaderboard returns the top accounts by XP.
func (l *Ledger) Leaderboard(ctx context.Context, limit int) ([]*Account, error) {
	return l.store.TopByXP(ctx, limit)
}

// SetCurriculum stores a generated custom curriculum and marks onboarding
// complete.
func (l *Ledger) SetCurriculum(ctx context.Context, id string, topics []catalog.Topic, experience, interest string) (*Account, error) {
	account, err := l.store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	account.CustomCurriculum = topics
	account.Experience = experience
	account.InterestTopic = interest
	account.OnboardingCompleted = true

	if err := l.store.PutAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("persist curriculum: %w", err)
	}
	return account, nil
}

// SetPreferredLanguage stores the learner's language preference.
func (l *Ledger) SetPreferredLanguage(ctx context.Context, id, code string) error {
	account, err := l.store.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	account.PreferredLanguage = code
	if err := l.store.PutAccount(ctx, account); err != nil {
		return fmt.Errorf("persist language preference: %w", err)
	}
	return nil
}
