package learner_test

import (
	"context"
	"testing"
	"time"

	"github.com/biocactus/biocactus/internal/apperr"
	"github.com/biocactus/biocactus/internal/learner"
	"github.com/biocactus/biocactus/internal/platform/database"
)

func TestPostgresStore_AccountRoundTrip(t *testing.T) {
	db := database.NewTestDB(t)
	store, err := learner.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	ctx := context.Background()

	if _, err := store.GetAccount(ctx, "missing"); !apperr.IsNotFound(err) {
		t.Errorf("GetAccount(missing) error = %v, want not found", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	account := &learner.Account{
		ID:                "learner-1",
		Email:             "priya@example.com",
		DisplayName:       "Priya",
		XP:                120,
		Level:             1,
		Streak:            3,
		LastActivityDate:  &now,
		Lives:             4,
		PreferredLanguage: "ta",
		Experience:        "beginner",
		CreatedAt:         now,
		LastLogin:         now,
	}
	if err := store.PutAccount(ctx, account); err != nil {
		t.Fatalf("PutAccount() error = %v", err)
	}

	got, err := store.GetAccount(ctx, "learner-1")
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if got.XP != 120 || got.Streak != 3 || got.Lives != 4 || got.PreferredLanguage != "ta" {
		t.Errorf("got = %+v", got)
	}
	if got.LastActivityDate == nil || !got.LastActivityDate.Equal(now) {
		t.Errorf("LastActivityDate = %v, want %v", got.LastActivityDate, now)
	}

	// Upsert overwrites the document.
	account.XP = 200
	if err := store.PutAccount(ctx, account); err != nil {
		t.Fatalf("PutAccount() update error = %v", err)
	}
	got, _ = store.GetAccount(ctx, "learner-1")
	if got.XP != 200 {
		t.Errorf("XP after update = %d, want 200", got.XP)
	}
}

func TestPostgresStore_TopByXP(t *testing.T) {
	db := database.NewTestDB(t)
	store, err := learner.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	ctx := context.Background()

	for _, a := range []*learner.Account{
		{ID: "a", DisplayName: "A", XP: 50},
		{ID: "b", DisplayName: "B", XP: 300},
		{ID: "c", DisplayName: "C", XP: 120},
	} {
		if err := store.PutAccount(ctx, a); err != nil {
			t.Fatalf("PutAccount(%s) error = %v", a.ID, err)
		}
	}

	top, err := store.TopByXP(ctx, 2)
	if err != nil {
		t.Fatalf("TopByXP() error = %v", err)
	}
	if len(top) != 2 || top[0].ID != "b" || top[1].ID != "c" {
		t.Errorf("TopByXP() = %+v, want b then c", top)
	}
}
