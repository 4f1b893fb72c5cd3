package content_test

import (
	"context"
	"testing"
	"time"

	"github.com/biocactus/biocactus/internal/apperr"
	"github.com/biocactus/biocactus/internal/content"
	"github.com/biocactus/biocactus/internal/platform/database"
)

func TestPostgresStore_PutIfAbsent(t *testing.T) {
	db := database.NewTestDB(t)
	store, err := content.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	ctx := context.Background()

	if _, err := store.Get(ctx, "dna-replication", "en"); !apperr.IsNotFound(err) {
		t.Errorf("Get(missing) error = %v, want not found", err)
	}

	entry := &content.Entry{
		TopicID:  "dna-replication",
		Language: "en",
		Questions: []content.Question{{
			Question:      "Which enzyme unwinds the double helix?",
			Options:       []string{"Helicase", "Ligase", "Polymerase", "Primase"},
			CorrectAnswer: "Helicase",
			Explanation:   "Helicase separates the two strands ahead of the fork.",
		}},
		CreatedAt: time.Now().UTC(),
	}
	inserted, err := store.PutIfAbsent(ctx, entry)
	if err != nil {
		t.Fatalf("PutIfAbsent() error = %v", err)
	}
	if !inserted {
		t.Fatal("PutIfAbsent() first write reported a conflict")
	}

	// A second write for the same (topic, language) must lose and leave the
	// original untouched.
	rival := &content.Entry{
		TopicID:   "dna-replication",
		Language:  "en",
		Questions: []content.Question{{Question: "other", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"}},
		CreatedAt: time.Now().UTC(),
	}
	inserted, err = store.PutIfAbsent(ctx, rival)
	if err != nil {
		t.Fatalf("PutIfAbsent() second write error = %v", err)
	}
	if inserted {
		t.Error("PutIfAbsent() overwrote an existing entry")
	}

	got, err := store.Get(ctx, "dna-replication", "en")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Questions) != 1 || got.Questions[0].CorrectAnswer != "Helicase" {
		t.Errorf("got = %+v, want the original question set", got.Questions)
	}

	// Same topic, different language is a distinct entry.
	tamil := &content.Entry{TopicID: "dna-replication", Language: "ta", Questions: entry.Questions, CreatedAt: time.Now().UTC()}
	if inserted, err := store.PutIfAbsent(ctx, tamil); err != nil || !inserted {
		t.Fatalf("PutIfAbsent(ta) = %v, %v, want insert", inserted, err)
	}
}
