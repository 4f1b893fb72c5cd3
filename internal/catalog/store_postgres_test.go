package catalog_test

import (
	"context"
	"testing"

	"github.com/biocactus/biocactus/internal/apperr"
	"github.com/biocactus/biocactus/internal/catalog"
	"github.com/biocactus/biocactus/internal/platform/database"
)

func TestPostgresStore_TopicRoundTrip(t *testing.T) {
	db := database.NewTestDB(t)
	store, err := catalog.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	ctx := context.Background()

	if _, err := store.GetTopic(ctx, "missing"); !apperr.IsNotFound(err) {
		t.Errorf("GetTopic(missing) error = %v, want not found", err)
	}

	topic := catalog.Topic{
		ID:          "enzyme-kinetics",
		Title:       "Enzyme Kinetics",
		Description: "Rates, substrates, and inhibition.",
		Icon:        "⚗️",
		Color:       "#2E8B57",
		Order:       7,
		LessonCount: 6,
		XPReward:    120,
	}
	if err := store.PutTopic(ctx, topic); err != nil {
		t.Fatalf("PutTopic() error = %v", err)
	}

	got, err := store.GetTopic(ctx, "enzyme-kinetics")
	if err != nil {
		t.Fatalf("GetTopic() error = %v", err)
	}
	if got.Title != "Enzyme Kinetics" || got.LessonCount != 6 || got.XPReward != 120 {
		t.Errorf("got = %+v", got)
	}

	// Upsert replaces the document.
	topic.LessonCount = 8
	if err := store.PutTopic(ctx, topic); err != nil {
		t.Fatalf("PutTopic() update error = %v", err)
	}
	got, _ = store.GetTopic(ctx, "enzyme-kinetics")
	if got.LessonCount != 8 {
		t.Errorf("LessonCount after update = %d, want 8", got.LessonCount)
	}
}

func TestPostgresStore_ListTopicsOrdering(t *testing.T) {
	db := database.NewTestDB(t)
	store, err := catalog.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	ctx := context.Background()

	for _, topic := range []catalog.Topic{
		{ID: "third", Title: "Third", Order: 3},
		{ID: "first", Title: "First", Order: 1},
		{ID: "second", Title: "Second", Order: 2},
	} {
		if err := store.PutTopic(ctx, topic); err != nil {
			t.Fatalf("PutTopic(%s) error = %v", topic.ID, err)
		}
	}

	topics, err := store.ListTopics(ctx)
	if err != nil {
		t.Fatalf("ListTopics() error = %v", err)
	}
	if len(topics) != 3 {
		t.Fatalf("len(topics) = %d, want 3", len(topics))
	}
	for i, want := range []string{"first", "second", "third"} {
		if topics[i].ID != want {
			t.Errorf("topics[%d].ID = %q, want %q", i, topics[i].ID, want)
		}
	}
}
