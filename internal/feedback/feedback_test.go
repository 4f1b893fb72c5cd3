package feedback_test

import (
	"context"
	"testing"

	"github.com/biocactus/biocactus/internal/apperr"
	"github.com/biocactus/biocactus/internal/feedback"
)

func TestMemoryStore_Add(t *testing.T) {
	store := feedback.NewMemoryStore()
	ctx := context.Background()

	err := store.Add(ctx, feedback.Entry{
		LearnerID: "learner-1",
		Type:      "bug",
		Message:   "The streak counter shows yesterday's value.",
		Rating:    3,
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	entries, err := store.ListByLearner(ctx, "learner-1")
	if err != nil {
		t.Fatalf("ListByLearner() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Status != "new" {
		t.Errorf("Status = %q, want new", entries[0].Status)
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestMemoryStore_Add_Validation(t *testing.T) {
	store := feedback.NewMemoryStore()
	ctx := context.Background()

	tests := []struct {
		name  string
		entry feedback.Entry
	}{
		{"missing learner", feedback.Entry{Type: "idea", Message: "More plants!"}},
		{"missing type", feedback.Entry{LearnerID: "learner-1", Message: "More plants!"}},
		{"missing message", feedback.Entry{LearnerID: "learner-1", Type: "idea"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Add(ctx, tt.entry); !apperr.IsInvalid(err) {
				t.Errorf("Add() error = %v, want invalid", err)
			}
		})
	}
}

func TestMemoryStore_ListByLearner_FiltersOthers(t *testing.T) {
	store := feedback.NewMemoryStore()
	ctx := context.Background()

	store.Add(ctx, feedback.Entry{LearnerID: "a", Type: "idea", Message: "x"})
	store.Add(ctx, feedback.Entry{LearnerID: "b", Type: "idea", Message: "y"})

	entries, err := store.ListByLearner(ctx, "a")
	if err != nil {
		t.Fatalf("ListByLearner() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Message != "x" {
		t.Errorf("entries = %+v, want only learner a's entry", entries)
	}
}
