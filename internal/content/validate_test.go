package content_test

import (
	"testing"

	"github.com/biocactus/biocactus/internal/content"
)

func validQuestion() content.Question {
	return content.Question{
		Question:      "Which base pairs with adenine in DNA?",
		Options:       []string{"Thymine", "Guanine", "Cytosine", "Uracil"},
		CorrectAnswer: "Thymine",
		Explanation:   "Adenine pairs with thymine via two hydrogen bonds.",
	}
}

func TestValidateQuestions_Valid(t *testing.T) {
	if err := content.ValidateQuestions([]content.Question{validQuestion()}); err != nil {
		t.Fatalf("ValidateQuestions() error = %v, want nil", err)
	}
}

func TestValidateQuestions_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*content.Question)
	}{
		{"empty question text", func(q *content.Question) { q.Question = "" }},
		{"three options", func(q *content.Question) { q.Options = q.Options[:3] }},
		{"five options", func(q *content.Question) { q.Options = append(q.Options, "Extra") }},
		{"duplicate options", func(q *content.Question) { q.Options[1] = q.Options[0] }},
		{"answer not among options", func(q *content.Question) { q.CorrectAnswer = "Adenine" }},
		{"placeholder empty option", func(q *content.Question) { q.Options[2] = "" }},
		{"missing explanation", func(q *content.Question) { q.Explanation = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestion()
			tt.mutate(&q)
			if err := content.ValidateQuestions([]content.Question{q}); err == nil {
				t.Error("ValidateQuestions() = nil, want error")
			}
		})
	}
}

func TestValidateQuestions_EmptySet(t *testing.T) {
	if err := content.ValidateQuestions(nil); err == nil {
		t.Error("ValidateQuestions(nil) = nil, want error")
	}
}
