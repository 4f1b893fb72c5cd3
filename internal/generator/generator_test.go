package generator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/biocactus/biocactus/internal/ai"
	"github.com/biocactus/biocactus/internal/generator"
	"github.com/biocactus/biocactus/internal/learner"
)

const validQuizReply = `Here are your questions:
[
  {
    "question": "What enzyme unwinds the DNA double helix?",
    "options": ["Helicase", "Ligase", "Polymerase", "Primase"],
    "correctAnswer": "Helicase",
    "explanation": "Helicase separates the two strands ahead of the replication fork."
  },
  {
    "question": "Which base pairs with adenine in DNA?",
    "options": ["Thymine", "Cytosine", "Guanine", "Uracil"],
    "correctAnswer": "Thymine",
    "explanation": "Adenine forms two hydrogen bonds with thymine."
  }
]`

func newGenerator(mock *ai.MockProvider) *generator.Generator {
	return generator.New(generator.Config{Router: mock})
}

func TestGenerator_Lesson(t *testing.T) {
	mock := ai.NewMockProvider("DNA replication is like a cactus growing a new arm.")
	gen := newGenerator(mock)

	lesson := gen.Lesson(context.Background(), "DNA Replication", learner.Prefs{Experience: "beginner"}, "English")

	if !strings.Contains(lesson, "cactus") {
		t.Errorf("Lesson() = %q, want mock content", lesson)
	}
	prompt := mock.LastRequest.Messages[0].Content
	if !strings.Contains(prompt, `"DNA Replication"`) {
		t.Errorf("prompt missing topic title: %q", prompt)
	}
	if !strings.Contains(prompt, "beginner") {
		t.Errorf("prompt missing experience level: %q", prompt)
	}
	if !strings.Contains(prompt, "STRICTLY in English") {
		t.Errorf("prompt missing language instruction: %q", prompt)
	}
	if mock.LastRequest.Task != ai.TaskLesson {
		t.Errorf("Task = %v, want TaskLesson", mock.LastRequest.Task)
	}
}

func TestGenerator_Lesson_FallbackOnError(t *testing.T) {
	mock := &ai.MockProvider{Err: errors.New("quota exceeded")}
	gen := newGenerator(mock)

	lesson := gen.Lesson(context.Background(), "CRISPR", learner.Prefs{Experience: "advanced"}, "Tamil")

	if !strings.Contains(lesson, "CRISPR") || !strings.Contains(lesson, "Tamil") {
		t.Errorf("fallback lesson = %q, want topic and language mentioned", lesson)
	}
}

func TestGenerator_Quiz(t *testing.T) {
	mock := ai.NewMockProvider(validQuizReply)
	gen := newGenerator(mock)

	questions := gen.Quiz(context.Background(), "DNA Replication", learner.Prefs{Experience: "beginner"}, "English")

	if len(questions) != 2 {
		t.Fatalf("len(questions) = %d, want 2", len(questions))
	}
	if questions[0].CorrectAnswer != "Helicase" {
		t.Errorf("CorrectAnswer = %q, want %q", questions[0].CorrectAnswer, "Helicase")
	}
	if mock.LastRequest.Task != ai.TaskQuiz {
		t.Errorf("Task = %v, want TaskQuiz", mock.LastRequest.Task)
	}
}

func TestGenerator_Quiz_EmptyOnProviderError(t *testing.T) {
	mock := &ai.MockProvider{Err: errors.New("all AI providers failed")}
	gen := newGenerator(mock)

	if questions := gen.Quiz(context.Background(), "CRISPR", learner.Prefs{}, "English"); len(questions) != 0 {
		t.Errorf("Quiz() = %d questions, want 0 on provider error", len(questions))
	}
}

func TestGenerator_Quiz_EmptyOnMalformedReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"prose only", "I cannot generate a quiz right now."},
		{"truncated json", `[{"question": "What`},
		{"wrong answer key", `[{"question": "Q?", "options": ["a", "b", "c", "d"], "correctAnswer": "e", "explanation": "x"}]`},
		{"three options", `[{"question": "Q?", "options": ["a", "b", "c"], "correctAnswer": "a", "explanation": "x"}]`},
		{"empty array", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newGenerator(ai.NewMockProvider(tt.reply))
			if questions := gen.Quiz(context.Background(), "CRISPR", learner.Prefs{}, "English"); len(questions) != 0 {
				t.Errorf("Quiz() = %d questions, want 0", len(questions))
			}
		})
	}
}

func TestGenerator_Feedback(t *testing.T) {
	mock := ai.NewMockProvider("Fantastic work, keep it up!")
	gen := newGenerator(mock)

	msg := gen.Feedback(context.Background(), 4, 5, learner.Prefs{Experience: "beginner"}, "Hindi")

	if msg != "Fantastic work, keep it up!" {
		t.Errorf("Feedback() = %q", msg)
	}
	prompt := mock.LastRequest.Messages[0].Content
	if !strings.Contains(prompt, "scored 4 out of 5") {
		t.Errorf("prompt missing score: %q", prompt)
	}
}

func TestGenerator_Feedback_FallbackOnError(t *testing.T) {
	mock := &ai.MockProvider{Err: errors.New("timeout")}
	gen := newGenerator(mock)

	msg := gen.Feedback(context.Background(), 3, 5, learner.Prefs{}, "English")

	if !strings.Contains(msg, "3/5") {
		t.Errorf("fallback feedback = %q, want score included", msg)
	}
}

func TestGenerator_MascotMessage(t *testing.T) {
	mock := ai.NewMockProvider("  Stay sharp, little sprout!  \n")
	gen := newGenerator(mock)

	msg := gen.MascotMessage(context.Background(), "welcome_back", "English")

	if msg != "Stay sharp, little sprout!" {
		t.Errorf("MascotMessage() = %q, want trimmed content", msg)
	}
}

func TestGenerator_MascotMessage_FallbackOnError(t *testing.T) {
	mock := &ai.MockProvider{Err: errors.New("down")}
	gen := newGenerator(mock)

	if msg := gen.MascotMessage(context.Background(), "streak", "English"); msg != "Keep growing!" {
		t.Errorf("MascotMessage() = %q, want %q", msg, "Keep growing!")
	}
}

func TestGenerator_Curriculum(t *testing.T) {
	reply := "```json\n" + `[
  {"id": "genetics-basics", "title": "Genetics Basics", "description": "Genes and heredity", "icon": "🧬", "color": "from-emerald-500 to-teal-600", "order": 1, "lessonsCount": 5, "xpReward": 500},
  {"title": "Cell Structures", "description": "Organelles up close", "icon": "🔬", "color": "from-sky-500 to-indigo-600", "order": 2, "lessonsCount": 6, "xpReward": 600}
]` + "\n```"
	mock := ai.NewMockProvider(reply)
	gen := newGenerator(mock)

	topics := gen.Curriculum(context.Background(), learner.Prefs{Experience: "beginner", Interest: "genetics"}, "English")

	if len(topics) != 2 {
		t.Fatalf("len(topics) = %d, want 2", len(topics))
	}
	if topics[0].ID != "genetics-basics" {
		t.Errorf("ID = %q, want %q", topics[0].ID, "genetics-basics")
	}
	// Missing id is derived from the title.
	if topics[1].ID != "cell-structures" {
		t.Errorf("derived ID = %q, want %q", topics[1].ID, "cell-structures")
	}
	if topics[1].LessonCount != 6 {
		t.Errorf("LessonCount = %d, want 6", topics[1].LessonCount)
	}
}

func TestGenerator_Curriculum_EmptyOnError(t *testing.T) {
	mock := &ai.MockProvider{Err: errors.New("no providers")}
	gen := newGenerator(mock)

	if topics := gen.Curriculum(context.Background(), learner.Prefs{}, "English"); len(topics) != 0 {
		t.Errorf("Curriculum() = %d topics, want 0", len(topics))
	}
}
