// Package generator produces learning content through the AI gateway.
//
// Every method degrades gracefully: when all providers fail or return
// unusable output, callers get a fallback string or an empty set, never
// an error. Handlers decide what an empty result means for them.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/biocactus/biocactus/internal/ai"
	"github.com/biocactus/biocactus/internal/catalog"
	"github.com/biocactus/biocactus/internal/content"
	"github.com/biocactus/biocactus/internal/learner"
)

// Completer is the subset of the AI router the generator needs.
type Completer interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (ai.CompletionResponse, error)
}

// Config holds the dependencies for a Generator.
type Config struct {
	Router Completer
	Logger *slog.Logger
}

// Generator turns topics, scores, and learner preferences into prompts
// and parses the model replies into typed content.
type Generator struct {
	router Completer
	logger *slog.Logger
}

// New creates a Generator from the given config.
func New(cfg Config) *Generator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		router: cfg.Router,
		logger: logger,
	}
}

// Lesson generates a short lesson on the topic, tuned to the learner's
// experience level and written in the given language.
func (g *Generator) Lesson(ctx context.Context, topicTitle string, prefs learner.Prefs, languageName string) string {
	interest := prefs.Interest
	if interest == "" {
		interest = "molecular biology"
	}

	prompt := fmt.Sprintf(`Explain the topic %q in a way suitable for a %s level student.
The student is specifically interested in %s.
Keep under 250 words. Friendly and encouraging tone.
Use a cactus-themed metaphor if possible.

CRITICAL: Generate the response STRICTLY in %s using native script.`,
		topicTitle, prefs.Experience, interest, languageName)

	resp, err := g.router.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{{Role: "user", Content: prompt}},
		Task:     ai.TaskLesson,
	})
	if err != nil {
		g.logger.Error("lesson generation failed", "topic", topicTitle, "error", err)
		return fmt.Sprintf("Welcome! (Note: Generation failed, fallback shown). Lesson on %s for %s level. Language: %s",
			topicTitle, prefs.Experience, languageName)
	}
	return resp.Content
}

// Quiz generates five multiple-choice questions on the topic. The reply
// is validated before being returned; anything malformed yields an empty
// slice so it is never cached.
func (g *Generator) Quiz(ctx context.Context, topicTitle string, prefs learner.Prefs, languageName string) []content.Question {
	prompt := fmt.Sprintf(`Generate exactly 5 distinct multiple-choice questions about the biotech topic: %q.
Target Audience: %s level student.

CRITICAL INSTRUCTIONS:
1. DO NOT use placeholder text like "Option A", "Option B", etc. for options. Provide actual plausible answers.
2. Ensure the "correctAnswer" matches one of the "options" EXACTLY.
3. Provide a helpful "explanation" for why the answer is correct.
4. Generate EVERYTHING (questions, options, explanations) STRICTLY in %s using native script.

Return ONLY a structured JSON array:
[
  {
    "question": "Question text in %s",
    "options": ["Choice 1", "Choice 2", "Choice 3", "Choice 4"],
    "correctAnswer": "Choice 1",
    "explanation": "Explanation in %s"
  }
]`, topicTitle, prefs.Experience, languageName, languageName, languageName)

	resp, err := g.router.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{{Role: "user", Content: prompt}},
		Task:     ai.TaskQuiz,
	})
	if err != nil {
		g.logger.Error("quiz generation failed", "topic", topicTitle, "error", err)
		return nil
	}

	var questions []content.Question
	if err := unmarshalArray(resp.Content, &questions); err != nil {
		g.logger.Error("quiz reply not parseable", "topic", topicTitle, "error", err)
		return nil
	}
	if err := content.ValidateQuestions(questions); err != nil {
		g.logger.Error("quiz reply failed validation", "topic", topicTitle, "error", err)
		return nil
	}
	return questions
}

// Feedback generates a short encouraging message for a quiz result.
func (g *Generator) Feedback(ctx context.Context, score, total int, prefs learner.Prefs, languageName string) string {
	prompt := fmt.Sprintf(`User at %s level scored %d out of %d in a biology quiz.
Generate a short, friendly, and encouraging feedback message.

CRITICAL: Generate the response STRICTLY in %s using native script.`,
		prefs.Experience, score, total, languageName)

	resp, err := g.router.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{{Role: "user", Content: prompt}},
		Task:     ai.TaskFeedback,
	})
	if err != nil {
		g.logger.Error("feedback generation failed", "error", err)
		return fmt.Sprintf("Great effort! %d/%d. (Language fallback)", score, total)
	}
	return resp.Content
}

// MascotMessage generates a short cactus-themed message for the given
// scenario, e.g. "welcome_back" or "streak".
func (g *Generator) MascotMessage(ctx context.Context, scenario, languageName string) string {
	prompt := fmt.Sprintf(`Generate a short cactus-themed message for a %s scenario in a biology learning app.
Scenarios could be: welcoming back, encouraging after a lesson, celebrating a streak, or a fun biology fact.

CRITICAL: Generate the response STRICTLY in %s using native script.
Keep it under 15 words. Friendly and cactus-like!`, scenario, languageName)

	resp, err := g.router.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{{Role: "user", Content: prompt}},
		Task:     ai.TaskChat,
	})
	if err != nil {
		g.logger.Error("mascot message generation failed", "scenario", scenario, "error", err)
		return "Keep growing!"
	}
	return strings.TrimSpace(resp.Content)
}

// Curriculum generates a personalized four-module curriculum for the
// learner's experience level and interest.
func (g *Generator) Curriculum(ctx context.Context, prefs learner.Prefs, languageName string) []catalog.Topic {
	interest := prefs.Interest
	if interest == "" {
		interest = "general biology"
	}

	prompt := fmt.Sprintf(`Create a personalized biology curriculum for a %s level student interested in %s.
Return exactly 4 course modules.
Each module should have:
- id (url-friendly slug)
- title
- description (max 20 words)
- icon (emoji)
- color (Tailwind-compatible gradient like "from-X to-Y")
- order (1-4)
- lessonsCount (integer between 5 and 10)
- xpReward (integer, e.g., 500)

CRITICAL: Generate titles and descriptions STRICTLY in %s using native script.

Return structured JSON format ONLY:
[
  {
    "id": "module-slug",
    "title": "Module Title in %s",
    "description": "Short description in %s",
    "icon": "🧬",
    "color": "from-emerald-500 to-teal-600",
    "order": 1,
    "lessonsCount": 5,
    "xpReward": 500
  }
]`, prefs.Experience, interest, languageName, languageName, languageName)

	resp, err := g.router.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{{Role: "user", Content: prompt}},
		Task:     ai.TaskCurriculum,
	})
	if err != nil {
		g.logger.Error("curriculum generation failed", "error", err)
		return nil
	}

	var topics []catalog.Topic
	if err := unmarshalArray(resp.Content, &topics); err != nil {
		g.logger.Error("curriculum reply not parseable", "error", err)
		return nil
	}
	for i := range topics {
		if topics[i].ID == "" {
			topics[i].ID = catalog.Slugify(topics[i].Title)
		}
	}
	return topics
}

// Models wrap JSON in prose or markdown fences; take the outermost
// bracketed array before unmarshalling.
var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

func unmarshalArray(reply string, v any) error {
	raw := reply
	if match := jsonArrayPattern.FindString(reply); match != "" {
		raw = match
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("unmarshal model reply: %w", err)
	}
	return nil
}
