package server

import (
	"context"
	"net/http"
	"time"

	"github.com/biocactus/biocactus/internal/activity"
	"github.com/biocactus/biocactus/internal/apperr"
	"github.com/biocactus/biocactus/internal/catalog"
	"github.com/biocactus/biocactus/internal/content"
	"github.com/biocactus/biocactus/internal/progress"
)

// lessonTopic is the topic merged with the learner's progress on it.
type lessonTopic struct {
	catalog.Topic
	CompletedLessons     []string         `json:"completedLessons"`
	QuizScores           []progress.Score `json:"quizScores"`
	CompletionPercentage int              `json:"completionPercentage"`
	LastAccessed         time.Time        `json:"lastAccessed"`
}

type lessonResponse struct {
	Content string      `json:"content"`
	Topic   lessonTopic `json:"topic"`
}

func (s *Server) handleLesson(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	topicID := r.PathValue("topicId")

	account, err := s.ledger.Account(r.Context(), identity.ID)
	if err != nil {
		if apperr.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondFailure(w, err, "Internal server error generating lesson")
		return
	}

	topic, err := s.catalog.Resolve(r.Context(), topicID, account.CustomCurriculum)
	if err != nil {
		if apperr.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "Topic not found")
			return
		}
		respondFailure(w, err, "Internal server error generating lesson")
		return
	}

	lang := s.resolveLanguage(r, account)
	lessonContent := s.generator.Lesson(r.Context(), topic.Title, account.Prefs(), lang.Name)

	// Reading a lesson marks it and advances XP and the streak.
	record, err := s.tracker.RecordLessonAccess(r.Context(), account.ID, topicID, topicID)
	if err != nil {
		respondFailure(w, err, "Internal server error generating lesson")
		return
	}
	if _, err := s.ledger.ApplyLessonCompletion(r.Context(), account.ID); err != nil {
		respondFailure(w, err, "Internal server error generating lesson")
		return
	}

	if err := s.events.Log(r.Context(), activity.Event{
		LearnerID: account.ID,
		EventType: activity.EventLessonCompleted,
		Data:      map[string]any{"topicId": topicID},
	}); err != nil {
		s.logger.Warn("failed to log lesson event", "error", err)
	}

	respondData(w, lessonResponse{
		Content: lessonContent,
		Topic: lessonTopic{
			Topic:                topic,
			CompletedLessons:     record.CompletedLessons,
			QuizScores:           record.QuizScores,
			CompletionPercentage: record.CompletionPercentage,
			LastAccessed:         record.LastAccessed,
		},
	}, "Lesson generated successfully")
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)
	topicID := r.PathValue("topicId")

	account, err := s.ledger.Account(r.Context(), identity.ID)
	if err != nil {
		if apperr.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondFailure(w, err, "Internal server error generating quiz")
		return
	}

	topic, err := s.catalog.Resolve(r.Context(), topicID, account.CustomCurriculum)
	if err != nil {
		if apperr.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "Topic not found")
			return
		}
		respondFailure(w, err, "Internal server error generating quiz")
		return
	}

	lang := s.resolveLanguage(r, account)
	prefs := account.Prefs()

	questions, cached, err := s.content.GetOrGenerate(r.Context(), topicID, lang.Code, func(ctx context.Context) []content.Question {
		return s.generator.Quiz(ctx, topic.Title, prefs, lang.Name)
	})
	if err != nil {
		respondFailure(w, err, "Internal server error generating quiz")
		return
	}

	s.logger.Debug("quiz served", "topic_id", topicID, "language", lang.Code, "cached", cached)

	respond(w, http.StatusOK, envelope{
		Success:  true,
		Language: lang.Code,
		Data:     map[string]any{"questions": questions},
		Message:  "Quiz generated successfully",
	})
}

type quizSubmitRequest struct {
	TopicID     string             `json:"topicId"`
	Answers     []string           `json:"answers"`
	Questions   []content.Question `json:"questions"`
	LessonIndex int                `json:"lessonIndex"`
}

type quizSubmitResponse struct {
	Score    int    `json:"score"`
	Total    int    `json:"total"`
	Passed   bool   `json:"passed"`
	XPGained int    `json:"xpGained"`
	Level    int    `json:"level"`
	Feedback string `json:"feedback"`
}

func (s *Server) handleQuizSubmit(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	var req quizSubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, err, "Internal server error submitting quiz")
		return
	}
	if req.TopicID == "" {
		respondError(w, http.StatusBadRequest, "topicId is required")
		return
	}
	if len(req.Questions) == 0 {
		respondError(w, http.StatusBadRequest, "questions are required")
		return
	}

	// Score server-side against the submitted question set.
	score := 0
	for i, q := range req.Questions {
		if i < len(req.Answers) && req.Answers[i] == q.CorrectAnswer {
			score++
		}
	}
	total := len(req.Questions)

	account, err := s.ledger.Account(r.Context(), identity.ID)
	if err != nil {
		respondFailure(w, err, "Internal server error submitting quiz")
		return
	}
	lang := s.resolveLanguage(r, account)

	outcome, err := s.ledger.ApplyQuizResult(r.Context(), account.ID, score, total)
	if err != nil {
		respondFailure(w, err, "Internal server error submitting quiz")
		return
	}

	feedbackMsg := s.generator.Feedback(r.Context(), score, total, account.Prefs(), lang.Name)

	if _, err := s.tracker.RecordQuizSubmission(r.Context(), account.ID, req.TopicID, progress.Submission{
		Score:       score,
		Total:       total,
		Passed:      outcome.Passed,
		LessonIndex: req.LessonIndex,
	}, account.CustomCurriculum); err != nil {
		respondFailure(w, err, "Internal server error submitting quiz")
		return
	}

	if err := s.events.Log(r.Context(), activity.Event{
		LearnerID: account.ID,
		EventType: activity.EventQuizSubmitted,
		Data: map[string]any{
			"topicId": req.TopicID,
			"score":   score,
			"total":   total,
			"passed":  outcome.Passed,
		},
	}); err != nil {
		s.logger.Warn("failed to log quiz event", "error", err)
	}

	message := "Quiz passed!"
	if !outcome.Passed {
		message = "Quiz failed. Try again to unlock the next level."
	}

	respond(w, http.StatusOK, envelope{
		Success:  true,
		Language: lang.Code,
		Data: quizSubmitResponse{
			Score:    score,
			Total:    total,
			Passed:   outcome.Passed,
			XPGained: outcome.XPGained,
			Level:    outcome.NewLevel,
			Feedback: feedbackMsg,
		},
		Message: message,
	})
}

type progressResponse struct {
	Topics            []progress.TopicProgress `json:"topics"`
	OverallCompletion float64                  `json:"overallCompletion"`
	XP                int                      `json:"xp"`
	Level             int                      `json:"level"`
	Streak            int                      `json:"streak"`
	Lives             int                      `json:"lives"`
	LastActivityDate  *time.Time               `json:"lastActivityDate"`
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	account, err := s.ledger.Account(r.Context(), identity.ID)
	if err != nil {
		respondFailure(w, err, "Internal server error retrieving progress")
		return
	}

	topics, err := s.catalog.Topics(r.Context(), account.CustomCurriculum)
	if err != nil {
		respondFailure(w, err, "Internal server error retrieving progress")
		return
	}

	overview, err := s.tracker.Overview(r.Context(), account.ID, topics)
	if err != nil {
		respondFailure(w, err, "Internal server error retrieving progress")
		return
	}

	respondData(w, progressResponse{
		Topics:            overview.Topics,
		OverallCompletion: overview.OverallCompletion,
		XP:                account.XP,
		Level:             account.Level,
		Streak:            account.Streak,
		Lives:             account.Lives,
		LastActivityDate:  account.LastActivityDate,
	}, "Progress retrieved successfully")
}
