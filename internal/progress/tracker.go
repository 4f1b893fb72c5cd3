package progress

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/biocactus/biocactus/internal/apperr"
	"github.com/biocactus/biocactus/internal/catalog"
)

// TrackerConfig holds dependencies for the progress tracker.
type TrackerConfig struct {
	Store    Store
	Resolver *catalog.Resolver
	Now      func() time.Time // clock override for tests
}

// Tracker owns per-(learner, topic) progress records. The tracker's writes
// are independent of the ledger's account writes: a failure between the two
// leaves a narrow, accepted inconsistency window rather than a partial
// document.
type Tracker struct {
	store    Store
	resolver *catalog.Resolver
	now      func() time.Time
}

// NewTracker creates a progress tracker.
func NewTracker(cfg TrackerConfig) *Tracker {
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Tracker{store: store, resolver: cfg.Resolver, now: now}
}

// Submission is a scored quiz result to record.
type Submission struct {
	Score       int
	Total       int
	Passed      bool
	LessonIndex int
}

// LessonKey derives the completed-lesson key for a submission: a positional
// key when the lesson index is known, otherwise the topic itself.
func (s Submission) LessonKey(topicID string) string {
	if s.LessonIndex > 0 {
		return fmt.Sprintf("lesson_%d", s.LessonIndex)
	}
	return topicID
}

// Records lists all of the learner's per-topic progress records.
func (t *Tracker) Records(ctx context.Context, learnerID string) ([]*Record, error) {
	return t.store.ListRecords(ctx, learnerID)
}

// RecordLessonAccess loads or lazily creates the record for (learner, topic),
// set-inserts the lesson key, and stamps last access. The completion
// percentage is not recomputed here; it is settled at quiz submission against
// the topic's authoritative lesson count.
func (t *Tracker) RecordLessonAccess(ctx context.Context, learnerID, topicID, lessonKey string) (*Record, error) {
	record, err := t.loadOrCreate(ctx, learnerID, topicID)
	if err != nil {
		return nil, err
	}

	record.AddLesson(lessonKey)
	record.LastAccessed = t.now()

	if err := t.store.PutRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("persist lesson access: %w", err)
	}
	return record, nil
}

// RecordQuizSubmission appends a score-history entry, marks the lesson
// complete on a pass, and recomputes the completion percentage against the
// topic's lesson count. custom is the learner's custom curriculum, used when
// the topic is not in the shared catalog.
func (t *Tracker) RecordQuizSubmission(ctx context.Context, learnerID, topicID string, sub Submission, custom []catalog.Topic) (*Record, error) {
	if sub.Total <= 0 {
		return nil, apperr.Invalidf("quiz total must be positive, got %d", sub.Total)
	}

	record, err := t.loadOrCreate(ctx, learnerID, topicID)
	if err != nil {
		return nil, err
	}

	record.QuizScores = append(record.QuizScores, Score{
		Score:       sub.Score,
		Total:       sub.Total,
		Passed:      sub.Passed,
		LessonIndex: sub.LessonIndex,
		Timestamp:   t.now(),
	})

	if sub.Passed {
		record.AddLesson(sub.LessonKey(topicID))
	}

	lessonCount := t.resolver.LessonCount(ctx, topicID, custom)
	record.CompletionPercentage = completionPercentage(len(record.CompletedLessons), lessonCount)
	record.LastAccessed = t.now()

	if err := t.store.PutRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("persist quiz submission: %w", err)
	}

	slog.Info("quiz submission recorded",
		"learner_id", learnerID,
		"topic_id", topicID,
		"passed", sub.Passed,
		"completion", record.CompletionPercentage,
	)
	return record, nil
}

// TopicProgress is a topic merged with the learner's progress on it.
type TopicProgress struct {
	catalog.Topic
	CompletedLessons     []string `json:"completedLessons"`
	QuizScores           []Score  `json:"quizScores"`
	CompletionPercentage int      `json:"completionPercentage"`
}

// Overview aggregates a learner's progress across the given topics.
type Overview struct {
	Topics            []TopicProgress `json:"topics"`
	OverallCompletion float64         `json:"overallCompletion"`
}

// Overview merges the learner's records into the topic list and computes the
// share of fully completed topics.
func (t *Tracker) Overview(ctx context.Context, learnerID string, topics []catalog.Topic) (Overview, error) {
	records, err := t.store.ListRecords(ctx, learnerID)
	if err != nil {
		return Overview{}, fmt.Errorf("load progress records: %w", err)
	}

	byTopic := make(map[string]*Record, len(records))
	for _, r := range records {
		byTopic[r.TopicID] = r
	}

	overview := Overview{Topics: make([]TopicProgress, 0, len(topics))}
	completed := 0
	for _, topic := range topics {
		tp := TopicProgress{
			Topic:            topic,
			CompletedLessons: []string{},
			QuizScores:       []Score{},
		}
		if r, ok := byTopic[topic.ID]; ok {
			tp.CompletedLessons = r.CompletedLessons
			tp.QuizScores = r.QuizScores
			tp.CompletionPercentage = r.CompletionPercentage
		}
		if tp.CompletionPercentage >= 100 {
			completed++
		}
		overview.Topics = append(overview.Topics, tp)
	}

	if len(topics) > 0 {
		overview.OverallCompletion = float64(completed) / float64(len(topics)) * 100
	}
	return overview, nil
}

func (t *Tracker) loadOrCreate(ctx context.Context, learnerID, topicID string) (*Record, error) {
	record, err := t.store.GetRecord(ctx, learnerID, topicID)
	if err == nil {
		return record, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}
	return &Record{
		LearnerID:        learnerID,
		TopicID:          topicID,
		CompletedLessons: []string{},
		QuizScores:       []Score{},
	}, nil
}

// completionPercentage rounds completed/total to a percentage, clamped to
// 100 so duplicate custom-lesson keys cannot push it past full.
func completionPercentage(completed, lessonCount int) int {
	if lessonCount < 1 {
		return 0
	}
	pct := int(math.Round(float64(completed) / float64(lessonCount) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}
