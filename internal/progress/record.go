// Package progress tracks per-learner, per-topic completion records and
// score history.
package progress

import "time"

// Score is one quiz submission in a record's history.
type Score struct {
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Passed      bool      `json:"passed"`
	LessonIndex int       `json:"lessonIndex,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Record is one learner's progress through one topic. The store key is
// learnerID_topicID. Records are created lazily on first lesson access and
// never deleted.
type Record struct {
	LearnerID            string    `json:"userId"`
	TopicID              string    `json:"topicId"`
	CompletedLessons     []string  `json:"completedLessons"`
	QuizScores           []Score   `json:"quizScores"`
	CompletionPercentage int       `json:"completionPercentage"`
	LastAccessed         time.Time `json:"lastAccessed"`
}

// Key builds the record key for a learner and topic.
func Key(learnerID, topicID string) string {
	return learnerID + "_" + topicID
}

// HasLesson reports whether the lesson key is already completed.
func (r *Record) HasLesson(key string) bool {
	for _, l := range r.CompletedLessons {
		if l == key {
			return true
		}
	}
	return false
}

// AddLesson appends the lesson key with set semantics.
func (r *Record) AddLesson(key string) {
	if !r.HasLesson(key) {
		r.CompletedLessons = append(r.CompletedLessons, key)
	}
}
