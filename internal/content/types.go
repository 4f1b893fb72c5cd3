// Package content caches generated quiz question sets per (topic, language)
// and guards generation so each key is produced at most once.
package content

import "time"

// Question is one multiple-choice quiz question.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// Entry is a persisted question set for one (topic, language) pair. Entries
// are immutable once written and never expire.
type Entry struct {
	TopicID   string     `json:"topicId"`
	Language  string     `json:"language"`
	Questions []Question `json:"quiz"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Key builds the cache key for a topic and language code.
func Key(topicID, languageCode string) string {
	return topicID + "_" + languageCode
}
