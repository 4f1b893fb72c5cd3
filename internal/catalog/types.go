// Package catalog resolves curriculum topics, either from the shared topic
// catalog or from a learner's generated custom curriculum.
package catalog

// Topic is a curriculum unit with a fixed lesson count and XP reward.
// Topics are immutable once created; the core only reads them.
type Topic struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description"`
	Icon        string `json:"icon,omitempty" yaml:"icon"`
	Color       string `json:"color,omitempty" yaml:"color"`
	Order       int    `json:"order" yaml:"order"`
	LessonCount int    `json:"lessonsCount" yaml:"lessons"`
	XPReward    int    `json:"xpReward" yaml:"xp"`
}
