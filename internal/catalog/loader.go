package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDir walks rootDir and loads every topic YAML file found. Files that do
// not parse as a topic are skipped with a warning rather than failing the
// whole load.
func LoadDir(rootDir string) ([]Topic, error) {
	var topics []Topic

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var topic Topic
		if err := yaml.Unmarshal(data, &topic); err != nil {
			slog.Warn("skipping invalid topic YAML", "path", path, "error", err)
			return nil
		}
		if topic.ID == "" {
			return nil // Not a topic file
		}

		topics = append(topics, topic)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	slog.Info("catalog loaded", "topics", len(topics))
	return topics, nil
}

// DefaultTopics is the built-in biotech starter catalog, used when no catalog
// directory or workbook is supplied to the seeder.
func DefaultTopics() []Topic {
	return []Topic{
		{
			ID:          "dna-replication",
			Title:       "DNA & Replication",
			Description: "Explore the double helix and how DNA copies itself",
			Icon:        "🧬",
			Color:       "from-emerald-500 to-teal-600",
			Order:       1,
			LessonCount: 5,
			XPReward:    100,
		},
		{
			ID:          "rna-transcription",
			Title:       "RNA & Transcription",
			Description: "Learn how RNA carries genetic messages",
			Icon:        "🔬",
			Color:       "from-cyan-500 to-blue-600",
			Order:       2,
			LessonCount: 5,
			XPReward:    100,
		},
		{
			ID:          "crispr-gene-editing",
			Title:       "CRISPR Gene Editing",
			Description: "Discover the revolutionary gene editing tool",
			Icon:        "✂️",
			Color:       "from-violet-500 to-purple-600",
			Order:       3,
			LessonCount: 5,
			XPReward:    100,
		},
		{
			ID:          "cell-biology",
			Title:       "Cell Biology",
			Description: "Understand the building blocks of life",
			Icon:        "🦠",
			Color:       "from-green-500 to-lime-600",
			Order:       4,
			LessonCount: 5,
			XPReward:    100,
		},
	}
}

// Slugify derives a URL-friendly topic id from a title.
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = strings.ReplaceAll(s, " & ", "-")
	s = strings.ReplaceAll(s, " ", "-")
	return s
}
