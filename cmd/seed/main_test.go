package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestLoadTopics_Builtin(t *testing.T) {
	topics, err := loadTopics("", "", "", true)
	if err != nil {
		t.Fatalf("loadTopics() error = %v", err)
	}
	if len(topics) == 0 {
		t.Error("no built-in topics returned")
	}
}

func TestLoadTopics_FromYAMLDir(t *testing.T) {
	dir := t.TempDir()
	doc := `topics:
  - title: Protein Folding
    description: How chains become machines
    icon: "🧪"
    order: 1
    lessons: 6
    xp: 150
`
	if err := os.WriteFile(filepath.Join(dir, "topics.yaml"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	topics, err := loadTopics(dir, "", "", true)
	if err != nil {
		t.Fatalf("loadTopics() error = %v", err)
	}
	if len(topics) != 1 || topics[0].Title != "Protein Folding" {
		t.Errorf("topics = %+v, want Protein Folding", topics)
	}
}

func TestLoadTopics_FromWorkbook(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Title", "Description", "Icon", "Color", "Order", "Lessons", "XP"},
		{"Enzyme Kinetics", "Rates of reactions", "⚗️", "from-amber-500 to-orange-600", 1, 7, 200},
		{"Microbiology", "The small stuff", "🦠", "from-green-500 to-lime-600", 2, 5, 100},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "topics.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	topics, err := loadTopics("", path, "", true)
	if err != nil {
		t.Fatalf("loadTopics() error = %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("len(topics) = %d, want 2", len(topics))
	}
	if topics[0].ID != "enzyme-kinetics" || topics[0].LessonCount != 7 {
		t.Errorf("first topic = %+v", topics[0])
	}
}

func TestLoadTopics_EmptyDirFails(t *testing.T) {
	if _, err := loadTopics(t.TempDir(), "", "", true); err == nil {
		t.Error("loadTopics() error = nil for empty directory, want error")
	}
}
