package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportConfig defines how topic rows are read from a workbook.
type ImportConfig struct {
	SheetName  string // sheet to read, defaults to the first sheet
	SkipHeader bool   // skip the first row
}

// ImportResult summarizes a workbook import.
type ImportResult struct {
	Processed int
	Imported  int
	Skipped   int
	Errors    []string
}

// ImportWorkbook reads topics from an .xlsx workbook. Expected columns:
// A title, B description, C icon, D color, E order, F lesson count,
// G xp reward. The topic id is derived from the title.
func ImportWorkbook(path string, cfg ImportConfig) ([]Topic, *ImportResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	result := &ImportResult{}
	var topics []Topic
	for i, row := range rows {
		if i == 0 && cfg.SkipHeader {
			continue
		}
		result.Processed++

		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			result.Skipped++
			continue
		}

		topic := Topic{
			Title:       strings.TrimSpace(row[0]),
			Description: cell(row, 1),
			Icon:        cell(row, 2),
			Color:       cell(row, 3),
			Order:       cellInt(row, 4, result.Processed),
			LessonCount: cellInt(row, 5, 5),
			XPReward:    cellInt(row, 6, 100),
		}
		topic.ID = Slugify(topic.Title)

		topics = append(topics, topic)
		result.Imported++
	}

	return topics, result, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func cellInt(row []string, i, fallback int) int {
	v := cell(row, i)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
