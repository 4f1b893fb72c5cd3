// Command seed loads the shared topic catalog into PostgreSQL. Topics come
// from a YAML directory, an .xlsx workbook, or the built-in set.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/biocactus/biocactus/internal/catalog"
	"github.com/biocactus/biocactus/internal/platform/config"
	"github.com/biocactus/biocactus/internal/platform/database"
)

func main() {
	dir := flag.String("dir", "", "directory of topic YAML files")
	workbook := flag.String("xlsx", "", "path to an .xlsx workbook of topics")
	sheet := flag.String("sheet", "", "workbook sheet name (default: first sheet)")
	header := flag.Bool("header", true, "workbook has a header row")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	topics, err := loadTopics(*dir, *workbook, *sheet, *header)
	if err != nil {
		slog.Error("failed to load topics", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	store, err := catalog.NewPostgresStore(db.Pool)
	if err != nil {
		slog.Error("failed to set up catalog store", "error", err)
		os.Exit(1)
	}

	for _, topic := range topics {
		if err := store.PutTopic(ctx, topic); err != nil {
			slog.Error("failed to seed topic", "topic_id", topic.ID, "error", err)
			os.Exit(1)
		}
		slog.Info("seeded topic", "topic_id", topic.ID, "title", topic.Title)
	}
	slog.Info("seeding complete", "topics", len(topics))
}

func loadTopics(dir, workbook, sheet string, header bool) ([]catalog.Topic, error) {
	switch {
	case workbook != "":
		topics, result, err := catalog.ImportWorkbook(workbook, catalog.ImportConfig{
			SheetName:  sheet,
			SkipHeader: header,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("workbook imported",
			"processed", result.Processed,
			"imported", result.Imported,
			"skipped", result.Skipped,
		)
		if len(result.Errors) > 0 {
			slog.Warn("workbook rows rejected", "errors", strings.Join(result.Errors, "; "))
		}
		if len(topics) == 0 {
			return nil, fmt.Errorf("workbook %s contained no topics", workbook)
		}
		return topics, nil
	case dir != "":
		topics, err := catalog.LoadDir(dir)
		if err != nil {
			return nil, err
		}
		if len(topics) == 0 {
			return nil, fmt.Errorf("directory %s contained no topics", dir)
		}
		return topics, nil
	default:
		slog.Info("no source given, seeding built-in topics")
		return catalog.DefaultTopics(), nil
	}
}
