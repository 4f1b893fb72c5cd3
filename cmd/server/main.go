package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/biocactus/biocactus/internal/activity"
	"github.com/biocactus/biocactus/internal/ai"
	"github.com/biocactus/biocactus/internal/catalog"
	"github.com/biocactus/biocactus/internal/content"
	"github.com/biocactus/biocactus/internal/feedback"
	"github.com/biocactus/biocactus/internal/generator"
	"github.com/biocactus/biocactus/internal/language"
	"github.com/biocactus/biocactus/internal/learner"
	"github.com/biocactus/biocactus/internal/platform/cache"
	"github.com/biocactus/biocactus/internal/platform/config"
	"github.com/biocactus/biocactus/internal/platform/database"
	"github.com/biocactus/biocactus/internal/progress"
	"github.com/biocactus/biocactus/internal/server"
	"github.com/biocactus/biocactus/internal/tutor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

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

	redis, err := cache.New(ctx, cfg.Cache.URL)
	if err != nil {
		// The cache only guards duplicate generation; the conditional create
		// in the store still prevents duplicate cache entries without it.
		slog.Warn("cache unavailable, continuing without generation locks", "error", err)
		redis = nil
	} else {
		defer redis.Close()
	}

	router := newAIRouter(cfg.AI)
	if !router.HasProvider() {
		slog.Error("no AI provider registered")
		os.Exit(1)
	}

	verifier, err := server.NewHMACVerifier(cfg.Auth.TokenSecret)
	if err != nil {
		slog.Error("failed to set up token verifier", "error", err)
		os.Exit(1)
	}

	accountStore, err := learner.NewPostgresStore(db.Pool)
	if err != nil {
		slog.Error("failed to set up account store", "error", err)
		os.Exit(1)
	}
	progressStore, err := progress.NewPostgresStore(db.Pool)
	if err != nil {
		slog.Error("failed to set up progress store", "error", err)
		os.Exit(1)
	}
	catalogStore, err := catalog.NewPostgresStore(db.Pool)
	if err != nil {
		slog.Error("failed to set up catalog store", "error", err)
		os.Exit(1)
	}
	contentStore, err := content.NewPostgresStore(db.Pool)
	if err != nil {
		slog.Error("failed to set up content store", "error", err)
		os.Exit(1)
	}
	conversationStore, err := tutor.NewPostgresStore(db.Pool)
	if err != nil {
		slog.Error("failed to set up conversation store", "error", err)
		os.Exit(1)
	}
	feedbackStore, err := feedback.NewPostgresStore(db.Pool)
	if err != nil {
		slog.Error("failed to set up feedback store", "error", err)
		os.Exit(1)
	}
	events := activity.NewPostgresLogger(db.Pool)

	if err := seedCatalog(ctx, cfg.CatalogPath, catalogStore); err != nil {
		slog.Error("failed to seed topic catalog", "error", err)
		os.Exit(1)
	}

	resolver := catalog.NewResolver(catalogStore, cfg.Defaults.LessonCount)
	ledger := learner.NewLedger(learner.LedgerConfig{
		Store:        accountStore,
		DefaultLives: cfg.Defaults.Lives,
	})
	tracker := progress.NewTracker(progress.TrackerConfig{
		Store:    progressStore,
		Resolver: resolver,
	})

	var locker content.Locker = content.NopLocker{}
	var cacheCheck server.HealthChecker
	if redis != nil {
		locker = content.NewRedisLocker(redis)
		cacheCheck = redis
	}
	contentSvc := content.NewService(contentStore, locker)

	gen := generator.New(generator.Config{Router: router, Logger: logger})
	tutorEngine := tutor.NewEngine(tutor.EngineConfig{
		Router: router,
		Store:  conversationStore,
		Budget: ai.NewInMemoryBudget(cfg.AI.ChatTokenBudget),
		Events: events,
	})

	srv := server.New(server.Config{
		Verifier:  verifier,
		Ledger:    ledger,
		Tracker:   tracker,
		Catalog:   resolver,
		Content:   contentSvc,
		Generator: gen,
		Tutor:     tutorEngine,
		Languages: language.NewResolver(cfg.Defaults.Language),
		Feedback:  feedbackStore,
		Events:    events,
		Database:  db,
		Cache:     cacheCheck,
		Logger:    logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Mux(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func newAIRouter(cfg config.AIConfig) *ai.Router {
	router := ai.NewRouter()
	if cfg.Google.APIKey != "" {
		router.Register("google", ai.NewGoogleProvider(cfg.Google.APIKey))
		slog.Info("registered AI provider", "provider", "google")
	}
	if cfg.OpenAI.APIKey != "" {
		router.Register("openai", ai.NewOpenAIProvider(cfg.OpenAI.APIKey))
		slog.Info("registered AI provider", "provider", "openai")
	}
	if cfg.Ollama.Enabled {
		router.Register("ollama", ai.NewOllamaProvider(cfg.Ollama.URL))
		slog.Info("registered AI provider", "provider", "ollama")
	}
	return router
}

// seedCatalog loads the shared topic catalog, preferring YAML files in the
// configured directory and falling back to the built-in topics.
func seedCatalog(ctx context.Context, path string, store catalog.Store) error {
	topics, err := catalog.LoadDir(path)
	if err != nil || len(topics) == 0 {
		if err != nil {
			slog.Warn("catalog directory not loadable, using built-in topics", "path", path, "error", err)
		}
		topics = catalog.DefaultTopics()
	}

	for _, topic := range topics {
		if err := store.PutTopic(ctx, topic); err != nil {
			return fmt.Errorf("seed topic %s: %w", topic.ID, err)
		}
	}
	slog.Info("topic catalog ready", "topics", len(topics))
	return nil
}
