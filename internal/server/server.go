// Package server exposes the learning platform's HTTP API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/biocactus/biocactus/internal/activity"
	"github.com/biocactus/biocactus/internal/catalog"
	"github.com/biocactus/biocactus/internal/content"
	"github.com/biocactus/biocactus/internal/feedback"
	"github.com/biocactus/biocactus/internal/generator"
	"github.com/biocactus/biocactus/internal/language"
	"github.com/biocactus/biocactus/internal/learner"
	"github.com/biocactus/biocactus/internal/progress"
	"github.com/biocactus/biocactus/internal/tutor"
)

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config holds the dependencies for a Server.
type Config struct {
	Verifier  TokenVerifier
	Ledger    *learner.Ledger
	Tracker   *progress.Tracker
	Catalog   *catalog.Resolver
	Content   *content.Service
	Generator *generator.Generator
	Tutor     *tutor.Engine
	Languages *language.Resolver
	Feedback  feedback.Store
	Events    activity.Logger
	Database  HealthChecker // optional, used by readyz
	Cache     HealthChecker // optional, used by readyz
	Logger    *slog.Logger
}

// Server routes API requests to the domain services.
type Server struct {
	verifier  TokenVerifier
	ledger    *learner.Ledger
	tracker   *progress.Tracker
	catalog   *catalog.Resolver
	content   *content.Service
	generator *generator.Generator
	tutor     *tutor.Engine
	languages *language.Resolver
	feedback  feedback.Store
	events    activity.Logger
	database  HealthChecker
	cache     HealthChecker
	logger    *slog.Logger
}

// New creates a Server from the given config.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	events := cfg.Events
	if events == nil {
		events = activity.NopLogger{}
	}
	return &Server{
		verifier:  cfg.Verifier,
		ledger:    cfg.Ledger,
		tracker:   cfg.Tracker,
		catalog:   cfg.Catalog,
		content:   cfg.Content,
		generator: cfg.Generator,
		tutor:     cfg.Tutor,
		languages: cfg.Languages,
		feedback:  cfg.Feedback,
		events:    events,
		database:  cfg.Database,
		cache:     cfg.Cache,
		logger:    logger,
	}
}

// Mux builds the HTTP router.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("POST /api/auth/login", s.requireAuth(s.handleLogin))
	mux.HandleFunc("GET /api/user", s.requireAuth(s.handleGetUser))
	mux.HandleFunc("GET /api/user/leaderboard", s.requireAuth(s.handleLeaderboard))
	mux.HandleFunc("POST /api/user/curriculum", s.requireAuth(s.handleCurriculum))
	mux.HandleFunc("POST /api/user/feedback", s.requireAuth(s.handleFeedback))
	mux.HandleFunc("GET /api/lesson/{topicId}", s.requireAuth(s.handleLesson))
	mux.HandleFunc("GET /api/quiz/{topicId}", s.requireAuth(s.handleQuiz))
	mux.HandleFunc("POST /api/quiz/submit", s.requireAuth(s.handleQuizSubmit))
	mux.HandleFunc("GET /api/progress", s.requireAuth(s.handleProgress))
	mux.HandleFunc("POST /api/chat", s.requireAuth(s.handleChat))
	mux.HandleFunc("GET /api/chat/ws", s.requireAuth(s.handleChatWS))

	return mux
}

type contextKey string

const identityKey contextKey = "identity"

// requireAuth verifies the bearer token and stores the caller identity in
// the request context. Websocket clients cannot set headers, so a token
// query parameter is accepted as well.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		} else if q := r.URL.Query().Get("token"); q != "" {
			token = q
		}
		if token == "" {
			respondError(w, http.StatusUnauthorized, "No token provided")
			return
		}

		identity, err := s.verifier.Verify(r.Context(), token)
		if err != nil {
			s.logger.Warn("token verification failed", "error", err)
			respondError(w, http.StatusForbidden, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next(w, r.WithContext(ctx))
	}
}

func identityFrom(r *http.Request) Identity {
	identity, _ := r.Context().Value(identityKey).(Identity)
	return identity
}

// resolveLanguage picks the effective content language for the request.
// The x-language header wins; otherwise the account's stored preference.
func (s *Server) resolveLanguage(r *http.Request, account *learner.Account) language.Language {
	stored := ""
	if account != nil {
		stored = account.PreferredLanguage
	}
	return s.languages.Resolve(r.Header.Get("x-language"), stored)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]HealthChecker{
		"database": s.database,
		"cache":    s.cache,
	}
	for name, check := range checks {
		if check == nil {
			continue
		}
		if err := check.HealthCheck(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", "dependency", name, "error", err)
			respondError(w, http.StatusServiceUnavailable, name+" unavailable")
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
