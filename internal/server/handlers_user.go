package server

import (
	"net/http"

	"github.com/biocactus/biocactus/internal/activity"
	"github.com/biocactus/biocactus/internal/apperr"
	"github.com/biocactus/biocactus/internal/feedback"
	"github.com/biocactus/biocactus/internal/learner"
	"github.com/biocactus/biocactus/internal/progress"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	account, err := s.ledger.EnsureAccount(r.Context(), identity.ID, learner.Profile{
		Email:       identity.Email,
		DisplayName: identity.Name,
		PhotoURL:    identity.Picture,
	})
	if err != nil {
		respondFailure(w, err, "Internal server error during login")
		return
	}

	if err := s.events.Log(r.Context(), activity.Event{
		LearnerID: account.ID,
		EventType: activity.EventLogin,
	}); err != nil {
		s.logger.Warn("failed to log login event", "error", err)
	}

	respondData(w, account, "User logged in and synced successfully")
}

// userProfile is the account plus its per-topic progress records.
type userProfile struct {
	*learner.Account
	Progress []*progress.Record `json:"progress"`
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	account, err := s.ledger.Account(r.Context(), identity.ID)
	if err != nil {
		if apperr.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "User profile not found")
			return
		}
		respondFailure(w, err, "Internal server error retrieving profile")
		return
	}

	records, err := s.tracker.Records(r.Context(), account.ID)
	if err != nil {
		respondFailure(w, err, "Internal server error retrieving profile")
		return
	}
	if records == nil {
		records = []*progress.Record{}
	}

	respondData(w, userProfile{Account: account, Progress: records}, "User profile retrieved")
}

// leaderboardEntry is one row on the XP leaderboard.
type leaderboardEntry struct {
	Name   string `json:"name"`
	XP     int    `json:"xp"`
	Avatar string `json:"avatar"`
	IsUser bool   `json:"isUser"`
	Rank   int    `json:"rank"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	top, err := s.ledger.Leaderboard(r.Context(), 10)
	if err != nil {
		respondFailure(w, err, "Internal server error retrieving leaderboard")
		return
	}

	entries := make([]leaderboardEntry, 0, len(top))
	for i, account := range top {
		name := account.DisplayName
		if name == "" {
			name = "Anonymous"
		}
		avatar := account.PhotoURL
		if avatar == "" {
			avatar = "👤"
		}
		entries = append(entries, leaderboardEntry{
			Name:   name,
			XP:     account.XP,
			Avatar: avatar,
			IsUser: account.ID == identity.ID,
			Rank:   i + 1,
		})
	}

	respondData(w, entries, "Leaderboard retrieved")
}

type curriculumRequest struct {
	Experience string `json:"experience"`
	Topics     string `json:"topics"`
}

func (s *Server) handleCurriculum(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	var req curriculumRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, err, "Internal server error generating curriculum")
		return
	}

	account, err := s.ledger.Account(r.Context(), identity.ID)
	if err != nil {
		respondFailure(w, err, "Internal server error generating curriculum")
		return
	}

	lang := s.resolveLanguage(r, account)
	prefs := learner.Prefs{Experience: req.Experience, Interest: req.Topics}
	if prefs.Experience == "" {
		prefs.Experience = "beginner"
	}

	s.logger.Info("generating custom curriculum", "learner_id", identity.ID)
	topics := s.generator.Curriculum(r.Context(), prefs, lang.Name)

	if _, err := s.ledger.SetCurriculum(r.Context(), identity.ID, topics, req.Experience, req.Topics); err != nil {
		respondFailure(w, err, "Internal server error generating curriculum")
		return
	}

	respondData(w, topics, "Custom curriculum generated and saved")
}

type feedbackRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Rating  int    `json:"rating"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r)

	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, err, "Internal server error while submitting feedback")
		return
	}
	if req.Message == "" || req.Type == "" {
		respondError(w, http.StatusBadRequest, "Feedback type and message are required")
		return
	}

	name := identity.Name
	if name == "" {
		name = "Explorer"
	}
	err := s.feedback.Add(r.Context(), feedback.Entry{
		LearnerID: identity.ID,
		Email:     identity.Email,
		Name:      name,
		Type:      req.Type,
		Message:   req.Message,
		Rating:    req.Rating,
	})
	if err != nil {
		respondFailure(w, err, "Internal server error while submitting feedback")
		return
	}

	respond(w, http.StatusOK, envelope{
		Success: true,
		Message: "Feedback submitted successfully! Thank you for helping BioCactus grow.",
	})
}
