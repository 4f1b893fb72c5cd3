package server

import (
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/biocactus/biocactus/internal/apperr"
	"github.com/biocactus/biocactus/internal/learner"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatReply struct {
	Reply string `json:"reply"`
}

func (s *Server) chatAccount(r *http.Request) (*learner.Account, error) {
	return s.ledger.Account(r.Context(), identityFrom(r).ID)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, err, "BioCactus AI is resting. Try again in a moment!")
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "Message is required.")
		return
	}

	account, err := s.chatAccount(r)
	if err != nil {
		if apperr.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondFailure(w, err, "BioCactus AI is resting. Try again in a moment!")
		return
	}

	lang := s.resolveLanguage(r, account)
	reply := s.tutor.Answer(r.Context(), account, lang.Name, req.Message)

	respond(w, http.StatusOK, envelope{
		Success:  true,
		Language: lang.Code,
		Data:     chatReply{Reply: reply},
	})
}

// handleChatWS upgrades to a websocket and relays messages through the tutor
// engine. Each inbound text frame is a JSON chatRequest; each reply a
// chatReply. The conversation survives reconnects via the tutor's store.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	account, err := s.chatAccount(r)
	if err != nil {
		if apperr.IsNotFound(err) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		respondFailure(w, err, "BioCactus AI is resting. Try again in a moment!")
		return
	}
	lang := s.resolveLanguage(r, account)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	s.logger.Info("chat session opened", "learner_id", account.ID, "language", lang.Code)

	ctx := r.Context()
	for {
		var req chatRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, ctx.Err()) {
				break
			}
			s.logger.Debug("chat session read error", "learner_id", account.ID, "error", err)
			break
		}
		if req.Message == "" {
			continue
		}

		reply := s.tutor.Answer(ctx, account, lang.Name, req.Message)
		if err := wsjson.Write(ctx, conn, chatReply{Reply: reply}); err != nil {
			s.logger.Debug("chat session write error", "learner_id", account.ID, "error", err)
			break
		}
	}

	conn.Close(websocket.StatusNormalClosure, "")
	s.logger.Info("chat session closed", "learner_id", account.ID)
}
