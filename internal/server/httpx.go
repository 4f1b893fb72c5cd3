package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/biocactus/biocactus/internal/apperr"
)

// envelope is the response shape shared by every API endpoint.
type envelope struct {
	Success  bool   `json:"success"`
	Language string `json:"language,omitempty"`
	Data     any    `json:"data,omitempty"`
	Message  string `json:"message,omitempty"`
}

func respond(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondData(w http.ResponseWriter, data any, message string) {
	respond(w, http.StatusOK, envelope{Success: true, Data: data, Message: message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, envelope{Success: false, Message: message})
}

// respondFailure maps domain errors onto HTTP statuses. Internal errors are
// logged and hidden behind a generic message.
func respondFailure(w http.ResponseWriter, err error, internalMessage string) {
	switch {
	case apperr.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case apperr.IsInvalid(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error(internalMessage, "error", err)
		respondError(w, http.StatusInternalServerError, internalMessage)
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Invalidf("invalid request body: %v", err)
	}
	return nil
}
