package httpapi

import (
	"errors"
	"net/http"

	"github.com/ent0n29/seminar/internal/provision"
	"github.com/ent0n29/seminar/internal/reliability"
)

type sessionErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req provision.RoomRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondJSON(w, http.StatusBadRequest, sessionErrorResponse{
			Error:   "invalid request body",
			Details: err.Error(),
		})
		return
	}

	res, err := s.sessions.CreateSession(r.Context(), req)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, sessionErrorResponse{
			Error:   sessionErrorMessage(err),
			Details: err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func sessionErrorMessage(err error) string {
	switch {
	case errors.Is(err, reliability.ErrConfiguration):
		return "Service is not configured"
	case errors.Is(err, reliability.ErrSigning):
		return "Failed to issue access token"
	default:
		return "Failed to create room"
	}
}
