package httpapi

import (
	"errors"
	"net/http"

	"github.com/ent0n29/seminar/internal/agent"
	"github.com/ent0n29/seminar/internal/reliability"
)

const signedURLUpstream = "signed_url"

func (s *Server) handleSignedURL(w http.ResponseWriter, r *http.Request) {
	signed, err := s.broker.RequestSignedURL(r.Context(), s.cfg.ElevenLabsAgentID)
	if err != nil {
		switch {
		case errors.Is(err, reliability.ErrConfiguration):
			s.log.WithError(err).Error("signed url broker is not configured")
			respondError(w, http.StatusInternalServerError, signedURLConfigMessage(err))
		case reliability.UpstreamStatus(err) != 0:
			status := reliability.UpstreamStatus(err)
			s.metrics.UpstreamResponses.WithLabelValues(signedURLUpstream, reliability.StatusClass(status)).Inc()
			respondError(w, status, "Failed to generate signed URL")
		default:
			s.metrics.UpstreamResponses.WithLabelValues(signedURLUpstream, reliability.StatusClass(0)).Inc()
			respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	s.metrics.UpstreamResponses.WithLabelValues(signedURLUpstream, reliability.StatusClass(http.StatusOK)).Inc()
	w.Header().Set("Content-Type", signed.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(signed.Body)
}

func signedURLConfigMessage(err error) string {
	if errors.Is(err, agent.ErrMissingAgentID) {
		return "ELEVENLABS_AGENT_ID is not configured"
	}
	return "ELEVENLABS_API_KEY is not configured"
}
