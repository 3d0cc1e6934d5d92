package httpapi

import (
	"net/http"
	"strings"

	"github.com/ent0n29/seminar/internal/ledger"
)

type statusCheck struct {
	ID     string `json:"id"`
	Status string `json:"status"` // ok|warn|error
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
	Fix    string `json:"fix,omitempty"`
}

type statusResponse struct {
	AgentID         string        `json:"agent_id"`
	SignedURLMethod string        `json:"signed_url_method"`
	LedgerMode      string        `json:"ledger_mode"`
	Checks          []statusCheck `json:"checks"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	checks := make([]statusCheck, 0, 6)
	checks = append(checks, presenceCheck("elevenlabs_key", "ElevenLabs API key", s.cfg.ElevenLabsAPIKey, "ELEVENLABS_API_KEY"))
	checks = append(checks, presenceCheck("livekit_url", "LiveKit server URL", s.cfg.LiveKitURL, "LIVEKIT_URL"))
	checks = append(checks, presenceCheck("livekit_key", "LiveKit API key", s.cfg.LiveKitAPIKey, "LIVEKIT_API_KEY"))
	checks = append(checks, presenceCheck("livekit_secret", "LiveKit API secret", s.cfg.LiveKitAPISecret, "LIVEKIT_API_SECRET"))

	if strings.TrimSpace(s.cfg.AgentDispatchURL) == "" {
		checks = append(checks, statusCheck{
			ID:     "agent_dispatch",
			Status: "warn",
			Label:  "Agent dispatch",
			Detail: "no dispatch endpoint; the agent must join rooms on its own",
			Fix:    "Set AGENT_DISPATCH_URL to have the gateway dispatch the agent.",
		})
	} else {
		checks = append(checks, statusCheck{
			ID:     "agent_dispatch",
			Status: "ok",
			Label:  "Agent dispatch",
			Detail: "configured",
		})
	}

	respondJSON(w, http.StatusOK, statusResponse{
		AgentID:         s.cfg.ElevenLabsAgentID,
		SignedURLMethod: s.cfg.ElevenLabsSignedURLMode,
		LedgerMode:      ledger.Mode(s.ledger),
		Checks:          checks,
	})
}

// presenceCheck reports whether a setting is set without echoing its value.
func presenceCheck(id, label, value, envKey string) statusCheck {
	if strings.TrimSpace(value) == "" {
		return statusCheck{
			ID:     id,
			Status: "error",
			Label:  label,
			Detail: envKey + " is not set",
			Fix:    "Set " + envKey + " in the environment or .env.local.",
		}
	}
	return statusCheck{ID: id, Status: "ok", Label: label, Detail: "present"}
}
