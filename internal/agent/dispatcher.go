package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ent0n29/seminar/internal/policy"
	"github.com/ent0n29/seminar/internal/reliability"
)

const upstreamLogLimit = 2 << 10

// DispatchRequest asks the agent service to join a provisioned room.
type DispatchRequest struct {
	AgentID    string
	RoomName   string
	RoomURL    string
	AgentToken string
}

// DispatchOutcome reports a dispatch attempt. Dispatch never returns an
// error: a failure is a value the caller logs and drops.
type DispatchOutcome struct {
	OK bool
	// Skipped is set when no dispatch endpoint exists and the agent is
	// expected to join rooms on its own.
	Skipped bool
	Reason  string
	Status  int
}

func dispatchFailed(reason string, status int) DispatchOutcome {
	return DispatchOutcome{Reason: reason, Status: status}
}

type DispatcherConfig struct {
	URL    string
	APIKey string
}

// HTTPDispatcher posts a join instruction to the agent service.
type HTTPDispatcher struct {
	cfg    DispatcherConfig
	client *http.Client
	log    logrus.FieldLogger
}

func NewHTTPDispatcher(cfg DispatcherConfig, client *http.Client, log logrus.FieldLogger) *HTTPDispatcher {
	cfg.URL = strings.TrimSpace(cfg.URL)
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HTTPDispatcher{cfg: cfg, client: client, log: log.WithField("component", "agent_dispatcher")}
}

type dispatchPayload struct {
	AgentID          string `json:"agent_id"`
	RoomName         string `json:"room_name"`
	LiveKitURL       string `json:"livekit_url"`
	ParticipantToken string `json:"participant_token"`
}

func (d *HTTPDispatcher) Dispatch(ctx context.Context, req DispatchRequest) DispatchOutcome {
	log := d.log.WithFields(logrus.Fields{"room": req.RoomName, "agent_id": req.AgentID})
	if d.cfg.URL == "" {
		log.Info("agent dispatch skipped: dispatch endpoint not configured")
		return DispatchOutcome{Skipped: true, Reason: "dispatch endpoint not configured"}
	}

	payload, err := json.Marshal(dispatchPayload{
		AgentID:          req.AgentID,
		RoomName:         req.RoomName,
		LiveKitURL:       req.RoomURL,
		ParticipantToken: req.AgentToken,
	})
	if err != nil {
		log.WithError(err).Warn("agent dispatch: marshal request")
		return dispatchFailed("marshal request: "+err.Error(), 0)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		log.WithError(err).Warn("agent dispatch: create request")
		return dispatchFailed("create request: "+err.Error(), 0)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if d.cfg.APIKey != "" {
		httpReq.Header.Set("xi-api-key", d.cfg.APIKey)
	}

	res, err := d.client.Do(httpReq)
	if err != nil {
		log.WithError(err).Warn("agent dispatch: send request")
		return dispatchFailed("send request: "+err.Error(), 0)
	}
	defer res.Body.Close()

	if !reliability.IsSuccessStatus(res.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(res.Body, upstreamLogLimit))
		log.WithFields(logrus.Fields{
			"status":        res.StatusCode,
			"upstream_body": policy.Truncate(string(body), upstreamLogLimit),
		}).Warn("agent dispatch rejected")
		return dispatchFailed("upstream status "+strconv.Itoa(res.StatusCode), res.StatusCode)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, upstreamLogLimit))

	log.WithFields(logrus.Fields{
		"status":      res.StatusCode,
		"agent_token": policy.MaskSecret(req.AgentToken),
	}).Info("agent dispatched")
	return DispatchOutcome{OK: true, Status: res.StatusCode}
}
