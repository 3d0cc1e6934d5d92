package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ent0n29/seminar/internal/policy"
	"github.com/ent0n29/seminar/internal/reliability"
)

const (
	MethodPost = "post"
	MethodGet  = "get"

	maxSignedURLBody = 1 << 20
)

var (
	ErrMissingAPIKey  = fmt.Errorf("%w: ELEVENLABS_API_KEY is not configured", reliability.ErrConfiguration)
	ErrMissingAgentID = fmt.Errorf("%w: ELEVENLABS_AGENT_ID is not configured", reliability.ErrConfiguration)
)

type BrokerConfig struct {
	APIKey  string
	BaseURL string
	// Method selects the upstream flavour: POST with a JSON body or
	// GET with a query parameter. Both return the same payload.
	Method string
}

// SignedURL is the upstream payload, forwarded untouched.
type SignedURL struct {
	Body        []byte
	ContentType string
}

// Broker obtains one-time conversation URLs from the agent service.
type Broker struct {
	cfg    BrokerConfig
	client *http.Client
	log    logrus.FieldLogger
}

func NewBroker(cfg BrokerConfig, client *http.Client, log logrus.FieldLogger) *Broker {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.Method = strings.ToLower(strings.TrimSpace(cfg.Method))
	if cfg.Method == "" {
		cfg.Method = MethodPost
	}
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Broker{cfg: cfg, client: client, log: log.WithField("component", "signed_url_broker")}
}

func (b *Broker) RequestSignedURL(ctx context.Context, agentID string) (SignedURL, error) {
	if b.cfg.APIKey == "" {
		return SignedURL{}, ErrMissingAPIKey
	}
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return SignedURL{}, ErrMissingAgentID
	}

	httpReq, err := b.newRequest(ctx, agentID)
	if err != nil {
		return SignedURL{}, fmt.Errorf("%w: create request: %v", reliability.ErrUpstream, err)
	}
	httpReq.Header.Set("xi-api-key", b.cfg.APIKey)

	log := b.log.WithFields(logrus.Fields{"agent_id": agentID, "method": httpReq.Method})
	res, err := b.client.Do(httpReq)
	if err != nil {
		log.WithError(err).Error("signed url request failed")
		return SignedURL{}, fmt.Errorf("%w: send request: %v", reliability.ErrUpstream, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxSignedURLBody+1))
	if err != nil {
		log.WithError(err).Error("signed url response unreadable")
		return SignedURL{}, fmt.Errorf("%w: read response: %v", reliability.ErrUpstream, err)
	}

	if !reliability.IsSuccessStatus(res.StatusCode) {
		detail := policy.Truncate(string(body), upstreamLogLimit)
		log.WithFields(logrus.Fields{
			"status":        res.StatusCode,
			"upstream_body": detail,
		}).Error("agent service rejected signed url request")
		return SignedURL{}, &reliability.UpstreamError{Status: res.StatusCode, Body: detail}
	}

	if len(body) > maxSignedURLBody {
		log.WithField("status", res.StatusCode).Error("signed url response exceeds size limit")
		return SignedURL{}, fmt.Errorf("%w: response body exceeds %d bytes", reliability.ErrUpstream, maxSignedURLBody)
	}

	var peek struct {
		SignedURL string `json:"signed_url"`
	}
	if err := json.Unmarshal(body, &peek); err != nil || peek.SignedURL == "" {
		log.WithField("status", res.StatusCode).Warn("signed url response has no signed_url field")
	} else {
		log.WithField("signed_url", policy.RedactURL(peek.SignedURL)).Info("signed url issued")
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	return SignedURL{Body: body, ContentType: contentType}, nil
}

func (b *Broker) newRequest(ctx context.Context, agentID string) (*http.Request, error) {
	if b.cfg.Method == MethodGet {
		u := b.cfg.BaseURL + "/v1/convai/conversation/get-signed-url?agent_id=" + url.QueryEscape(agentID)
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	payload, err := json.Marshal(map[string]string{"agent_id": agentID})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.BaseURL+"/v1/convai/conversation/signed_url", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
