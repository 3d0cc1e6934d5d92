package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/ent0n29/seminar/internal/agent"
	"github.com/ent0n29/seminar/internal/config"
	"github.com/ent0n29/seminar/internal/ledger"
	"github.com/ent0n29/seminar/internal/observability"
	"github.com/ent0n29/seminar/internal/provision"
)

type SessionProvisioner interface {
	CreateSession(ctx context.Context, req provision.RoomRequest) (provision.SessionResult, error)
}

type SignedURLBroker interface {
	RequestSignedURL(ctx context.Context, agentID string) (agent.SignedURL, error)
}

type Server struct {
	cfg      config.Config
	sessions SessionProvisioner
	broker   SignedURLBroker
	ledger   ledger.Store
	metrics  *observability.Metrics
	log      logrus.FieldLogger
}

func New(cfg config.Config, sessions SessionProvisioner, broker SignedURLBroker, store ledger.Store, metrics *observability.Metrics, log logrus.FieldLogger) *Server {
	if store == nil {
		store = ledger.NopStore{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		broker:   broker,
		ledger:   store,
		metrics:  metrics,
		log:      log.WithField("component", "httpapi"),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/status", s.handleStatus)

	r.Post("/session/create", s.handleCreateSession)
	r.Post("/agent/signed-url", s.handleSignedURL)

	// Legacy paths still used by the web client.
	r.Post("/api/room/create", s.handleCreateSession)
	r.Post("/api/agents/signed-url", s.handleSignedURL)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	missing := s.cfg.MissingSessionCredentials()
	status := "ready"
	if len(missing) > 0 {
		status = "degraded"
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":           status,
		"missing_settings": missing,
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(started).String(),
		}).Debug("request served")
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
