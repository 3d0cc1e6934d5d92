package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ent0n29/seminar/internal/agent"
	"github.com/ent0n29/seminar/internal/config"
	"github.com/ent0n29/seminar/internal/httpapi"
	"github.com/ent0n29/seminar/internal/ledger"
	"github.com/ent0n29/seminar/internal/observability"
	"github.com/ent0n29/seminar/internal/provision"
	"github.com/ent0n29/seminar/internal/room"
)

type BuildResult struct {
	Config   config.Config
	API      *httpapi.Server
	Sessions *provision.Service
	Metrics  *observability.Metrics
	Ledger   ledger.Store

	// Cleanup should be called on shutdown to release external resources.
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	store, err := ledger.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("ledger init failed: %w", err)
	}

	if missing := cfg.MissingSessionCredentials(); len(missing) > 0 {
		log.WithField("missing", missing).Warn("session provisioning is not fully configured; requests will fail until these are set")
	}

	// One client for every agent-service call; transport defaults bound
	// dial and TLS time, no overall deadline is imposed.
	client := &http.Client{}

	sessions := provision.NewService(
		provision.Config{
			AgentID:                 cfg.ElevenLabsAgentID,
			MissingSettings:         cfg.MissingSessionCredentials(),
			StudentTokenTTL:         cfg.StudentTokenTTL,
			AgentTokenTTL:           cfg.AgentTokenTTL,
			CompensateOnMintFailure: cfg.CompensateOnMintFailure,
		},
		room.NewProvisioner(
			room.NewLiveKitService(cfg.LiveKitURL, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret),
			room.ProvisionerConfig{ServerURL: cfg.LiveKitURL, NamePrefix: cfg.RoomNamePrefix},
			log,
		),
		room.NewMinter(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret),
		agent.NewHTTPDispatcher(agent.DispatcherConfig{
			URL:    cfg.AgentDispatchURL,
			APIKey: cfg.ElevenLabsAPIKey,
		}, client, log),
		store,
		metrics,
		log,
	)

	broker := agent.NewBroker(agent.BrokerConfig{
		APIKey:  cfg.ElevenLabsAPIKey,
		BaseURL: cfg.ElevenLabsAPIBaseURL,
		Method:  cfg.ElevenLabsSignedURLMode,
	}, client, log)

	api := httpapi.New(cfg, sessions, broker, store, metrics, log)

	return &BuildResult{
		Config:   cfg,
		API:      api,
		Sessions: sessions,
		Metrics:  metrics,
		Ledger:   store,
		Cleanup:  store.Close,
	}, nil
}
