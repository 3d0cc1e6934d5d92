package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ent0n29/seminar/internal/agent"
	"github.com/ent0n29/seminar/internal/ledger"
	"github.com/ent0n29/seminar/internal/observability"
	"github.com/ent0n29/seminar/internal/policy"
	"github.com/ent0n29/seminar/internal/reliability"
	"github.com/ent0n29/seminar/internal/room"
)

type RoomProvisioner interface {
	Provision(ctx context.Context, spec room.Spec) (room.Room, error)
	Delete(ctx context.Context, name string) error
}

type TokenMinter interface {
	Mint(req room.TokenRequest) (string, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, req agent.DispatchRequest) agent.DispatchOutcome
}

type Config struct {
	AgentID string
	// MissingSettings lists required credentials that are unset. When
	// non-empty every call fails before touching the network.
	MissingSettings         []string
	StudentTokenTTL         time.Duration
	AgentTokenTTL           time.Duration
	CompensateOnMintFailure bool
}

// Service runs the provision, mint and dispatch sequence. It holds no
// per-call state and is safe for concurrent use.
type Service struct {
	cfg        Config
	rooms      RoomProvisioner
	minter     TokenMinter
	dispatcher Dispatcher
	ledger     ledger.Store
	metrics    *observability.Metrics
	log        logrus.FieldLogger
}

func NewService(
	cfg Config,
	rooms RoomProvisioner,
	minter TokenMinter,
	dispatcher Dispatcher,
	store ledger.Store,
	metrics *observability.Metrics,
	log logrus.FieldLogger,
) *Service {
	if store == nil {
		store = ledger.NopStore{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		cfg:        cfg,
		rooms:      rooms,
		minter:     minter,
		dispatcher: dispatcher,
		ledger:     store,
		metrics:    metrics,
		log:        log.WithField("component", "session_provisioner"),
	}
}

// CreateSession provisions a room, mints the student token and makes one
// dispatch attempt. Only configuration, provisioning and signing failures
// are returned. Cancelling ctx does not abort a call that has started.
func (s *Service) CreateSession(ctx context.Context, req RoomRequest) (SessionResult, error) {
	started := time.Now()
	ctx = context.WithoutCancel(ctx)
	name := normalizeName(req.StudentName)
	log := s.log.WithField("student_name", name)

	if len(s.cfg.MissingSettings) > 0 {
		err := fmt.Errorf("%w: %s not configured", reliability.ErrConfiguration, strings.Join(s.cfg.MissingSettings, ", "))
		s.fail(ctx, log, StageConfig, outcomeConfigurationFailed, room.Room{}, err)
		return SessionResult{}, err
	}

	provisioned, err := s.rooms.Provision(ctx, room.Spec{Metadata: roomMetadata{
		AgentID:     s.cfg.AgentID,
		CreatedAt:   time.Now().UTC(),
		StudentName: name,
	}})
	if err != nil {
		if !errors.Is(err, reliability.ErrProvisioning) {
			err = fmt.Errorf("%w: %v", reliability.ErrProvisioning, err)
		}
		s.fail(ctx, log, StageProvisioning, outcomeProvisioningFailed, room.Room{}, err)
		return SessionResult{}, err
	}
	log = log.WithField("room", provisioned.Name)

	studentToken, err := s.minter.Mint(room.TokenRequest{
		Identity: newStudentIdentity(),
		Name:     name,
		Room:     provisioned.Name,
		Grants:   room.FullParticipant,
		TTL:      s.cfg.StudentTokenTTL,
	})
	if err != nil {
		if !errors.Is(err, reliability.ErrSigning) {
			err = fmt.Errorf("%w: %v", reliability.ErrSigning, err)
		}
		s.fail(ctx, log, StageMinting, outcomeSigningFailed, provisioned, err)
		s.compensate(ctx, log, provisioned.Name)
		return SessionResult{}, err
	}

	dispatch := s.dispatchAgent(ctx, log, provisioned)

	s.record(ctx, log, ledger.Event{
		RoomName:        provisioned.Name,
		RoomSID:         provisioned.SID,
		Outcome:         outcomeCompleted,
		DispatchOutcome: dispatchLabel(dispatch),
	})
	s.metrics.SessionEvents.WithLabelValues(outcomeCompleted).Inc()
	s.metrics.ObserveProvisionLatency(time.Since(started))
	log.WithFields(logrus.Fields{
		"sid":           provisioned.SID,
		"student_token": policy.MaskSecret(studentToken),
		"dispatched":    dispatch.OK,
		"stage":         StageCompleted,
	}).Info("session provisioned")

	return SessionResult{
		Success: true,
		Room: RoomInfo{
			Name: provisioned.Name,
			URL:  provisioned.URL,
			SID:  provisioned.SID,
		},
		Token:   studentToken,
		AgentID: s.cfg.AgentID,
	}, nil
}

// dispatchAgent mints the agent's own token and asks the agent service to
// join. Every failure, including a panic, ends here as a failed outcome.
func (s *Service) dispatchAgent(ctx context.Context, log logrus.FieldLogger, r room.Room) (out agent.DispatchOutcome) {
	log = log.WithField("stage", StageDispatching)
	defer func() {
		if p := recover(); p != nil {
			out = agent.DispatchOutcome{Reason: fmt.Sprintf("panic: %v", p)}
		}
		if out.Skipped {
			s.metrics.DispatchOutcomes.WithLabelValues("skipped").Inc()
			return
		}
		if !out.OK {
			s.metrics.DispatchOutcomes.WithLabelValues("failed").Inc()
			log.WithError(fmt.Errorf("%w: %s", reliability.ErrDispatch, out.Reason)).Warn("agent dispatch failed; continuing without agent")
			return
		}
		s.metrics.DispatchOutcomes.WithLabelValues("ok").Inc()
	}()

	if s.dispatcher == nil {
		return agent.DispatchOutcome{Reason: "no dispatcher configured"}
	}

	agentToken, err := s.minter.Mint(room.TokenRequest{
		Identity: "agent-" + s.cfg.AgentID,
		Name:     "Agent",
		Room:     r.Name,
		Grants:   room.FullParticipant,
		TTL:      s.cfg.AgentTokenTTL,
	})
	if err != nil {
		return agent.DispatchOutcome{Reason: "mint agent token: " + err.Error()}
	}

	return s.dispatcher.Dispatch(ctx, agent.DispatchRequest{
		AgentID:    s.cfg.AgentID,
		RoomName:   r.Name,
		RoomURL:    r.URL,
		AgentToken: agentToken,
	})
}

func (s *Service) compensate(ctx context.Context, log logrus.FieldLogger, roomName string) {
	if !s.cfg.CompensateOnMintFailure {
		log.Warn("room left orphaned after signing failure; compensation disabled")
		return
	}
	if err := s.rooms.Delete(ctx, roomName); err != nil {
		s.metrics.SessionEvents.WithLabelValues("compensation_failed").Inc()
		log.WithError(err).Warn("room compensation failed; room will expire on its own")
		return
	}
	s.metrics.SessionEvents.WithLabelValues("compensated").Inc()
}

func (s *Service) fail(ctx context.Context, log logrus.FieldLogger, stage Stage, outcome string, r room.Room, err error) {
	s.metrics.SessionEvents.WithLabelValues(outcome).Inc()
	log.WithError(err).WithField("stage", stage).Error("session provisioning failed")
	s.record(ctx, log, ledger.Event{RoomName: r.Name, RoomSID: r.SID, Outcome: outcome})
}

func (s *Service) record(ctx context.Context, log logrus.FieldLogger, event ledger.Event) {
	if err := s.ledger.Record(ctx, event); err != nil {
		log.WithError(err).Warn("ledger record failed")
	}
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultParticipantName
	}
	return name
}

func newStudentIdentity() string {
	return "student-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func dispatchLabel(out agent.DispatchOutcome) string {
	switch {
	case out.OK:
		return "ok"
	case out.Skipped:
		return "skipped"
	}
	return "failed"
}
