package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/sirupsen/logrus"

	"github.com/ent0n29/seminar/internal/reliability"
)

const (
	// EmptyTimeoutSeconds is how long an idle room survives before the
	// room service closes it.
	EmptyTimeoutSeconds uint32 = 300
	// MaxParticipants admits one student and one agent.
	MaxParticipants uint32 = 2
)

// Service is the subset of the LiveKit room API the provisioner uses.
// *lksdk.RoomServiceClient satisfies it.
type Service interface {
	CreateRoom(ctx context.Context, req *livekit.CreateRoomRequest) (*livekit.Room, error)
	DeleteRoom(ctx context.Context, req *livekit.DeleteRoomRequest) (*livekit.DeleteRoomResponse, error)
}

func NewLiveKitService(url, apiKey, apiSecret string) Service {
	return lksdk.NewRoomServiceClient(url, apiKey, apiSecret)
}

// Spec is the caller-controlled part of a room request.
type Spec struct {
	Metadata any
}

// Room is a read-only snapshot of a room the provider now owns.
type Room struct {
	Name                string
	URL                 string
	SID                 string
	EmptyTimeoutSeconds uint32
	MaxParticipants     uint32
	Metadata            string
}

type ProvisionerConfig struct {
	ServerURL  string
	NamePrefix string
}

type Provisioner struct {
	svc    Service
	cfg    ProvisionerConfig
	log    logrus.FieldLogger
	now    func() time.Time
	suffix func() string
}

func NewProvisioner(svc Service, cfg ProvisionerConfig, log logrus.FieldLogger) *Provisioner {
	if strings.TrimSpace(cfg.NamePrefix) == "" {
		cfg.NamePrefix = "seminar"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Provisioner{
		svc:    svc,
		cfg:    cfg,
		log:    log.WithField("component", "room_provisioner"),
		now:    time.Now,
		suffix: randomSuffix,
	}
}

// Provision creates a uniquely named room with the fixed lifecycle limits.
func (p *Provisioner) Provision(ctx context.Context, spec Spec) (Room, error) {
	if p.svc == nil {
		return Room{}, fmt.Errorf("%w: room service not configured", reliability.ErrProvisioning)
	}

	metadata := ""
	if spec.Metadata != nil {
		raw, err := json.Marshal(spec.Metadata)
		if err != nil {
			return Room{}, fmt.Errorf("%w: encode metadata: %v", reliability.ErrProvisioning, err)
		}
		metadata = string(raw)
	}

	name := p.newName()
	created, err := p.svc.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:            name,
		EmptyTimeout:    EmptyTimeoutSeconds,
		MaxParticipants: MaxParticipants,
		Metadata:        metadata,
	})
	if err != nil {
		return Room{}, fmt.Errorf("%w: create room %s: %v", reliability.ErrProvisioning, name, err)
	}
	if created == nil {
		return Room{}, fmt.Errorf("%w: create room %s: empty response", reliability.ErrProvisioning, name)
	}

	p.log.WithFields(logrus.Fields{"room": name, "sid": created.Sid}).Info("room created")
	return Room{
		Name:                name,
		URL:                 p.cfg.ServerURL,
		SID:                 created.Sid,
		EmptyTimeoutSeconds: EmptyTimeoutSeconds,
		MaxParticipants:     MaxParticipants,
		Metadata:            metadata,
	}, nil
}

// Delete removes a room. It is used to compensate for a failure later in
// session setup.
func (p *Provisioner) Delete(ctx context.Context, name string) error {
	if p.svc == nil {
		return errors.New("room service not configured")
	}
	if _, err := p.svc.DeleteRoom(ctx, &livekit.DeleteRoomRequest{Room: name}); err != nil {
		return fmt.Errorf("delete room %s: %w", name, err)
	}
	p.log.WithField("room", name).Info("room deleted")
	return nil
}

func (p *Provisioner) newName() string {
	return fmt.Sprintf("%s-%d-%s", p.cfg.NamePrefix, p.now().UnixMilli(), p.suffix())
}

func randomSuffix() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
