package room

import (
	"fmt"
	"strings"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/ent0n29/seminar/internal/reliability"
)

const defaultTokenTTL = time.Hour

// Grants toggles the capabilities written into an access token.
type Grants struct {
	CanJoin        bool
	CanPublish     bool
	CanPublishData bool
	CanSubscribe   bool
}

// FullParticipant is what both the student and the agent receive.
var FullParticipant = Grants{CanJoin: true, CanPublish: true, CanPublishData: true, CanSubscribe: true}

type TokenRequest struct {
	Identity string
	Name     string
	Room     string
	Grants   Grants
	TTL      time.Duration
}

// Minter signs room-scoped access tokens with the LiveKit API key pair.
type Minter struct {
	apiKey    string
	apiSecret string
}

func NewMinter(apiKey, apiSecret string) *Minter {
	return &Minter{apiKey: strings.TrimSpace(apiKey), apiSecret: strings.TrimSpace(apiSecret)}
}

func (m *Minter) Mint(req TokenRequest) (string, error) {
	if m.apiKey == "" || m.apiSecret == "" {
		return "", fmt.Errorf("%w: api key pair missing", reliability.ErrSigning)
	}
	if strings.TrimSpace(req.Identity) == "" {
		return "", fmt.Errorf("%w: identity is required", reliability.ErrSigning)
	}
	if strings.TrimSpace(req.Room) == "" {
		return "", fmt.Errorf("%w: room is required", reliability.ErrSigning)
	}
	ttl := req.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	canPublish := req.Grants.CanPublish
	canPublishData := req.Grants.CanPublishData
	canSubscribe := req.Grants.CanSubscribe
	grant := &auth.VideoGrant{
		RoomJoin:       req.Grants.CanJoin,
		Room:           req.Room,
		CanPublish:     &canPublish,
		CanPublishData: &canPublishData,
		CanSubscribe:   &canSubscribe,
	}

	at := auth.NewAccessToken(m.apiKey, m.apiSecret)
	at.SetVideoGrant(grant).
		SetIdentity(req.Identity).
		SetName(req.Name).
		SetValidFor(ttl)

	token, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("%w: %v", reliability.ErrSigning, err)
	}
	return token, nil
}
