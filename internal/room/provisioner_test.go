package room

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/livekit/protocol/livekit"

	"github.com/ent0n29/seminar/internal/reliability"
)

type fakeRoomService struct {
	mu        sync.Mutex
	created   []*livekit.CreateRoomRequest
	deleted   []string
	createErr error
	deleteErr error
}

func (f *fakeRoomService) CreateRoom(_ context.Context, req *livekit.CreateRoomRequest) (*livekit.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &livekit.Room{Sid: "RM_" + req.Name, Name: req.Name}, nil
}

func (f *fakeRoomService) DeleteRoom(_ context.Context, req *livekit.DeleteRoomRequest) (*livekit.DeleteRoomResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, req.Room)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &livekit.DeleteRoomResponse{}, nil
}

var roomNamePattern = regexp.MustCompile(`^seminar-\d{13}-[0-9a-f]{8}$`)

func TestProvisionAppliesFixedLimits(t *testing.T) {
	svc := &fakeRoomService{}
	p := NewProvisioner(svc, ProvisionerConfig{ServerURL: "wss://lk.example.test"}, nil)

	got, err := p.Provision(context.Background(), Spec{Metadata: map[string]string{"agentId": "agent_1", "studentName": "Ada"}})
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if len(svc.created) != 1 {
		t.Fatalf("CreateRoom calls = %d, want 1", len(svc.created))
	}
	req := svc.created[0]
	if req.EmptyTimeout != 300 || req.MaxParticipants != 2 {
		t.Fatalf("limits = %d/%d, want 300/2", req.EmptyTimeout, req.MaxParticipants)
	}
	if !roomNamePattern.MatchString(req.Name) {
		t.Fatalf("room name %q does not match %s", req.Name, roomNamePattern)
	}
	if got.Name != req.Name || got.SID != "RM_"+req.Name || got.URL != "wss://lk.example.test" {
		t.Fatalf("snapshot = %+v, want name/sid/url from request", got)
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(req.Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["agentId"] != "agent_1" || meta["studentName"] != "Ada" {
		t.Fatalf("metadata = %v, want caller values", meta)
	}
}

func TestProvisionNameUsesClockAndSuffix(t *testing.T) {
	p := NewProvisioner(&fakeRoomService{}, ProvisionerConfig{NamePrefix: "lesson"}, nil)
	p.now = func() time.Time { return time.UnixMilli(1700000000123) }
	p.suffix = func() string { return "deadbeef" }

	got, err := p.Provision(context.Background(), Spec{})
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if got.Name != "lesson-1700000000123-deadbeef" {
		t.Fatalf("Name = %q, want %q", got.Name, "lesson-1700000000123-deadbeef")
	}
	if got.Metadata != "" {
		t.Fatalf("Metadata = %q, want empty for nil spec metadata", got.Metadata)
	}
}

func TestProvisionNamesAreDistinct(t *testing.T) {
	p := NewProvisioner(&fakeRoomService{}, ProvisionerConfig{}, nil)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		r, err := p.Provision(context.Background(), Spec{})
		if err != nil {
			t.Fatalf("Provision() error = %v", err)
		}
		if seen[r.Name] {
			t.Fatalf("duplicate room name %q", r.Name)
		}
		seen[r.Name] = true
	}
}

func TestProvisionWrapsServiceError(t *testing.T) {
	svc := &fakeRoomService{createErr: errors.New("quota exceeded")}
	p := NewProvisioner(svc, ProvisionerConfig{}, nil)

	_, err := p.Provision(context.Background(), Spec{})
	if !errors.Is(err, reliability.ErrProvisioning) {
		t.Fatalf("Provision() error = %v, want ErrProvisioning", err)
	}
}

func TestProvisionRejectsUnencodableMetadata(t *testing.T) {
	svc := &fakeRoomService{}
	p := NewProvisioner(svc, ProvisionerConfig{}, nil)

	_, err := p.Provision(context.Background(), Spec{Metadata: map[string]any{"bad": make(chan int)}})
	if !errors.Is(err, reliability.ErrProvisioning) {
		t.Fatalf("Provision() error = %v, want ErrProvisioning", err)
	}
	if len(svc.created) != 0 {
		t.Fatalf("CreateRoom called %d times, want 0", len(svc.created))
	}
}

func TestDelete(t *testing.T) {
	svc := &fakeRoomService{}
	p := NewProvisioner(svc, ProvisionerConfig{}, nil)
	if err := p.Delete(context.Background(), "seminar-1-abc"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != "seminar-1-abc" {
		t.Fatalf("deleted = %v, want [seminar-1-abc]", svc.deleted)
	}

	svc.deleteErr = errors.New("not found")
	if err := p.Delete(context.Background(), "x"); err == nil {
		t.Fatalf("Delete() expected error")
	}
}
