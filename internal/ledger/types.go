package ledger

import (
	"context"
	"time"
)

// Event is an audit record of one provisioning attempt. It never holds
// tokens or signed URLs.
type Event struct {
	ID              string    `json:"id"`
	RoomName        string    `json:"room_name"`
	RoomSID         string    `json:"room_sid"`
	Outcome         string    `json:"outcome"`
	DispatchOutcome string    `json:"dispatch_outcome"`
	CreatedAt       time.Time `json:"created_at"`
}

// Store appends provisioning events.
type Store interface {
	Record(ctx context.Context, event Event) error
	Close() error
}
