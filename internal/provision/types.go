package provision

import "time"

// DefaultParticipantName is used when the client omits a name or sends
// only whitespace.
const DefaultParticipantName = "Student"

// RoomRequest is the client input for one provisioning call.
type RoomRequest struct {
	StudentName string `json:"studentName"`
}

// RoomInfo is the subset of the provisioned room returned to clients.
type RoomInfo struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	SID  string `json:"sid"`
}

// SessionResult is returned on success. Success is true whenever a room
// and student token were produced, whatever happened to the dispatch.
type SessionResult struct {
	Success bool     `json:"success"`
	Room    RoomInfo `json:"room"`
	Token   string   `json:"token"`
	AgentID string   `json:"agentId"`
}

type roomMetadata struct {
	AgentID     string    `json:"agentId"`
	CreatedAt   time.Time `json:"createdAt"`
	StudentName string    `json:"studentName"`
}

// Stage names a step of CreateSession for logs and the ledger.
type Stage string

const (
	StageConfig       Stage = "config"
	StageProvisioning Stage = "provisioning"
	StageMinting      Stage = "minting"
	StageDispatching  Stage = "dispatching"
	StageCompleted    Stage = "completed"
)

const (
	outcomeCompleted           = "completed"
	outcomeConfigurationFailed = "configuration_failed"
	outcomeProvisioningFailed  = "provisioning_failed"
	outcomeSigningFailed       = "signing_failed"
)
