package events

import (
	"time"

	"github.com/spec-kit/loto-fleet/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLockerProvisioned   EventType = "locker_provisioned"
	EventLockerStatusChanged EventType = "locker_status_changed"
	EventLockerForceOverride EventType = "locker_force_override"
	EventLockerRemoved       EventType = "locker_removed"
)

// Event represents a domain event emitted after a committed fleet mutation.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	LockerID  string      `json:"locker_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// LockerProvisionedPayload payload.
type LockerProvisionedPayload struct {
	UnitName string `json:"unit_name"`
	Location string `json:"location"`
	Bulk     bool   `json:"bulk"`
}

// LockerStatusChangedPayload payload for an authorized transition.
type LockerStatusChangedPayload struct {
	UnitName   string              `json:"unit_name"`
	FromStatus domain.LockerStatus `json:"from_status"`
	ToStatus   domain.LockerStatus `json:"to_status"`
	Technician string              `json:"technician"`
	Equipment  string              `json:"equipment"`
}

// LockerForceOverridePayload payload for the audit-light override.
type LockerForceOverridePayload struct {
	UnitName string              `json:"unit_name"`
	ToStatus domain.LockerStatus `json:"to_status"`
}

// LockerRemovedPayload payload.
type LockerRemovedPayload struct {
	UnitName string `json:"unit_name"`
}
