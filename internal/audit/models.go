package audit

import (
	"time"

	id "lettings/pkg/domain"
)

// Event is one append-only audit record of a mutating call.
type Event struct {
	Timestamp  time.Time     `json:"timestamp"`
	Action     Action        `json:"action"`
	ActorID    id.UserID     `json:"actor_id"`
	ActorRole  id.Role       `json:"actor_role"`
	PropertyID id.PropertyID `json:"property_id"`
	Subject    string        `json:"subject,omitempty"`
	From       string        `json:"from,omitempty"`
	To         string        `json:"to,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	RequestID  string        `json:"request_id,omitempty"`
	Device     string        `json:"device,omitempty"`
}

type Action string

const (
	ActionSlotsConfigured         Action = "slots_configured"
	ActionReservationCreated      Action = "reservation_created"
	ActionReservationCancelled    Action = "reservation_cancelled"
	ActionApplicationSubmitted    Action = "application_submitted"
	ActionApplicationTransitioned Action = "application_transitioned"
	ActionApplicationReset        Action = "application_reset"
	ActionListingRegistered       Action = "listing_registered"
	ActionListingAdvanced         Action = "listing_advanced"
)
