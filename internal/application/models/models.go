package models

import (
	"slices"
	"time"

	"lettings/internal/events"
	id "lettings/pkg/domain"
	dErrors "lettings/pkg/domain-errors"
)

// Application is one tenant's bid for one listing. StatusHistory holds the
// statuses it has left, oldest first, so Reset can walk back.
type Application struct {
	ID            id.ApplicationID
	PropertyID    id.PropertyID
	TenantID      id.TenantID
	Status        Status
	StatusHistory []Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewApplication(propertyID id.PropertyID, tenantID id.TenantID, now time.Time) *Application {
	return &Application{
		ID:            id.NewApplicationID(),
		PropertyID:    propertyID,
		TenantID:      tenantID,
		Status:        StatusSubmitted,
		StatusHistory: []Status{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Clone returns a deep copy.
func (a *Application) Clone() *Application {
	c := *a
	c.StatusHistory = slices.Clone(a.StatusHistory)
	if c.StatusHistory == nil {
		c.StatusHistory = []Status{}
	}
	return &c
}

// Apply moves the application along e.
func (a *Application) Apply(e Edge, now time.Time) {
	a.StatusHistory = append(a.StatusHistory, a.Status)
	a.Status = e.To
	a.UpdatedAt = now
}

// ResetEdge is the edge Reset would undo, used for the role check. Terminal
// positive applications and fresh submissions cannot be reset.
func (a *Application) ResetEdge() (Edge, error) {
	if a.Status == StatusSentToAgentFinal {
		return Edge{}, dErrors.New(dErrors.CodeInvalidTransition, "a final decision sent to the agent cannot be reset")
	}
	if len(a.StatusHistory) == 0 {
		return Edge{}, dErrors.New(dErrors.CodeInvalidTransition, "application has no earlier status to reset to")
	}
	prev := a.StatusHistory[len(a.StatusHistory)-1]
	e, ok := producer(prev, a.Status)
	if !ok {
		return Edge{}, dErrors.New(dErrors.CodeInvariantViolation,
			"status history does not match the transition table: "+string(prev)+" -> "+string(a.Status))
	}
	return e, nil
}

// Reset pops the last history entry back into Status.
func (a *Application) Reset(now time.Time) {
	n := len(a.StatusHistory)
	a.Status = a.StatusHistory[n-1]
	a.StatusHistory = a.StatusHistory[:n-1]
	a.UpdatedAt = now
}

// ItemResult is one application's outcome inside a batch call.
type ItemResult struct {
	ApplicationID id.ApplicationID
	From          Status
	To            Status
	Err           error
}

// BatchResult reports per-item outcomes; one failure never aborts the rest.
type BatchResult struct {
	Items []ItemResult
}

func (r *BatchResult) Succeeded() int {
	n := 0
	for _, item := range r.Items {
		if item.Err == nil {
			n++
		}
	}
	return n
}

func (r *BatchResult) Failed() int {
	return len(r.Items) - r.Succeeded()
}

const (
	EventApplicationSubmitted    = "application.submitted"
	EventApplicationTransitioned = "application.transitioned"
)

type ApplicationSubmitted struct {
	events.BaseEvent
	ApplicationID id.ApplicationID `json:"application_id"`
	PropertyID    id.PropertyID    `json:"property_id"`
	TenantID      id.TenantID      `json:"tenant_id"`
	Status        Status           `json:"status"`
}

func (ApplicationSubmitted) EventName() string      { return EventApplicationSubmitted }
func (e ApplicationSubmitted) PartitionKey() string { return e.PropertyID.String() }

type ApplicationTransitioned struct {
	events.BaseEvent
	ApplicationID id.ApplicationID `json:"application_id"`
	PropertyID    id.PropertyID    `json:"property_id"`
	TenantID      id.TenantID      `json:"tenant_id"`
	Action        Action           `json:"action"`
	From          Status           `json:"from"`
	To            Status           `json:"to"`
}

func (ApplicationTransitioned) EventName() string      { return EventApplicationTransitioned }
func (e ApplicationTransitioned) PartitionKey() string { return e.PropertyID.String() }
