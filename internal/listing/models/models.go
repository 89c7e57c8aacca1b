package models

import (
	"time"

	"lettings/internal/events"
	id "lettings/pkg/domain"
	dErrors "lettings/pkg/domain-errors"
)

// Status is the market-facing state of a listing. The order of the chain is
// the order of the constants.
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusListed          Status = "LISTED"
	StatusTenantSelection Status = "TENANT_SELECTION"
	StatusTenantApproval  Status = "TENANT_APPROVAL"
	StatusClosed          Status = "CLOSED"
)

var chain = []Status{StatusDraft, StatusListed, StatusTenantSelection, StatusTenantApproval, StatusClosed}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if st.rank() < 0 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown listing status: "+s)
	}
	return st, nil
}

func (s Status) rank() int {
	for i, c := range chain {
		if c == s {
			return i
		}
	}
	return -1
}

func (s Status) IsValid() bool { return s.rank() >= 0 }

// Before reports whether s comes strictly earlier in the chain than other.
func (s Status) Before(other Status) bool {
	return s.rank() < other.rank()
}

// Next is the single forward edge out of s. CLOSED has none.
func (s Status) Next() (Status, bool) {
	r := s.rank()
	if r < 0 || r == len(chain)-1 {
		return "", false
	}
	return chain[r+1], true
}

// IsOpen reports whether the listing takes bookings and applications.
func (s Status) IsOpen() bool {
	return s == StatusListed || s == StatusTenantSelection || s == StatusTenantApproval
}

type Listing struct {
	PropertyID id.PropertyID
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewListing(propertyID id.PropertyID, now time.Time) *Listing {
	return &Listing{PropertyID: propertyID, Status: StatusDraft, CreatedAt: now, UpdatedAt: now}
}

// Advance moves the listing one edge forward. It refuses to skip or regress.
func (l *Listing) Advance(to Status, now time.Time) error {
	next, ok := l.Status.Next()
	if !ok || next != to {
		return dErrors.New(dErrors.CodeInvalidTransition,
			"listing cannot move from "+string(l.Status)+" to "+string(to))
	}
	l.Status = to
	l.UpdatedAt = now
	return nil
}

const EventListingAdvanced = "listing.advanced"

// ListingAdvanced is published after every committed listing edge.
type ListingAdvanced struct {
	events.BaseEvent
	PropertyID id.PropertyID `json:"property_id"`
	From       Status        `json:"from"`
	To         Status        `json:"to"`
}

func (ListingAdvanced) EventName() string      { return EventListingAdvanced }
func (e ListingAdvanced) PartitionKey() string { return e.PropertyID.String() }
