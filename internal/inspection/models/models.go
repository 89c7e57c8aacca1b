package models

import (
	"slices"
	"strings"
	"time"

	"lettings/internal/events"
	id "lettings/pkg/domain"
)

// Window is one externally supplied inspection time range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Slot is a bookable window for a property. A slot is shared: any number of
// tenants may hold it, but each tenant holds at most one slot per property.
type Slot struct {
	InspectionID      id.InspectionID
	PropertyID        id.PropertyID
	Index             int
	Start             time.Time
	End               time.Time
	ReservedTenantIDs []id.TenantID
}

// SortTenants orders ReservedTenantIDs so views and tests are deterministic.
func (s *Slot) SortTenants() {
	slices.SortFunc(s.ReservedTenantIDs, func(a, b id.TenantID) int {
		return strings.Compare(a.String(), b.String())
	})
}

// HasTenant reports whether tenantID holds this slot.
func (s Slot) HasTenant(tenantID id.TenantID) bool {
	return slices.Contains(s.ReservedTenantIDs, tenantID)
}

// Reservation is a tenant's hold on one slot. BookingID stays the same across
// idempotent re-reserves of the same slot and is the handle for cancel.
type Reservation struct {
	BookingID       id.BookingID
	PropertyID      id.PropertyID
	TenantID        id.TenantID
	InspectionIndex int
	ReservedAt      time.Time
}

// ReserveResult is what a reserve call returns.
type ReserveResult struct {
	Reservation Reservation
	Created     bool
}

const (
	EventSlotsConfigured      = "inspection.slots_configured"
	EventReservationCreated   = "inspection.reservation_created"
	EventReservationCancelled = "inspection.reservation_cancelled"
)

type SlotsConfigured struct {
	events.BaseEvent
	PropertyID id.PropertyID `json:"property_id"`
	SlotCount  int           `json:"slot_count"`
}

func (SlotsConfigured) EventName() string      { return EventSlotsConfigured }
func (e SlotsConfigured) PartitionKey() string { return e.PropertyID.String() }

type ReservationCreated struct {
	events.BaseEvent
	BookingID       id.BookingID  `json:"booking_id"`
	PropertyID      id.PropertyID `json:"property_id"`
	TenantID        id.TenantID   `json:"tenant_id"`
	InspectionIndex int           `json:"inspection_index"`
}

func (ReservationCreated) EventName() string      { return EventReservationCreated }
func (e ReservationCreated) PartitionKey() string { return e.PropertyID.String() }

type ReservationCancelled struct {
	events.BaseEvent
	BookingID       id.BookingID  `json:"booking_id"`
	PropertyID      id.PropertyID `json:"property_id"`
	TenantID        id.TenantID   `json:"tenant_id"`
	InspectionIndex int           `json:"inspection_index"`
}

func (ReservationCancelled) EventName() string      { return EventReservationCancelled }
func (e ReservationCancelled) PartitionKey() string { return e.PropertyID.String() }

// SlotView is a slot as shown to one caller. Tenants only see the count and
// whether they hold the slot; agents and landlords also see who.
type SlotView struct {
	InspectionID      id.InspectionID
	Index             int
	Start             time.Time
	End               time.Time
	ReservedCount     int
	ReservedTenantIDs []id.TenantID
	HeldByCaller      bool
}

// ViewFor renders s for actor.
func (s Slot) ViewFor(actor id.Actor) SlotView {
	v := SlotView{
		InspectionID:  s.InspectionID,
		Index:         s.Index,
		Start:         s.Start,
		End:           s.End,
		ReservedCount: len(s.ReservedTenantIDs),
	}
	if actor.Role == id.RoleTenant {
		v.HeldByCaller = s.HasTenant(actor.AsTenant())
		return v
	}
	v.ReservedTenantIDs = slices.Clone(s.ReservedTenantIDs)
	return v
}
