package store

import (
	"context"

	"lettings/internal/inspection/models"
	id "lettings/pkg/domain"
)

// Error Contract:
// - ErrNotFound when the property has no such slot, reservation or booking
// - ErrConflict when ConfigureSlots would drop a slot that still has tenants
// - ErrAlreadyUsed when the tenant already holds a different slot on the property
// - wrapped errors for infrastructure failures

// Store is implemented by the memory, Postgres and Redis registries. Every
// method is atomic per property: the reservation rules hold under concurrent
// callers without any locking in the service layer.
type Store interface {
	// ConfigureSlots replaces the property's windows by position. Existing
	// indexes keep their InspectionID and reservations.
	ConfigureSlots(ctx context.Context, propertyID id.PropertyID, windows []models.Window) ([]models.Slot, error)
	ListSlots(ctx context.Context, propertyID id.PropertyID) ([]models.Slot, error)
	// Reserve creates r, or returns the tenant's existing reservation with
	// Created=false when it is for the same slot.
	Reserve(ctx context.Context, r models.Reservation) (models.ReserveResult, error)
	FindReservation(ctx context.Context, propertyID id.PropertyID, tenantID id.TenantID) (*models.Reservation, error)
	FindBooking(ctx context.Context, propertyID id.PropertyID, bookingID id.BookingID) (*models.Reservation, error)
	// Cancel removes r only if the stored booking still matches it.
	Cancel(ctx context.Context, r models.Reservation) error
}
