package adapters

import (
	"context"

	inspectionmodels "lettings/internal/inspection/models"
	id "lettings/pkg/domain"
)

// ReservationFinder is the slice of the inspection registry the tracker reads.
type ReservationFinder interface {
	FindReservation(ctx context.Context, propertyID id.PropertyID, tenantID id.TenantID) (*inspectionmodels.Reservation, error)
}

// ReservationAdapter answers the tracker's "does this tenant hold a booking"
// question from the inspection registry, in-process.
type ReservationAdapter struct {
	registry ReservationFinder
}

func NewReservationAdapter(registry ReservationFinder) *ReservationAdapter {
	return &ReservationAdapter{registry: registry}
}

// HasReservation is true when the tenant holds a slot on the property. The
// registry reports absence as (nil, nil).
func (a *ReservationAdapter) HasReservation(ctx context.Context, propertyID id.PropertyID, tenantID id.TenantID) (bool, error) {
	r, err := a.registry.FindReservation(ctx, propertyID, tenantID)
	if err != nil {
		return false, err
	}
	return r != nil, nil
}
