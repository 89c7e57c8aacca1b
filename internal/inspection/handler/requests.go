package handler

import (
	"time"

	"lettings/internal/inspection/models"
	id "lettings/pkg/domain"
	"lettings/pkg/validation"
)

type WindowRequest struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtfield=Start"`
}

type ConfigureSlotsRequest struct {
	Windows []WindowRequest `json:"windows" validate:"max=100,dive"`
}

func (r *ConfigureSlotsRequest) Validate() error {
	return validation.Validate(r)
}

func (r *ConfigureSlotsRequest) toWindows() []models.Window {
	out := make([]models.Window, len(r.Windows))
	for i, w := range r.Windows {
		out[i] = models.Window{Start: w.Start.UTC(), End: w.End.UTC()}
	}
	return out
}

// ReserveRequest is optional; tenants reserve for themselves, agents name
// the tenant.
type ReserveRequest struct {
	TenantID string `json:"tenant_id" validate:"omitempty,uuid"`
}

func (r *ReserveRequest) Validate() error {
	return validation.Validate(r)
}

// tenantFor resolves the tenant the reservation is for. An empty body only
// works for tenants.
func (r *ReserveRequest) tenantFor(actor id.Actor) (id.TenantID, error) {
	if r == nil {
		return actor.ResolveTenant("")
	}
	return actor.ResolveTenant(r.TenantID)
}
