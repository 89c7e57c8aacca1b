package store

import (
	"context"

	"lettings/internal/application/models"
	id "lettings/pkg/domain"
)

// Error Contract:
// - ErrNotFound when the application does not exist
// - ErrAlreadyUsed when a write would leave two active applications for one
//   tenant on one property
// - errors returned by Execute's validate callback pass through unchanged
// - wrapped errors for infrastructure failures

// Store persists applications. Execute is the only way to change status:
// it serialises writers per application and runs validate against the
// current row before mutate.
type Store interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, applicationID id.ApplicationID) (*models.Application, error)
	FindActive(ctx context.Context, propertyID id.PropertyID, tenantID id.TenantID) (*models.Application, error)
	// ListByProperty returns applications ordered by CreatedAt ascending.
	ListByProperty(ctx context.Context, propertyID id.PropertyID) ([]*models.Application, error)
	CountByStatus(ctx context.Context, propertyID id.PropertyID) (map[models.Status]int, error)
	Execute(ctx context.Context, applicationID id.ApplicationID, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error)
}
