package store

import (
	"context"

	"lettings/internal/listing/models"
	id "lettings/pkg/domain"
)

// Store persists listings.
//
// Create returns sentinel.ErrConflict when the property is already
// registered; Find and Execute return sentinel.ErrNotFound for unknown ones.
// Execute runs validate then mutate under the listing's lock; an error from
// either aborts without writing.
type Store interface {
	Create(ctx context.Context, listing *models.Listing) error
	Find(ctx context.Context, propertyID id.PropertyID) (*models.Listing, error)
	Execute(ctx context.Context, propertyID id.PropertyID, mutate func(*models.Listing) error) (*models.Listing, error)
}
