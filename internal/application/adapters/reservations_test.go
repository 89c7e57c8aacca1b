package adapters

//go:generate mockgen -source=reservations.go -destination=mocks/mocks.go -package=mocks ReservationFinder

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"lettings/internal/application/adapters/mocks"
	inspectionmodels "lettings/internal/inspection/models"
	id "lettings/pkg/domain"
)

func TestReservationAdapter(t *testing.T) {
	ctx := context.Background()
	propertyID := id.PropertyID(uuid.New())
	tenantID := id.TenantID(uuid.New())

	t.Run("booking present", func(t *testing.T) {
		registry := mocks.NewMockReservationFinder(gomock.NewController(t))
		registry.EXPECT().FindReservation(ctx, propertyID, tenantID).
			Return(&inspectionmodels.Reservation{PropertyID: propertyID, TenantID: tenantID}, nil)

		ok, err := NewReservationAdapter(registry).HasReservation(ctx, propertyID, tenantID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("no booking", func(t *testing.T) {
		registry := mocks.NewMockReservationFinder(gomock.NewController(t))
		registry.EXPECT().FindReservation(ctx, propertyID, tenantID).Return(nil, nil)

		ok, err := NewReservationAdapter(registry).HasReservation(ctx, propertyID, tenantID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("registry failure propagates", func(t *testing.T) {
		registry := mocks.NewMockReservationFinder(gomock.NewController(t))
		registry.EXPECT().FindReservation(ctx, propertyID, tenantID).Return(nil, errors.New("redis: connection refused"))

		_, err := NewReservationAdapter(registry).HasReservation(ctx, propertyID, tenantID)
		assert.Error(t, err)
	})
}
