package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"lettings/internal/inspection/models"
	"lettings/internal/inspection/store"
	id "lettings/pkg/domain"
	"lettings/pkg/platform/sentinel"
	"lettings/pkg/testutil"
)

// StoreContractSuite runs the registry rules against every Store
// implementation. newStore is called once per test.
type StoreContractSuite struct {
	suite.Suite
	newStore   func() store.Store
	store      store.Store
	ctx        context.Context
	propertyID id.PropertyID
	base       time.Time
}

func TestInMemoryStore(t *testing.T) {
	suite.Run(t, &StoreContractSuite{newStore: func() store.Store { return store.NewInMemory() }})
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	suite.Run(t, &StoreContractSuite{newStore: func() store.Store {
		mr.FlushAll()
		return store.NewRedis(client)
	}})
}

func (s *StoreContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore()
	s.propertyID = id.PropertyID(uuid.New())
	s.base = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
}

func (s *StoreContractSuite) windows(n int) []models.Window {
	out := make([]models.Window, n)
	for i := range out {
		start := s.base.Add(time.Duration(i) * time.Hour)
		out[i] = models.Window{Start: start, End: start.Add(30 * time.Minute)}
	}
	return out
}

func (s *StoreContractSuite) reservation(tenantID id.TenantID, index int) models.Reservation {
	return models.Reservation{
		BookingID:       id.NewBookingID(),
		PropertyID:      s.propertyID,
		TenantID:        tenantID,
		InspectionIndex: index,
		ReservedAt:      s.base,
	}
}

func (s *StoreContractSuite) TestConfigureAndList() {
	slots, err := s.store.ConfigureSlots(s.ctx, s.propertyID, s.windows(2))
	s.Require().NoError(err)
	s.Require().Len(slots, 2)
	s.Equal(0, slots[0].Index)
	s.Equal(s.base, slots[0].Start)
	s.Empty(slots[1].ReservedTenantIDs)

	listed, err := s.store.ListSlots(s.ctx, s.propertyID)
	s.Require().NoError(err)
	s.Equal(slots, listed)

	s.Run("unknown property lists empty", func() {
		empty, err := s.store.ListSlots(s.ctx, id.PropertyID(uuid.New()))
		s.Require().NoError(err)
		s.Empty(empty)
	})
}

func (s *StoreContractSuite) TestReconfigureKeepsIdentityAndReservations() {
	first, err := s.store.ConfigureSlots(s.ctx, s.propertyID, s.windows(3))
	s.Require().NoError(err)
	tenant := id.TenantID(uuid.New())
	_, err = s.store.Reserve(s.ctx, s.reservation(tenant, 1))
	s.Require().NoError(err)

	moved := s.windows(2)
	moved[1].Start = moved[1].Start.Add(15 * time.Minute)
	second, err := s.store.ConfigureSlots(s.ctx, s.propertyID, moved)
	s.Require().NoError(err)
	s.Require().Len(second, 2)
	s.Equal(first[1].InspectionID, second[1].InspectionID)
	s.Equal(moved[1].Start, second[1].Start)
	s.Equal([]id.TenantID{tenant}, second[1].ReservedTenantIDs)
}

func (s *StoreContractSuite) TestReconfigureCannotDropReservedSlot() {
	_, err := s.store.ConfigureSlots(s.ctx, s.propertyID, s.windows(2))
	s.Require().NoError(err)
	_, err = s.store.Reserve(s.ctx, s.reservation(id.TenantID(uuid.New()), 1))
	s.Require().NoError(err)

	_, err = s.store.ConfigureSlots(s.ctx, s.propertyID, s.windows(1))
	s.ErrorIs(err, sentinel.ErrConflict)

	slots, err := s.store.ListSlots(s.ctx, s.propertyID)
	s.Require().NoError(err)
	s.Len(slots, 2)
}

func (s *StoreContractSuite) TestReserve() {
	_, err := s.store.ConfigureSlots(s.ctx, s.propertyID, s.windows(2))
	s.Require().NoError(err)
	tenant := id.TenantID(uuid.New())
	first := s.reservation(tenant, 0)

	s.Run("creates", func() {
		res, err := s.store.Reserve(s.ctx, first)
		s.Require().NoError(err)
		s.True(res.Created)
		s.Equal(first, res.Reservation)
	})

	s.Run("same slot is idempotent and keeps the booking", func() {
		res, err := s.store.Reserve(s.ctx, s.reservation(tenant, 0))
		s.Require().NoError(err)
		s.False(res.Created)
		s.Equal(first.BookingID, res.Reservation.BookingID)
	})

	s.Run("different slot is already used", func() {
		res, err := s.store.Reserve(s.ctx, s.reservation(tenant, 1))
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
		s.Equal(0, res.Reservation.InspectionIndex)
	})

	s.Run("unknown slot", func() {
		_, err := s.store.Reserve(s.ctx, s.reservation(id.TenantID(uuid.New()), 7))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("slots are shared between tenants", func() {
		other := id.TenantID(uuid.New())
		_, err := s.store.Reserve(s.ctx, s.reservation(other, 0))
		s.Require().NoError(err)
		slots, err := s.store.ListSlots(s.ctx, s.propertyID)
		s.Require().NoError(err)
		s.Len(slots[0].ReservedTenantIDs, 2)
		s.True(slots[0].HasTenant(tenant))
		s.True(slots[0].HasTenant(other))
	})
}

func (s *StoreContractSuite) TestFindAndCancel() {
	_, err := s.store.ConfigureSlots(s.ctx, s.propertyID, s.windows(1))
	s.Require().NoError(err)
	tenant := id.TenantID(uuid.New())
	r := s.reservation(tenant, 0)
	_, err = s.store.Reserve(s.ctx, r)
	s.Require().NoError(err)

	found, err := s.store.FindReservation(s.ctx, s.propertyID, tenant)
	s.Require().NoError(err)
	s.Equal(r, *found)

	byBooking, err := s.store.FindBooking(s.ctx, s.propertyID, r.BookingID)
	s.Require().NoError(err)
	s.Equal(r, *byBooking)

	s.Run("cancel with wrong index is not found", func() {
		wrong := r
		wrong.InspectionIndex = 3
		s.ErrorIs(s.store.Cancel(s.ctx, wrong), sentinel.ErrNotFound)
	})

	s.Require().NoError(s.store.Cancel(s.ctx, r))

	s.Run("slot survives empty", func() {
		slots, err := s.store.ListSlots(s.ctx, s.propertyID)
		s.Require().NoError(err)
		s.Require().Len(slots, 1)
		s.Empty(slots[0].ReservedTenantIDs)
	})

	s.Run("second cancel is not found", func() {
		s.ErrorIs(s.store.Cancel(s.ctx, r), sentinel.ErrNotFound)
	})

	s.Run("lookups are gone", func() {
		_, err := s.store.FindReservation(s.ctx, s.propertyID, tenant)
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.store.FindBooking(s.ctx, s.propertyID, r.BookingID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("tenant can book again with a new booking", func() {
		again := s.reservation(tenant, 0)
		res, err := s.store.Reserve(s.ctx, again)
		s.Require().NoError(err)
		s.True(res.Created)
		s.NotEqual(r.BookingID, res.Reservation.BookingID)
	})
}

// TestConcurrentReserveOneSlotPerTenant races one tenant across every slot:
// exactly one reservation may win.
func (s *StoreContractSuite) TestConcurrentReserveOneSlotPerTenant() {
	const slots = 8
	_, err := s.store.ConfigureSlots(s.ctx, s.propertyID, s.windows(slots))
	s.Require().NoError(err)
	tenant := id.TenantID(uuid.New())

	result := testutil.RunConcurrent(slots*4, func(idx int) error {
		res, err := s.store.Reserve(s.ctx, s.reservation(tenant, idx%slots))
		if err == nil && !res.Created {
			return sentinel.ErrConflict
		}
		return err
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(slots*4-1), result.Conflicts)
	s.Zero(result.Errors)

	listed, err := s.store.ListSlots(s.ctx, s.propertyID)
	s.Require().NoError(err)
	held := 0
	for _, slot := range listed {
		held += len(slot.ReservedTenantIDs)
	}
	s.Equal(1, held)
}
