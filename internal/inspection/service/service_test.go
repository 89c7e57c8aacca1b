package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ListingGate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"lettings/internal/audit"
	"lettings/internal/events"
	"lettings/internal/inspection/metrics"
	"lettings/internal/inspection/models"
	"lettings/internal/inspection/service/mocks"
	"lettings/internal/inspection/store"
	id "lettings/pkg/domain"
	dErrors "lettings/pkg/domain-errors"
	"lettings/pkg/requestcontext"
	"lettings/pkg/testutil"
)

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) Subscribe(string, events.Handler) {}
func (b *recordingBus) Observe(string, events.Handler)   {}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.EventName()
	}
	return out
}

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	gate       *mocks.MockListingGate
	bus        *recordingBus
	auditStore *audit.InMemoryStore
	metrics    *metrics.Metrics
	service    *Service

	ctx        context.Context
	propertyID id.PropertyID
	agent      id.Actor
	landlord   id.Actor
	tenant     id.Actor
	other      id.Actor
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.gate = mocks.NewMockListingGate(s.ctrl)
	s.gate.EXPECT().RequireOpen(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.bus = &recordingBus{}
	s.auditStore = audit.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(store.NewInMemory(),
		WithListingGate(s.gate),
		WithEventBus(s.bus),
		WithAuditor(audit.NewPublisher(s.auditStore)),
		WithMetrics(s.metrics),
	)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), now)
	s.propertyID = id.PropertyID(uuid.New())
	s.agent = id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleAgent}
	s.landlord = id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleLandlord}
	s.tenant = id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleTenant}
	s.other = id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleTenant}
}

func (s *ServiceSuite) configure(n int) {
	windows := make([]models.Window, n)
	start := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	for i := range windows {
		windows[i] = models.Window{Start: start.Add(time.Duration(i) * time.Hour), End: start.Add(time.Duration(i)*time.Hour + 20*time.Minute)}
	}
	_, err := s.service.ConfigureSlots(s.ctx, s.agent, s.propertyID, windows)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestConfigureSlots() {
	s.Run("agents only", func() {
		_, err := s.service.ConfigureSlots(s.ctx, s.landlord, s.propertyID, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("window must start before it ends", func() {
		at := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
		_, err := s.service.ConfigureSlots(s.ctx, s.agent, s.propertyID, []models.Window{{Start: at, End: at}})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("removing a reserved slot conflicts", func() {
		s.configure(2)
		_, err := s.service.Reserve(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant(), 1)
		s.Require().NoError(err)
		_, err = s.service.ConfigureSlots(s.ctx, s.agent, s.propertyID, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Contains(s.bus.names(), models.EventSlotsConfigured)
}

// Scenario D: a shared slot holds several tenants, but a tenant holds one slot.
func (s *ServiceSuite) TestSharedSlotAndAlreadyBooked() {
	s.configure(2)

	_, err := s.service.Reserve(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant(), 0)
	s.Require().NoError(err)
	_, err = s.service.Reserve(s.ctx, s.other, s.propertyID, s.other.AsTenant(), 0)
	s.Require().NoError(err)

	views, err := s.service.ListSlots(s.ctx, s.agent, s.propertyID)
	s.Require().NoError(err)
	s.ElementsMatch([]id.TenantID{s.tenant.AsTenant(), s.other.AsTenant()}, views[0].ReservedTenantIDs)

	_, err = s.service.Reserve(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant(), 1)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyBooked))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Reservations.WithLabelValues(metrics.OutcomeAlreadyTaken)))
}

func (s *ServiceSuite) TestReserve() {
	s.configure(1)

	s.Run("tenant cannot reserve for someone else", func() {
		_, err := s.service.Reserve(s.ctx, s.tenant, s.propertyID, s.other.AsTenant(), 0)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("landlord cannot reserve", func() {
		_, err := s.service.Reserve(s.ctx, s.landlord, s.propertyID, s.tenant.AsTenant(), 0)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown index", func() {
		_, err := s.service.Reserve(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant(), 5)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("idempotent re-reserve returns the same booking", func() {
		first, err := s.service.Reserve(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant(), 0)
		s.Require().NoError(err)
		s.True(first.Created)
		again, err := s.service.Reserve(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant(), 0)
		s.Require().NoError(err)
		s.False(again.Created)
		s.Equal(first.Reservation.BookingID, again.Reservation.BookingID)
	})

	s.Run("agent cannot book itself as a tenant", func() {
		_, err := s.service.Reserve(s.ctx, s.agent, s.propertyID, s.agent.AsTenant(), 0)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		r, err := s.service.FindReservation(s.ctx, s.propertyID, s.agent.AsTenant())
		s.Require().NoError(err)
		s.Nil(r)
	})

	s.Run("agent may reserve for a tenant", func() {
		res, err := s.service.Reserve(s.ctx, s.agent, s.propertyID, s.other.AsTenant(), 0)
		s.Require().NoError(err)
		s.Equal(s.other.AsTenant(), res.Reservation.TenantID)
	})

	events, err := s.auditStore.ListByProperty(s.ctx, s.propertyID)
	s.Require().NoError(err)
	created := 0
	for _, e := range events {
		if e.Action == audit.ActionReservationCreated {
			created++
		}
	}
	s.Equal(2, created)
}

func (s *ServiceSuite) TestReserveRequiresOpenListing() {
	ctrl := gomock.NewController(s.T())
	gate := mocks.NewMockListingGate(ctrl)
	gate.EXPECT().RequireOpen(gomock.Any(), s.propertyID).
		Return(dErrors.New(dErrors.CodeConflict, "listing is not accepting bookings"))
	svc := New(store.NewInMemory(), WithListingGate(gate))

	_, err := svc.Reserve(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant(), 0)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestCancel() {
	s.configure(2)
	res, err := s.service.Reserve(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant(), 1)
	s.Require().NoError(err)
	bookingID := res.Reservation.BookingID

	s.Run("wrong slot index", func() {
		err := s.service.Cancel(s.ctx, s.tenant, bookingID, s.propertyID, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("other tenant", func() {
		err := s.service.Cancel(s.ctx, s.other, bookingID, s.propertyID, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("owner cancels and slot stays", func() {
		s.Require().NoError(s.service.Cancel(s.ctx, s.tenant, bookingID, s.propertyID, 1))
		views, err := s.service.ListSlots(s.ctx, s.tenant, s.propertyID)
		s.Require().NoError(err)
		s.Len(views, 2)
		s.Zero(views[1].ReservedCount)
		s.False(views[1].HeldByCaller)

		r, err := s.service.ReservationFor(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant())
		s.Require().NoError(err)
		s.Nil(r)
	})

	s.Run("unknown booking", func() {
		err := s.service.Cancel(s.ctx, s.tenant, bookingID, s.propertyID, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Contains(s.bus.names(), models.EventReservationCancelled)
}

func (s *ServiceSuite) TestTenantViewHidesOtherTenants() {
	s.configure(1)
	_, err := s.service.Reserve(s.ctx, s.other, s.propertyID, s.other.AsTenant(), 0)
	s.Require().NoError(err)

	views, err := s.service.ListSlots(s.ctx, s.tenant, s.propertyID)
	s.Require().NoError(err)
	s.Equal(1, views[0].ReservedCount)
	s.Nil(views[0].ReservedTenantIDs)
	s.False(views[0].HeldByCaller)
}

func (s *ServiceSuite) TestConcurrentDoubleBooking() {
	s.configure(4)
	result := testutil.RunConcurrent(20, func(idx int) error {
		_, err := s.service.Reserve(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant(), idx%4)
		return err
	})
	// Same-slot retries are idempotent successes; every other slot is already_booked.
	s.Equal(int32(5), result.Successes)
	s.Equal(int32(15), result.Conflicts)

	r, err := s.service.FindReservation(s.ctx, s.propertyID, s.tenant.AsTenant())
	s.Require().NoError(err)
	s.Require().NotNil(r)
}
