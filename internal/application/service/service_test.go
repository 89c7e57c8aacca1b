package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ReservationChecker,ListingGate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"lettings/internal/application/metrics"
	"lettings/internal/application/models"
	"lettings/internal/application/service/mocks"
	"lettings/internal/application/store"
	"lettings/internal/audit"
	"lettings/internal/events"
	id "lettings/pkg/domain"
	dErrors "lettings/pkg/domain-errors"
	"lettings/pkg/requestcontext"
	"lettings/pkg/testutil"
)

type syncBus struct {
	mu        sync.Mutex
	published []events.Event
	err       error
}

func (b *syncBus) PublishSync(_ context.Context, e events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, e)
	return b.err
}

func (b *syncBus) Publish(context.Context, events.Event) {}
func (b *syncBus) Subscribe(string, events.Handler)      {}
func (b *syncBus) Observe(string, events.Handler)        {}

type ServiceSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	reservations *mocks.MockReservationChecker
	listings     *mocks.MockListingGate
	bus          *syncBus
	auditStore   *audit.InMemoryStore
	metrics      *metrics.Metrics
	store        *store.InMemoryStore
	service      *Service

	ctx        context.Context
	propertyID id.PropertyID
	agent      id.Actor
	landlord   id.Actor
	tenant     id.Actor
	tenant2    id.Actor
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.reservations = mocks.NewMockReservationChecker(s.ctrl)
	s.listings = mocks.NewMockListingGate(s.ctrl)
	s.listings.EXPECT().RequireOpen(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.bus = &syncBus{}
	s.auditStore = audit.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.store = store.NewInMemory()
	s.service = New(s.store,
		WithReservationChecker(s.reservations),
		WithListingGate(s.listings),
		WithEventBus(s.bus),
		WithAuditor(audit.NewPublisher(s.auditStore)),
		WithMetrics(s.metrics),
	)

	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	s.propertyID = id.PropertyID(uuid.New())
	s.agent = id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleAgent}
	s.landlord = id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleLandlord}
	s.tenant = id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleTenant}
	s.tenant2 = id.Actor{ID: id.UserID(uuid.New()), Role: id.RoleTenant}
}

func (s *ServiceSuite) reserved(tenants ...id.Actor) {
	for _, t := range tenants {
		s.reservations.EXPECT().HasReservation(gomock.Any(), s.propertyID, t.AsTenant()).Return(true, nil).AnyTimes()
	}
}

func (s *ServiceSuite) submit(tenant id.Actor) *models.Application {
	app, err := s.service.Submit(s.ctx, tenant, s.propertyID, tenant.AsTenant())
	s.Require().NoError(err)
	return app
}

// Scenario A.
func (s *ServiceSuite) TestSubmitWithReservation() {
	s.reserved(s.tenant)
	app := s.submit(s.tenant)
	s.Equal(models.StatusSubmitted, app.Status)
	s.Empty(app.StatusHistory)

	s.Require().Len(s.bus.published, 1)
	s.Equal(models.EventApplicationSubmitted, s.bus.published[0].EventName())

	applied, err := s.service.HasApplied(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant())
	s.Require().NoError(err)
	s.True(applied)
}

// Scenario B.
func (s *ServiceSuite) TestSubmitWithoutReservation() {
	s.reservations.EXPECT().HasReservation(gomock.Any(), s.propertyID, s.tenant.AsTenant()).Return(false, nil)
	_, err := s.service.Submit(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant())
	s.True(dErrors.HasCode(err, dErrors.CodeNoReservation))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Submissions.WithLabelValues(string(dErrors.CodeNoReservation))))
}

func (s *ServiceSuite) TestSubmitGuards() {
	s.reserved(s.tenant)

	s.Run("only the tenant themselves", func() {
		_, err := s.service.Submit(s.ctx, s.agent, s.propertyID, s.tenant.AsTenant())
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		_, err = s.service.Submit(s.ctx, s.tenant2, s.propertyID, s.tenant.AsTenant())
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("duplicate", func() {
		s.submit(s.tenant)
		_, err := s.service.Submit(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant())
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateApplication))
	})

	s.Run("closed listing", func() {
		ctrl := gomock.NewController(s.T())
		gate := mocks.NewMockListingGate(ctrl)
		gate.EXPECT().RequireOpen(gomock.Any(), s.propertyID).Return(dErrors.New(dErrors.CodeConflict, "listing is closed"))
		svc := New(store.NewInMemory(), WithListingGate(gate))
		_, err := svc.Submit(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant())
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestConcurrentSubmitOneWins() {
	s.reserved(s.tenant)
	result := testutil.RunConcurrent(8, func(int) error {
		_, err := s.service.Submit(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant())
		return err
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(7), result.Conflicts)
}

func (s *ServiceSuite) TestDecisions() {
	s.reserved(s.tenant)
	app := s.submit(s.tenant)

	s.Run("landlord cannot screen", func() {
		_, err := s.service.Accept(s.ctx, s.landlord, app.ID, models.StatusSubmitted)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("tenant cannot decide", func() {
		_, err := s.service.Accept(s.ctx, s.tenant, app.ID, models.StatusSubmitted)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("stale expected status", func() {
		_, err := s.service.RecordBackgroundCheck(s.ctx, s.agent, app.ID, true, models.StatusAgentAccepted)
		s.True(dErrors.HasCode(err, dErrors.CodeStaleStatus))
	})

	s.Run("edge not in table", func() {
		_, err := s.service.RecordBackgroundCheck(s.ctx, s.agent, app.ID, true, models.StatusSubmitted)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	s.Run("unknown application", func() {
		_, err := s.service.Accept(s.ctx, s.agent, id.NewApplicationID(), models.StatusSubmitted)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("accept then background pass", func() {
		accepted, err := s.service.Accept(s.ctx, s.agent, app.ID, models.StatusSubmitted)
		s.Require().NoError(err)
		s.Equal(models.StatusAgentAccepted, accepted.Status)

		passed, err := s.service.RecordBackgroundCheck(s.ctx, s.agent, app.ID, true, models.StatusAgentAccepted)
		s.Require().NoError(err)
		s.Equal(models.StatusBackgroundPassed, passed.Status)
		s.Equal([]models.Status{models.StatusSubmitted, models.StatusAgentAccepted}, passed.StatusHistory)
	})

	// The tenant is turned away before an edge is resolved.
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Transitions.WithLabelValues("accept", string(dErrors.CodeUnauthorized))))
}

func (s *ServiceSuite) TestForwardMoveNeedsReservation() {
	s.reserved(s.tenant)
	app := s.submit(s.tenant)

	ctrl := gomock.NewController(s.T())
	lost := mocks.NewMockReservationChecker(ctrl)
	lost.EXPECT().HasReservation(gomock.Any(), s.propertyID, s.tenant.AsTenant()).Return(false, nil).AnyTimes()
	svc := New(s.store, WithReservationChecker(lost))

	_, err := svc.Accept(s.ctx, s.agent, app.ID, models.StatusSubmitted)
	s.True(dErrors.HasCode(err, dErrors.CodeNoReservation))

	rejected, err := svc.Reject(s.ctx, s.agent, app.ID, models.StatusSubmitted)
	s.Require().NoError(err)
	s.Equal(models.StatusAgentRejected, rejected.Status)
}

// Scenario C.
func (s *ServiceSuite) TestSendToLandlord() {
	s.reserved(s.tenant, s.tenant2)
	a1 := s.submit(s.tenant)
	a2 := s.submit(s.tenant2)
	_, err := s.service.Accept(s.ctx, s.agent, a1.ID, models.StatusSubmitted)
	s.Require().NoError(err)

	s.Run("landlord cannot send", func() {
		_, err := s.service.SendToLandlord(s.ctx, s.landlord, s.propertyID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	result, err := s.service.SendToLandlord(s.ctx, s.agent, s.propertyID)
	s.Require().NoError(err)
	s.Require().Len(result.Items, 1)
	s.Equal(a1.ID, result.Items[0].ApplicationID)
	s.Equal(models.StatusAgentAccepted, result.Items[0].From)
	s.Equal(models.StatusSentToLandlord, result.Items[0].To)
	s.NoError(result.Items[0].Err)

	untouched, err := s.service.Get(s.ctx, s.agent, a2.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusSubmitted, untouched.Status)

	counts, err := s.store.CountByStatus(s.ctx, s.propertyID)
	s.Require().NoError(err)
	s.Equal(1, counts[models.StatusSentToLandlord])

	s.Run("empty batch is not an error", func() {
		again, err := s.service.SendToLandlord(s.ctx, s.agent, s.propertyID)
		s.Require().NoError(err)
		s.Empty(again.Items)
	})
}

func (s *ServiceSuite) TestBatchReportsItemsIndividually() {
	s.reserved(s.tenant)
	s.reservations.EXPECT().HasReservation(gomock.Any(), s.propertyID, s.tenant2.AsTenant()).Return(true, nil).Times(2)
	s.reservations.EXPECT().HasReservation(gomock.Any(), s.propertyID, s.tenant2.AsTenant()).Return(false, nil)

	a1 := s.submit(s.tenant)
	a2 := s.submit(s.tenant2)
	_, err := s.service.Accept(s.ctx, s.agent, a1.ID, models.StatusSubmitted)
	s.Require().NoError(err)
	_, err = s.service.Accept(s.ctx, s.agent, a2.ID, models.StatusSubmitted)
	s.Require().NoError(err)

	result, err := s.service.SendToLandlord(s.ctx, s.agent, s.propertyID)
	s.Require().NoError(err)
	s.Equal(1, result.Succeeded())
	s.Equal(1, result.Failed())
	for _, item := range result.Items {
		if item.ApplicationID == a2.ID {
			s.True(dErrors.HasCode(item.Err, dErrors.CodeNoReservation))
		} else {
			s.NoError(item.Err)
		}
	}
}

func (s *ServiceSuite) TestResetOfRejectionNeedsReservation() {
	has := func(ok bool) *gomock.Call {
		return s.reservations.EXPECT().HasReservation(gomock.Any(), s.propertyID, s.tenant.AsTenant()).Return(ok, nil)
	}
	gomock.InOrder(has(true), has(false), has(true))

	app := s.submit(s.tenant)
	_, err := s.service.Reject(s.ctx, s.agent, app.ID, models.StatusSubmitted)
	s.Require().NoError(err)

	result, err := s.service.Reset(s.ctx, s.agent, []id.ApplicationID{app.ID}, models.StatusAgentRejected)
	s.Require().NoError(err)
	s.True(dErrors.HasCode(result.Items[0].Err, dErrors.CodeNoReservation), "got %v", result.Items[0].Err)
	s.Equal(models.StatusAgentRejected, s.statusOf(app.ID))

	result, err = s.service.Reset(s.ctx, s.agent, []id.ApplicationID{app.ID}, models.StatusAgentRejected)
	s.Require().NoError(err)
	s.Require().NoError(result.Items[0].Err)
	s.Equal(models.StatusSubmitted, s.statusOf(app.ID))
}

// movingStore runs move once, right after the first ListByProperty returns,
// so a batch works from a snapshot that is already out of date.
type movingStore struct {
	store.Store
	once sync.Once
	move func()
}

func (m *movingStore) ListByProperty(ctx context.Context, propertyID id.PropertyID) ([]*models.Application, error) {
	apps, err := m.Store.ListByProperty(ctx, propertyID)
	if err == nil && m.move != nil {
		m.once.Do(m.move)
	}
	return apps, err
}

// snapshotService shares the suite's store but lets move change an
// application between the batch snapshot and its commits.
func (s *ServiceSuite) snapshotService(move func()) *Service {
	return New(&movingStore{Store: s.store, move: move},
		WithReservationChecker(s.reservations),
		WithListingGate(s.listings),
		WithEventBus(s.bus),
		WithMetrics(s.metrics),
	)
}

func (s *ServiceSuite) statusOf(appID id.ApplicationID) models.Status {
	app, err := s.store.FindByID(s.ctx, appID)
	s.Require().NoError(err)
	return app.Status
}

func (s *ServiceSuite) TestBatchSkipsItemsMovedAfterSnapshot() {
	s.reserved(s.tenant, s.tenant2)
	a1 := s.submit(s.tenant)
	a2 := s.submit(s.tenant2)
	for _, app := range []*models.Application{a1, a2} {
		_, err := s.service.Accept(s.ctx, s.agent, app.ID, models.StatusSubmitted)
		s.Require().NoError(err)
	}

	svc := s.snapshotService(func() {
		res, err := s.service.Reset(s.ctx, s.agent, []id.ApplicationID{a2.ID}, models.StatusAgentAccepted)
		s.Require().NoError(err)
		s.Require().Zero(res.Failed())
	})
	result, err := svc.SendToLandlord(s.ctx, s.agent, s.propertyID)
	s.Require().NoError(err)
	s.Require().Len(result.Items, 2)
	s.Equal(1, result.Succeeded())

	for _, item := range result.Items {
		switch item.ApplicationID {
		case a1.ID:
			s.NoError(item.Err)
			s.Equal(models.StatusSentToLandlord, item.To)
		case a2.ID:
			s.True(dErrors.HasCode(item.Err, dErrors.CodeStaleStatus), "got %v", item.Err)
		}
	}
	s.Equal(models.StatusSentToLandlord, s.statusOf(a1.ID))
	s.Equal(models.StatusSubmitted, s.statusOf(a2.ID))
}

func (s *ServiceSuite) TestFinalBatchSkipsItemsMovedAfterSnapshot() {
	s.reserved(s.tenant, s.tenant2)
	a1 := s.submit(s.tenant)
	a2 := s.submit(s.tenant2)
	for _, app := range []*models.Application{a1, a2} {
		_, err := s.service.Accept(s.ctx, s.agent, app.ID, models.StatusSubmitted)
		s.Require().NoError(err)
	}
	_, err := s.service.SendToLandlord(s.ctx, s.agent, s.propertyID)
	s.Require().NoError(err)
	for _, app := range []*models.Application{a1, a2} {
		_, err := s.service.Accept(s.ctx, s.landlord, app.ID, models.StatusSentToLandlord)
		s.Require().NoError(err)
	}

	svc := s.snapshotService(func() {
		res, err := s.service.Reset(s.ctx, s.landlord, []id.ApplicationID{a2.ID}, models.StatusLandlordApproved)
		s.Require().NoError(err)
		s.Require().Zero(res.Failed())
	})
	result, err := svc.SendToAgentFinal(s.ctx, s.landlord, s.propertyID)
	s.Require().NoError(err)
	s.Require().Len(result.Items, 2)
	s.Equal(1, result.Succeeded())
	s.Equal(1, result.Failed())

	for _, item := range result.Items {
		if item.ApplicationID == a2.ID {
			s.True(dErrors.HasCode(item.Err, dErrors.CodeStaleStatus), "got %v", item.Err)
			continue
		}
		s.Equal(models.StatusSentToAgentFinal, item.To)
	}
	s.Equal(models.StatusSentToAgentFinal, s.statusOf(a1.ID))
	s.Equal(models.StatusSentToLandlord, s.statusOf(a2.ID))
}

// Scenario E, tracker half: the listing half is covered by the listing controller.
func (s *ServiceSuite) TestLandlordApprovalAndSendFinal() {
	s.reserved(s.tenant)
	app := s.submit(s.tenant)
	_, err := s.service.Accept(s.ctx, s.agent, app.ID, models.StatusSubmitted)
	s.Require().NoError(err)
	_, err = s.service.SendToLandlord(s.ctx, s.agent, s.propertyID)
	s.Require().NoError(err)

	_, err = s.service.Accept(s.ctx, s.landlord, app.ID, models.StatusSentToLandlord)
	s.Require().NoError(err)

	_, err = s.service.SendToAgentFinal(s.ctx, s.agent, s.propertyID)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	result, err := s.service.SendToAgentFinal(s.ctx, s.landlord, s.propertyID)
	s.Require().NoError(err)
	s.Require().Len(result.Items, 1)
	s.Equal(models.StatusSentToAgentFinal, result.Items[0].To)

	final, err := s.service.Filtered(s.ctx, s.agent, s.propertyID, models.ClassFinalApproved)
	s.Require().NoError(err)
	s.Len(final, 1)

	last := s.bus.published[len(s.bus.published)-1].(models.ApplicationTransitioned)
	s.Equal(models.StatusSentToAgentFinal, last.To)
}

func (s *ServiceSuite) TestReset() {
	s.reserved(s.tenant, s.tenant2)
	app := s.submit(s.tenant)
	_, err := s.service.Accept(s.ctx, s.agent, app.ID, models.StatusSubmitted)
	s.Require().NoError(err)

	s.Run("stale", func() {
		result, err := s.service.Reset(s.ctx, s.agent, []id.ApplicationID{app.ID}, models.StatusSubmitted)
		s.Require().NoError(err)
		s.True(dErrors.HasCode(result.Items[0].Err, dErrors.CodeStaleStatus))
	})

	s.Run("wrong role", func() {
		result, err := s.service.Reset(s.ctx, s.landlord, []id.ApplicationID{app.ID}, models.StatusAgentAccepted)
		s.Require().NoError(err)
		s.True(dErrors.HasCode(result.Items[0].Err, dErrors.CodeUnauthorized))
	})

	s.Run("round trip", func() {
		result, err := s.service.Reset(s.ctx, s.agent, []id.ApplicationID{app.ID}, models.StatusAgentAccepted)
		s.Require().NoError(err)
		s.Require().NoError(result.Items[0].Err)
		s.Equal(models.StatusSubmitted, result.Items[0].To)

		again, err := s.service.Accept(s.ctx, s.agent, app.ID, models.StatusSubmitted)
		s.Require().NoError(err)
		s.Equal(models.StatusAgentAccepted, again.Status)
		s.Equal([]models.Status{models.StatusSubmitted}, again.StatusHistory)
	})

	s.Run("nothing to reset", func() {
		fresh := s.submit(s.tenant2)
		result, err := s.service.Reset(s.ctx, s.agent, []id.ApplicationID{fresh.ID}, models.StatusSubmitted)
		s.Require().NoError(err)
		s.True(dErrors.HasCode(result.Items[0].Err, dErrors.CodeInvalidTransition))
	})

	s.Run("validation", func() {
		_, err := s.service.Reset(s.ctx, s.agent, nil, models.StatusSubmitted)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		_, err = s.service.Reset(s.ctx, s.agent, []id.ApplicationID{app.ID}, models.Status("NOPE"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestResetRejectedBlockedByNewApplication() {
	s.reserved(s.tenant)
	first := s.submit(s.tenant)
	_, err := s.service.Reject(s.ctx, s.agent, first.ID, models.StatusSubmitted)
	s.Require().NoError(err)
	s.submit(s.tenant)

	result, err := s.service.Reset(s.ctx, s.agent, []id.ApplicationID{first.ID}, models.StatusAgentRejected)
	s.Require().NoError(err)
	s.True(dErrors.HasCode(result.Items[0].Err, dErrors.CodeDuplicateApplication))
}

func (s *ServiceSuite) TestReconcileFailureDoesNotFailTheCall() {
	s.reserved(s.tenant)
	s.bus.err = errors.New("listing store down")

	app, err := s.service.Submit(s.ctx, s.tenant, s.propertyID, s.tenant.AsTenant())
	s.Require().NoError(err)
	s.NotNil(app)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.ReconcileFailures))
}

func (s *ServiceSuite) TestReadsAreRoleScoped() {
	s.reserved(s.tenant)
	app := s.submit(s.tenant)

	_, err := s.service.Filtered(s.ctx, s.tenant, s.propertyID, models.ClassAll)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.service.Get(s.ctx, s.tenant2, app.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.HasApplied(s.ctx, s.tenant2, s.propertyID, s.tenant.AsTenant())
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	trail, err := s.auditStore.ListByProperty(s.ctx, s.propertyID)
	s.Require().NoError(err)
	s.Require().Len(trail, 1)
	s.Equal(audit.ActionApplicationSubmitted, trail[0].Action)
}
