package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lettings/internal/application/models"
	"lettings/internal/application/store"
	id "lettings/pkg/domain"
	dErrors "lettings/pkg/domain-errors"
	"lettings/pkg/platform/sentinel"
	"lettings/pkg/testutil"
)

type StoreContractSuite struct {
	suite.Suite
	newStore   func() store.Store
	store      store.Store
	ctx        context.Context
	propertyID id.PropertyID
	now        time.Time
}

func TestInMemoryStore(t *testing.T) {
	suite.Run(t, &StoreContractSuite{newStore: func() store.Store { return store.NewInMemory() }})
}

func (s *StoreContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore()
	s.propertyID = id.PropertyID(uuid.New())
	s.now = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StoreContractSuite) create(tenantID id.TenantID, offset time.Duration) *models.Application {
	app := models.NewApplication(s.propertyID, tenantID, s.now.Add(offset))
	s.Require().NoError(s.store.Create(s.ctx, app))
	return app
}

func (s *StoreContractSuite) advance(appID id.ApplicationID, to models.Status) (*models.Application, error) {
	return s.store.Execute(s.ctx, appID,
		func(*models.Application) error { return nil },
		func(a *models.Application) {
			a.StatusHistory = append(a.StatusHistory, a.Status)
			a.Status = to
		})
}

func (s *StoreContractSuite) TestCreateAndFind() {
	tenant := id.TenantID(uuid.New())
	app := s.create(tenant, 0)

	found, err := s.store.FindByID(s.ctx, app.ID)
	s.Require().NoError(err)
	s.Equal(app, found)

	active, err := s.store.FindActive(s.ctx, s.propertyID, tenant)
	s.Require().NoError(err)
	s.Equal(app.ID, active.ID)

	_, err = s.store.FindByID(s.ctx, id.NewApplicationID())
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindActive(s.ctx, s.propertyID, id.TenantID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreContractSuite) TestOneActivePerTenant() {
	tenant := id.TenantID(uuid.New())
	first := s.create(tenant, 0)

	second := models.NewApplication(s.propertyID, tenant, s.now.Add(time.Minute))
	s.ErrorIs(s.store.Create(s.ctx, second), sentinel.ErrAlreadyUsed)

	s.Run("rejection frees the slot", func() {
		_, err := s.advance(first.ID, models.StatusAgentRejected)
		s.Require().NoError(err)
		s.Require().NoError(s.store.Create(s.ctx, second))
	})

	s.Run("reviving the rejected one is blocked", func() {
		_, err := s.store.Execute(s.ctx, first.ID,
			func(*models.Application) error { return nil },
			func(a *models.Application) { a.Reset(s.now) })
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)

		stored, err := s.store.FindByID(s.ctx, first.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusAgentRejected, stored.Status)
	})
}

func (s *StoreContractSuite) TestListOrderedByCreatedAt() {
	late := s.create(id.TenantID(uuid.New()), 2*time.Hour)
	early := s.create(id.TenantID(uuid.New()), time.Hour)
	earliest := s.create(id.TenantID(uuid.New()), 0)

	apps, err := s.store.ListByProperty(s.ctx, s.propertyID)
	s.Require().NoError(err)
	s.Require().Len(apps, 3)
	s.Equal([]id.ApplicationID{earliest.ID, early.ID, late.ID}, []id.ApplicationID{apps[0].ID, apps[1].ID, apps[2].ID})

	other, err := s.store.ListByProperty(s.ctx, id.PropertyID(uuid.New()))
	s.Require().NoError(err)
	s.Empty(other)
}

func (s *StoreContractSuite) TestCountByStatus() {
	a := s.create(id.TenantID(uuid.New()), 0)
	s.create(id.TenantID(uuid.New()), time.Minute)
	_, err := s.advance(a.ID, models.StatusAgentAccepted)
	s.Require().NoError(err)

	counts, err := s.store.CountByStatus(s.ctx, s.propertyID)
	s.Require().NoError(err)
	s.Equal(map[models.Status]int{models.StatusSubmitted: 1, models.StatusAgentAccepted: 1}, counts)
}

func (s *StoreContractSuite) TestExecute() {
	app := s.create(id.TenantID(uuid.New()), 0)

	s.Run("validate error passes through and nothing changes", func() {
		stale := dErrors.New(dErrors.CodeStaleStatus, "changed")
		_, err := s.store.Execute(s.ctx, app.ID,
			func(*models.Application) error { return stale },
			func(a *models.Application) { a.Status = models.StatusAgentAccepted })
		s.True(errors.Is(err, stale))

		stored, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusSubmitted, stored.Status)
	})

	s.Run("history persists", func() {
		updated, err := s.advance(app.ID, models.StatusAgentAccepted)
		s.Require().NoError(err)
		s.Equal([]models.Status{models.StatusSubmitted}, updated.StatusHistory)

		stored, err := s.store.FindByID(s.ctx, app.ID)
		s.Require().NoError(err)
		s.Equal(updated.StatusHistory, stored.StatusHistory)
	})

	s.Run("missing", func() {
		_, err := s.advance(id.NewApplicationID(), models.StatusAgentAccepted)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestConcurrentCompareAndSet has many writers race the same expected status:
// exactly one wins.
func (s *StoreContractSuite) TestConcurrentCompareAndSet() {
	app := s.create(id.TenantID(uuid.New()), 0)
	stale := dErrors.New(dErrors.CodeStaleStatus, "changed")

	result := testutil.RunConcurrent(16, func(int) error {
		_, err := s.store.Execute(s.ctx, app.ID,
			func(a *models.Application) error {
				if a.Status != models.StatusSubmitted {
					return stale
				}
				return nil
			},
			func(a *models.Application) {
				a.StatusHistory = append(a.StatusHistory, a.Status)
				a.Status = models.StatusAgentAccepted
			})
		return err
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(15), result.Conflicts)
}

func (s *StoreContractSuite) TestConcurrentCreateOneActive() {
	tenant := id.TenantID(uuid.New())
	result := testutil.RunConcurrent(10, func(idx int) error {
		return s.store.Create(s.ctx, models.NewApplication(s.propertyID, tenant, s.now.Add(time.Duration(idx)*time.Second)))
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(9), result.Conflicts)
}
