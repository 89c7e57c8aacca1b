package store

import (
	"context"
	"slices"
	"sync"

	"lettings/internal/application/models"
	id "lettings/pkg/domain"
	"lettings/pkg/platform/sentinel"
)

type tenantKey struct {
	property id.PropertyID
	tenant   id.TenantID
}

// InMemoryStore keeps applications in maps guarded by one RWMutex. The
// active index mirrors the partial unique index of the Postgres schema.
type InMemoryStore struct {
	mu         sync.RWMutex
	apps       map[id.ApplicationID]*models.Application
	byProperty map[id.PropertyID][]id.ApplicationID
	active     map[tenantKey]id.ApplicationID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		apps:       make(map[id.ApplicationID]*models.Application),
		byProperty: make(map[id.PropertyID][]id.ApplicationID),
		active:     make(map[tenantKey]id.ApplicationID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tenantKey{app.PropertyID, app.TenantID}
	if app.Status.IsActive() {
		if _, taken := s.active[key]; taken {
			return sentinel.ErrAlreadyUsed
		}
		s.active[key] = app.ID
	}
	s.apps[app.ID] = app.Clone()
	s.byProperty[app.PropertyID] = append(s.byProperty[app.PropertyID], app.ID)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, applicationID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[applicationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return app.Clone(), nil
}

func (s *InMemoryStore) FindActive(_ context.Context, propertyID id.PropertyID, tenantID id.TenantID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	appID, ok := s.active[tenantKey{propertyID, tenantID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.apps[appID].Clone(), nil
}

func (s *InMemoryStore) ListByProperty(_ context.Context, propertyID id.PropertyID) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.byProperty[propertyID]
	out := make([]*models.Application, 0, len(ids))
	for _, appID := range ids {
		out = append(out, s.apps[appID].Clone())
	}
	slices.SortStableFunc(out, func(a, b *models.Application) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) CountByStatus(_ context.Context, propertyID id.PropertyID) (map[models.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.Status]int)
	for _, appID := range s.byProperty[propertyID] {
		counts[s.apps[appID].Status]++
	}
	return counts, nil
}

func (s *InMemoryStore) Execute(_ context.Context, applicationID id.ApplicationID, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.apps[applicationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	app := stored.Clone()
	if err := validate(app); err != nil {
		return nil, err
	}
	mutate(app)

	key := tenantKey{app.PropertyID, app.TenantID}
	wasActive, isActive := stored.Status.IsActive(), app.Status.IsActive()
	switch {
	case isActive && !wasActive:
		if _, taken := s.active[key]; taken {
			return nil, sentinel.ErrAlreadyUsed
		}
		s.active[key] = app.ID
	case wasActive && !isActive:
		delete(s.active, key)
	}
	s.apps[applicationID] = app
	return app.Clone(), nil
}
