package store

import (
	"context"
	"sync"

	"lettings/internal/listing/models"
	id "lettings/pkg/domain"
	"lettings/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.Mutex
	listings map[id.PropertyID]models.Listing
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{listings: make(map[id.PropertyID]models.Listing)}
}

func (s *InMemoryStore) Create(_ context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.listings[listing.PropertyID]; exists {
		return sentinel.ErrConflict
	}
	s.listings[listing.PropertyID] = *listing
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, propertyID id.PropertyID) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[propertyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &l, nil
}

func (s *InMemoryStore) Execute(_ context.Context, propertyID id.PropertyID, mutate func(*models.Listing) error) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[propertyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := mutate(&l); err != nil {
		return nil, err
	}
	s.listings[propertyID] = l
	out := l
	return &out, nil
}
