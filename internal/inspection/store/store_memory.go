package store

import (
	"context"
	"slices"
	"sync"

	"lettings/internal/inspection/models"
	id "lettings/pkg/domain"
	"lettings/pkg/platform/sentinel"
	psync "lettings/pkg/platform/sync"
)

// InMemoryStore keeps one book per property and serialises work per property
// with a sharded mutex.
type InMemoryStore struct {
	mu    sync.RWMutex
	books map[id.PropertyID]*book
	locks *psync.ShardedMutex
}

type book struct {
	slots     []models.Slot
	byTenant  map[id.TenantID]models.Reservation
	byBooking map[id.BookingID]id.TenantID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		books: make(map[id.PropertyID]*book),
		locks: psync.NewShardedMutex(),
	}
}

func (s *InMemoryStore) book(propertyID id.PropertyID, create bool) *book {
	s.mu.RLock()
	b, ok := s.books[propertyID]
	s.mu.RUnlock()
	if ok || !create {
		return b
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok = s.books[propertyID]; ok {
		return b
	}
	b = &book{
		byTenant:  make(map[id.TenantID]models.Reservation),
		byBooking: make(map[id.BookingID]id.TenantID),
	}
	s.books[propertyID] = b
	return b
}

func (s *InMemoryStore) ConfigureSlots(_ context.Context, propertyID id.PropertyID, windows []models.Window) ([]models.Slot, error) {
	key := propertyID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	b := s.book(propertyID, true)
	for _, slot := range b.slots[min(len(windows), len(b.slots)):] {
		if len(slot.ReservedTenantIDs) > 0 {
			return nil, sentinel.ErrConflict
		}
	}

	next := make([]models.Slot, len(windows))
	for i, w := range windows {
		slot := models.Slot{
			InspectionID: id.NewInspectionID(),
			PropertyID:   propertyID,
			Index:        i,
			Start:        w.Start,
			End:          w.End,
		}
		if i < len(b.slots) {
			slot.InspectionID = b.slots[i].InspectionID
			slot.ReservedTenantIDs = b.slots[i].ReservedTenantIDs
		}
		next[i] = slot
	}
	b.slots = next
	return cloneSlots(next), nil
}

func (s *InMemoryStore) ListSlots(_ context.Context, propertyID id.PropertyID) ([]models.Slot, error) {
	key := propertyID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	b := s.book(propertyID, false)
	if b == nil {
		return []models.Slot{}, nil
	}
	return cloneSlots(b.slots), nil
}

func (s *InMemoryStore) Reserve(_ context.Context, r models.Reservation) (models.ReserveResult, error) {
	key := r.PropertyID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	b := s.book(r.PropertyID, false)
	if b == nil || r.InspectionIndex < 0 || r.InspectionIndex >= len(b.slots) {
		return models.ReserveResult{}, sentinel.ErrNotFound
	}
	if existing, ok := b.byTenant[r.TenantID]; ok {
		if existing.InspectionIndex == r.InspectionIndex {
			return models.ReserveResult{Reservation: existing}, nil
		}
		return models.ReserveResult{Reservation: existing}, sentinel.ErrAlreadyUsed
	}

	slot := &b.slots[r.InspectionIndex]
	slot.ReservedTenantIDs = append(slot.ReservedTenantIDs, r.TenantID)
	b.byTenant[r.TenantID] = r
	b.byBooking[r.BookingID] = r.TenantID
	return models.ReserveResult{Reservation: r, Created: true}, nil
}

func (s *InMemoryStore) FindReservation(_ context.Context, propertyID id.PropertyID, tenantID id.TenantID) (*models.Reservation, error) {
	key := propertyID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	b := s.book(propertyID, false)
	if b == nil {
		return nil, sentinel.ErrNotFound
	}
	r, ok := b.byTenant[tenantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

func (s *InMemoryStore) FindBooking(_ context.Context, propertyID id.PropertyID, bookingID id.BookingID) (*models.Reservation, error) {
	key := propertyID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	b := s.book(propertyID, false)
	if b == nil {
		return nil, sentinel.ErrNotFound
	}
	tenantID, ok := b.byBooking[bookingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	r := b.byTenant[tenantID]
	return &r, nil
}

func (s *InMemoryStore) Cancel(_ context.Context, r models.Reservation) error {
	key := r.PropertyID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	b := s.book(r.PropertyID, false)
	if b == nil {
		return sentinel.ErrNotFound
	}
	current, ok := b.byTenant[r.TenantID]
	if !ok || current.BookingID != r.BookingID || current.InspectionIndex != r.InspectionIndex {
		return sentinel.ErrNotFound
	}

	slot := &b.slots[r.InspectionIndex]
	slot.ReservedTenantIDs = slices.DeleteFunc(slot.ReservedTenantIDs, func(t id.TenantID) bool {
		return t == r.TenantID
	})
	delete(b.byTenant, r.TenantID)
	delete(b.byBooking, r.BookingID)
	return nil
}

func cloneSlots(in []models.Slot) []models.Slot {
	out := make([]models.Slot, len(in))
	for i, slot := range in {
		slot.ReservedTenantIDs = slices.Clone(slot.ReservedTenantIDs)
		slot.SortTenants()
		out[i] = slot
	}
	return out
}
