package memstore

import (
	"context"
	"fmt"
	"sort"

	"minangpos-backend/internal/domain"
)

func (s *Store) CreateHeldOrder(_ context.Context, h domain.HeldOrder) (*domain.HeldOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix, n := s.nextNumber("HLD", h.HeldAt)
	s.nextHeldID++
	h.ID = s.nextHeldID
	h.OrderNumber = fmt.Sprintf("%s-%03d", prefix, n)
	h.LineItems = domain.CloneItems(h.LineItems)
	s.heldOrders[h.ID] = h

	out := cloneHeld(h)
	return &out, nil
}

func (s *Store) ListHeldOrders(_ context.Context, ownerID int64) ([]domain.HeldOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []domain.HeldOrder
	for _, h := range s.heldOrders {
		if h.OwnerID != ownerID {
			continue
		}
		items = append(items, cloneHeld(h))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].HeldAt.Equal(items[j].HeldAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].HeldAt.After(items[j].HeldAt)
	})
	return items, nil
}

func (s *Store) PopHeldOrder(_ context.Context, id, ownerID int64) (*domain.HeldOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.heldOrders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if h.OwnerID != ownerID {
		return nil, domain.ErrAuthorization
	}
	delete(s.heldOrders, id)
	out := cloneHeld(h)
	return &out, nil
}

func (s *Store) DeleteHeldOrder(_ context.Context, id, ownerID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.heldOrders[id]
	if !ok || h.OwnerID != ownerID {
		return false, nil
	}
	delete(s.heldOrders, id)
	return true, nil
}

func cloneHeld(h domain.HeldOrder) domain.HeldOrder {
	h.LineItems = domain.CloneItems(h.LineItems)
	return h
}
