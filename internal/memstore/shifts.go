package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"minangpos-backend/internal/domain"
)

func (s *Store) CreateShift(_ context.Context, shift domain.Shift) (*domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, open := s.openShiftByOwner[shift.OwnerID]; open {
		return nil, fmt.Errorf("%w: owner %d already has an open shift", domain.ErrConflict, shift.OwnerID)
	}
	if _, exists := s.shifts[shift.ID]; exists {
		return nil, fmt.Errorf("%w: shift %s already exists", domain.ErrConflict, shift.ID)
	}
	shift.IsClosed = false
	shift.ClosedAt = nil
	shift.Breakdown = nil
	s.shifts[shift.ID] = shift
	s.openShiftByOwner[shift.OwnerID] = shift.ID
	return cloneShift(shift), nil
}

func (s *Store) GetShift(_ context.Context, id string) (*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shift, ok := s.shifts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneShift(shift), nil
}

func (s *Store) GetOpenShift(_ context.Context, ownerID int64) (*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.openShiftByOwner[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneShift(s.shifts[id]), nil
}

func (s *Store) CloseShift(_ context.Context, in domain.ShiftClosing) (*domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift, ok := s.shifts[in.ShiftID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if shift.OwnerID != in.OwnerID {
		return nil, domain.ErrAuthorization
	}
	if shift.IsClosed {
		return nil, domain.ErrAlreadyClosed
	}
	if s.salesByShiftLocked(shift.ID) != in.Aggregates {
		return nil, domain.ErrStaleTotals
	}

	closedAt := in.ClosedAt
	shift.ClosedAt = &closedAt
	shift.Aggregates = in.Aggregates
	shift.CashPurchases = in.CashPurchases
	shift.ExpectedCash = in.ExpectedCash
	shift.PhysicalCash = in.PhysicalCash
	shift.Breakdown = append([]domain.DenominationLine(nil), in.Breakdown...)
	shift.Variance = in.Variance
	shift.Notes = in.Notes
	shift.IsClosed = true

	s.shifts[shift.ID] = shift
	delete(s.openShiftByOwner, shift.OwnerID)
	return cloneShift(shift), nil
}

func (s *Store) ListClosedShifts(_ context.Context, ownerID int64, from, to *time.Time, limit int) ([]domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []domain.Shift
	for _, shift := range s.shifts {
		if shift.OwnerID != ownerID || !shift.IsClosed || shift.ClosedAt == nil {
			continue
		}
		if from != nil && shift.ClosedAt.Before(*from) {
			continue
		}
		if to != nil && !shift.ClosedAt.Before(*to) {
			continue
		}
		items = append(items, *cloneShift(shift))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ClosedAt.After(*items[j].ClosedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func cloneShift(in domain.Shift) *domain.Shift {
	out := in
	if in.ClosedAt != nil {
		t := *in.ClosedAt
		out.ClosedAt = &t
	}
	if in.Breakdown != nil {
		out.Breakdown = append([]domain.DenominationLine(nil), in.Breakdown...)
	}
	return &out
}
