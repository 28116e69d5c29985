package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"minangpos-backend/internal/domain"
)

func (s *Store) CreateTransaction(_ context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift, ok := s.shifts[tx.ShiftID]
	if !ok || shift.IsClosed || shift.OwnerID != tx.OwnerID {
		return nil, domain.ErrShiftNotOpen
	}

	prefix, n := s.nextNumber("ORD", tx.CreatedAt)
	s.nextTxID++
	tx.ID = s.nextTxID
	tx.Code = fmt.Sprintf("%s-%03d", prefix, n)
	tx.Status = domain.TransactionPaid
	tx.Items = domain.CloneItems(tx.Items)
	s.transactions = append(s.transactions, tx)

	out := tx
	out.Items = domain.CloneItems(tx.Items)
	return &out, nil
}

func (s *Store) ListTransactions(_ context.Context, ownerID int64, limit int) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []domain.Transaction
	for _, tx := range s.transactions {
		if tx.OwnerID != ownerID {
			continue
		}
		tx.Items = domain.CloneItems(tx.Items)
		items = append(items, tx)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) GetTransactionByCode(_ context.Context, code string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, tx := range s.transactions {
		if tx.Code == code {
			tx.Items = domain.CloneItems(tx.Items)
			return &tx, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) SalesByShift(_ context.Context, shiftID string) (domain.SalesAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.salesByShiftLocked(shiftID), nil
}

// salesByShiftLocked expects s.mu to be held.
func (s *Store) salesByShiftLocked(shiftID string) domain.SalesAggregate {
	var a domain.SalesAggregate
	for _, tx := range s.transactions {
		if tx.ShiftID != shiftID || tx.Status != domain.TransactionPaid {
			continue
		}
		var bucket *domain.MethodTotal
		switch tx.PaymentMethod {
		case domain.PayCash:
			bucket = &a.Cash
		case domain.PayCard:
			bucket = &a.Card
		case domain.PayCredit:
			bucket = &a.Credit
		case domain.PayFOC:
			bucket = &a.FOC
		default:
			continue
		}
		bucket.Count++
		bucket.Amount += tx.Amount
		a.Discounts += tx.Discount
	}
	return a
}

func (s *Store) CreatePurchase(_ context.Context, p domain.Purchase) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPurchaseID++
	p.ID = s.nextPurchaseID
	p.Date = dateOnly(p.Date)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.purchases = append(s.purchases, p)
	out := p
	return &out, nil
}

func (s *Store) ListPurchases(_ context.Context, from, to *time.Time, limit int) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []domain.Purchase
	for _, p := range s.purchases {
		if from != nil && p.Date.Before(dateOnly(*from)) {
			continue
		}
		if to != nil && !p.Date.Before(dateOnly(*to)) {
			continue
		}
		items = append(items, p)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date.Equal(items[j].Date) {
			return items[i].ID > items[j].ID
		}
		return items[i].Date.After(items[j].Date)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) CashPurchasesOn(_ context.Context, date time.Time) (domain.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := dateOnly(date)
	var total domain.Money
	for _, p := range s.purchases {
		if p.PaymentMethod == domain.PayCash && p.Date.Equal(day) {
			total += p.Amount
		}
	}
	return total, nil
}

// dateOnly keeps the calendar fields of t as UTC midnight, matching a DATE column.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
