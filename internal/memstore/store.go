// Package memstore keeps every POS record in process memory. It backs tests
// and the STORE_BACKEND=memory mode.
package memstore

import (
	"context"
	"sync"
	"time"

	"minangpos-backend/internal/domain"
)

type Store struct {
	mu sync.RWMutex

	users      map[int64]domain.User
	nextUserID int64

	settings domain.Settings
	products []domain.Product

	shifts           map[string]domain.Shift
	openShiftByOwner map[int64]string

	heldOrders map[int64]domain.HeldOrder
	nextHeldID int64

	transactions []domain.Transaction
	nextTxID     int64

	purchases      []domain.Purchase
	nextPurchaseID int64

	seq map[string]int64
}

// New returns a store seeded with the default menu and settings.
func New() *Store {
	s := &Store{
		users:            make(map[int64]domain.User),
		shifts:           make(map[string]domain.Shift),
		openShiftByOwner: make(map[int64]string),
		heldOrders:       make(map[int64]domain.HeldOrder),
		seq:              make(map[string]int64),
		settings: domain.Settings{
			PaperSize:    "80mm",
			CurrencyCode: "QAR",
			UpdatedAt:    time.Now().UTC(),
		},
	}
	for i, p := range domain.DefaultProducts() {
		p.ID = int64(i + 1)
		s.products = append(s.products, p)
	}
	return s
}

func (s *Store) Health(context.Context) error { return nil }

// nextNumber must be called with mu held.
func (s *Store) nextNumber(prefix string, at time.Time) (string, int64) {
	day := at.UTC().Format("20060102")
	key := prefix + "|" + day
	s.seq[key]++
	return prefix + "-" + day, s.seq[key]
}
