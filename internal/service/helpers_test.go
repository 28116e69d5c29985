package service

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/memstore"
)

// qar converts whole riyals to minor units.
func qar(v int64) domain.Money { return domain.Money(v * 100) }

var testDenominations = []domain.Money{qar(500), qar(100), qar(50), qar(10), qar(5), qar(1), 50, 25}

// stepClock returns a time one minute later on every call.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	store     *memstore.Store
	clock     *stepClock
	ledger    ShiftLedger
	held      HeldOrderService
	sales     SalesService
	purchases PurchaseService
}

func newFixture() fixture {
	store := memstore.New()
	clock := newStepClock()
	logger := discardLogger()
	return fixture{
		store: store,
		clock: clock,
		ledger: ShiftLedger{
			Shifts:        store,
			Sales:         store,
			Purchases:     store,
			Denominations: testDenominations,
			Location:      time.UTC,
			Logger:        logger,
			Now:           clock.Now,
		},
		held: HeldOrderService{
			Store:  store,
			Logger: logger,
			Now:    clock.Now,
		},
		sales: SalesService{
			Shifts:       store,
			Transactions: store,
			Logger:       logger,
			Now:          clock.Now,
		},
		purchases: PurchaseService{
			Store:    store,
			Location: time.UTC,
			Logger:   logger,
			Now:      clock.Now,
		},
	}
}

func singleItemDraft(price domain.Money) domain.OrderDraft {
	return domain.OrderDraft{
		OrderType: domain.OrderTakeAway,
		LineItems: []domain.LineItem{{Name: "Nasi Padang", Quantity: 1, UnitPrice: price}},
	}
}
