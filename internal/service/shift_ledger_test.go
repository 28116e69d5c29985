package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/memstore"
	"github.com/google/uuid"
)

const owner int64 = 7

// openWithSales opens a shift with 200.00, sells 150.00 in cash and records a
// 50.00 cash purchase on the same day.
func openWithSales(t *testing.T, f fixture) *domain.Shift {
	t.Helper()
	ctx := context.Background()
	shift, err := f.ledger.OpenShift(ctx, owner, qar(200))
	if err != nil {
		t.Fatalf("open shift: %v", err)
	}
	if _, err := f.sales.Checkout(ctx, owner, CheckoutInput{Draft: singleItemDraft(qar(150)), PaymentMethod: domain.PayCash}); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	day := shift.BusinessDate(time.UTC)
	if _, err := f.purchases.Record(ctx, owner, PurchaseInput{Supplier: "Pasar Wakra", Amount: qar(50), PaymentMethod: domain.PayCash, Date: &day}); err != nil {
		t.Fatalf("record purchase: %v", err)
	}
	return shift
}

func TestComputeExpectedCash(t *testing.T) {
	f := newFixture()
	shift := openWithSales(t, f)

	got, err := f.ledger.ComputeExpectedCash(context.Background(), *shift)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if got.Expected != qar(300) {
		t.Fatalf("expected cash = %s, want 300.00", got.Expected.Format(2))
	}
	if got.Aggregates.Cash.Amount != qar(150) || got.Aggregates.Cash.Count != 1 {
		t.Fatalf("cash aggregate = %+v", got.Aggregates.Cash)
	}
	if got.CashPurchases != qar(50) {
		t.Fatalf("cash purchases = %d", got.CashPurchases)
	}

	again, err := f.ledger.ComputeExpectedCash(context.Background(), *shift)
	if err != nil {
		t.Fatalf("compute again: %v", err)
	}
	if again != got {
		t.Fatalf("second call differs: %+v vs %+v", again, got)
	}
}

func TestComputeExpectedCashIgnoresNonCashAndOtherDays(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shift := openWithSales(t, f)

	if _, err := f.sales.Checkout(ctx, owner, CheckoutInput{Draft: singleItemDraft(qar(40)), PaymentMethod: domain.PayCard}); err != nil {
		t.Fatalf("card sale: %v", err)
	}
	yesterday := shift.BusinessDate(time.UTC).AddDate(0, 0, -1)
	if _, err := f.purchases.Record(ctx, owner, PurchaseInput{Supplier: "Old", Amount: qar(70), PaymentMethod: domain.PayCash, Date: &yesterday}); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	today := shift.BusinessDate(time.UTC)
	if _, err := f.purchases.Record(ctx, owner, PurchaseInput{Supplier: "On credit", Amount: qar(90), PaymentMethod: domain.PayCredit, Date: &today}); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	got, err := f.ledger.ComputeExpectedCash(ctx, *shift)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if got.Expected != qar(300) {
		t.Fatalf("expected cash = %s, want 300.00", got.Expected.Format(2))
	}
	if got.Aggregates.Card.Amount != qar(40) {
		t.Fatalf("card aggregate = %+v", got.Aggregates.Card)
	}
}

func TestCloseShift(t *testing.T) {
	tests := []struct {
		name         string
		counts       map[domain.Money]int
		wantPhysical domain.Money
		wantVariance domain.Money
	}{
		{
			name:         "balanced drawer",
			counts:       map[domain.Money]int{qar(100): 3, qar(10): 0},
			wantPhysical: qar(300),
			wantVariance: 0,
		},
		{
			name:         "shortage",
			counts:       map[domain.Money]int{qar(100): 2, qar(50): 1, qar(10): 3},
			wantPhysical: qar(280),
			wantVariance: -qar(20),
		},
		{
			name:         "overage with coins",
			counts:       map[domain.Money]int{qar(100): 3, 50: 1, 25: 2},
			wantPhysical: qar(301),
			wantVariance: qar(1),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			shift := openWithSales(t, f)

			summary, err := f.ledger.CloseShift(context.Background(), owner, shift.ID, tc.counts, "end of day")
			if err != nil {
				t.Fatalf("close: %v", err)
			}
			if summary.PhysicalCash != tc.wantPhysical {
				t.Fatalf("physical = %s, want %s", summary.PhysicalCash.Format(2), tc.wantPhysical.Format(2))
			}
			if summary.Variance != tc.wantVariance {
				t.Fatalf("variance = %s, want %s", summary.Variance.Format(2), tc.wantVariance.Format(2))
			}
			if summary.ExpectedCash != qar(300) {
				t.Fatalf("expected = %s", summary.ExpectedCash.Format(2))
			}
			if !summary.IsClosed || summary.ClosedAt == nil {
				t.Fatal("summary not marked closed")
			}
			if summary.Notes != "end of day" {
				t.Fatalf("notes = %q", summary.Notes)
			}

			var sum domain.Money
			if len(summary.Breakdown) != len(testDenominations) {
				t.Fatalf("breakdown has %d lines, want %d", len(summary.Breakdown), len(testDenominations))
			}
			for i, line := range summary.Breakdown {
				if line.Denomination != testDenominations[i] {
					t.Fatalf("line %d denomination %d, want %d", i, line.Denomination, testDenominations[i])
				}
				if line.Subtotal != line.Denomination.Mul(int64(line.Count)) {
					t.Fatalf("line %d subtotal %d", i, line.Subtotal)
				}
				sum += line.Subtotal
			}
			if sum != summary.PhysicalCash {
				t.Fatalf("breakdown sums to %d, physical is %d", sum, summary.PhysicalCash)
			}
			if summary.Variance != summary.PhysicalCash-summary.ExpectedCash {
				t.Fatal("variance is not physical - expected")
			}

			stored, err := f.store.GetShift(context.Background(), shift.ID)
			if err != nil {
				t.Fatalf("reload: %v", err)
			}
			if !stored.IsClosed || stored.Variance != tc.wantVariance || stored.OpeningBalance != qar(200) {
				t.Fatalf("stored shift = %+v", stored)
			}
		})
	}
}

func TestCloseShiftRejectsBadCountsWithoutChanges(t *testing.T) {
	tests := []struct {
		name   string
		counts map[domain.Money]int
	}{
		{name: "negative count", counts: map[domain.Money]int{qar(100): 3, qar(10): -1}},
		{name: "unknown denomination", counts: map[domain.Money]int{qar(20): 1}},
		{name: "count overflows drawer total", counts: map[domain.Money]int{qar(500): math.MaxInt64/50000 + 1}},
		{name: "count above cap", counts: map[domain.Money]int{25: MaxDenominationCount + 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			shift := openWithSales(t, f)

			_, err := f.ledger.CloseShift(context.Background(), owner, shift.ID, tc.counts, "")
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			stored, err := f.store.GetShift(context.Background(), shift.ID)
			if err != nil {
				t.Fatalf("reload: %v", err)
			}
			if stored.IsClosed || stored.ClosedAt != nil || stored.PhysicalCash != 0 || stored.ExpectedCash != 0 || stored.Breakdown != nil {
				t.Fatalf("shift modified by failed close: %+v", stored)
			}
		})
	}
}

func TestCloseShiftRecomputesAggregates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shift := openWithSales(t, f)

	before, err := f.ledger.ComputeExpectedCash(ctx, *shift)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if _, err := f.sales.Checkout(ctx, owner, CheckoutInput{Draft: singleItemDraft(qar(25)), PaymentMethod: domain.PayCash}); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	summary, err := f.ledger.CloseShift(ctx, owner, shift.ID, map[domain.Money]int{qar(100): 3}, "")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if summary.ExpectedCash != before.Expected+qar(25) {
		t.Fatalf("expected = %s, want %s", summary.ExpectedCash.Format(2), (before.Expected + qar(25)).Format(2))
	}
	if summary.Aggregates.Cash.Count != 2 {
		t.Fatalf("cash count = %d", summary.Aggregates.Cash.Count)
	}
	if summary.Variance != -qar(25) {
		t.Fatalf("variance = %s", summary.Variance.Format(2))
	}
}

// saleDuringClose books one extra cash sale right before the first CloseShift
// reaches the store, as a concurrent checkout would.
type saleDuringClose struct {
	*memstore.Store
	sale  domain.Transaction
	fired bool
}

func (s *saleDuringClose) CloseShift(ctx context.Context, in domain.ShiftClosing) (*domain.Shift, error) {
	if !s.fired {
		s.fired = true
		if _, err := s.Store.CreateTransaction(ctx, s.sale); err != nil {
			return nil, err
		}
	}
	return s.Store.CloseShift(ctx, in)
}

func TestCloseShiftRetriesWhenSaleLandsMidClose(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shift := openWithSales(t, f)

	racing := &saleDuringClose{Store: f.store, sale: domain.Transaction{
		ShiftID: shift.ID, OwnerID: owner, PaymentMethod: domain.PayCash,
		Subtotal: qar(40), Amount: qar(40), CreatedAt: f.clock.Now(),
	}}
	f.ledger.Shifts = racing

	summary, err := f.ledger.CloseShift(ctx, owner, shift.ID, map[domain.Money]int{qar(100): 3}, "")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if summary.Aggregates.Cash.Count != 2 || summary.Aggregates.Cash.Amount != qar(190) {
		t.Fatalf("aggregates = %+v", summary.Aggregates)
	}
	if summary.ExpectedCash != qar(340) || summary.Variance != -qar(40) {
		t.Fatalf("expected %s variance %s", summary.ExpectedCash.Format(2), summary.Variance.Format(2))
	}
}

func TestSaleRejectedOnClosedShift(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shift := openWithSales(t, f)

	summary, err := f.ledger.CloseShift(ctx, owner, shift.ID, map[domain.Money]int{qar(100): 3}, "")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	_, err = f.store.CreateTransaction(ctx, domain.Transaction{
		ShiftID: shift.ID, OwnerID: owner, PaymentMethod: domain.PayCash,
		Subtotal: qar(10), Amount: qar(10), CreatedAt: f.clock.Now(),
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("sale on closed shift err = %v, want ErrConflict", err)
	}
	agg, err := f.store.SalesByShift(ctx, shift.ID)
	if err != nil {
		t.Fatal(err)
	}
	if agg != summary.Aggregates {
		t.Fatalf("aggregate after close %+v differs from snapshot %+v", agg, summary.Aggregates)
	}
	if _, err := f.sales.Checkout(ctx, owner, CheckoutInput{Draft: singleItemDraft(qar(10)), PaymentMethod: domain.PayCash}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("checkout without open shift err = %v", err)
	}
}

func TestCloseShiftErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	shift := openWithSales(t, f)
	counts := map[domain.Money]int{qar(100): 3}

	if _, err := f.ledger.CloseShift(ctx, owner+1, shift.ID, counts, ""); !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("foreign owner err = %v", err)
	}
	if _, err := f.ledger.CloseShift(ctx, owner, uuid.NewString(), counts, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown shift err = %v", err)
	}
	if _, err := f.ledger.CloseShift(ctx, owner, "not-a-uuid", counts, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("malformed id err = %v", err)
	}
	if _, err := f.ledger.CloseShift(ctx, owner, shift.ID, counts, ""); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := f.ledger.CloseShift(ctx, owner, shift.ID, counts, ""); !errors.Is(err, domain.ErrAlreadyClosed) {
		t.Fatalf("second close err = %v", err)
	}
}

func TestOpenShiftOnePerOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.ledger.OpenShift(ctx, owner, qar(200))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.ledger.OpenShift(ctx, owner, qar(100)); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second open err = %v, want ErrConflict", err)
	}
	if _, err := f.ledger.OpenShift(ctx, owner+1, qar(100)); err != nil {
		t.Fatalf("other owner open: %v", err)
	}
	if _, err := f.ledger.OpenShift(ctx, owner+2, -1); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("negative balance err = %v", err)
	}

	if _, err := f.ledger.CloseShift(ctx, owner, first.ID, nil, ""); err != nil {
		t.Fatalf("close: %v", err)
	}
	next, err := f.ledger.OpenShift(ctx, owner, qar(150))
	if err != nil {
		t.Fatalf("reopen after close: %v", err)
	}
	if next.ID == first.ID {
		t.Fatal("reopened shift reused id")
	}
}

func TestOpenShiftConcurrent(t *testing.T) {
	f := newFixture()
	const workers = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.OpenShift(context.Background(), owner, qar(100))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || conflicts != workers-1 {
		t.Fatalf("successes=%d conflicts=%d", successes, conflicts)
	}
}

func TestClosedShifts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s, err := f.ledger.OpenShift(ctx, owner, qar(100))
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if _, err := f.ledger.CloseShift(ctx, owner, s.ID, map[domain.Money]int{qar(100): 1}, ""); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
	if _, err := f.ledger.OpenShift(ctx, owner, qar(100)); err != nil {
		t.Fatalf("open trailing shift: %v", err)
	}

	items, err := f.ledger.ClosedShifts(ctx, owner, nil, nil, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d closed shifts, want 3", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].ClosedAt.After(*items[i-1].ClosedAt) {
			t.Fatal("closed shifts not newest first")
		}
	}
	if want := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC); !items[0].BusinessDate.Equal(want) {
		t.Fatalf("business date = %v", items[0].BusinessDate)
	}
}
