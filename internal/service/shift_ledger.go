package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/ports"
	"github.com/google/uuid"
)

const closeAttempts = 3

// MaxDenominationCount caps a single drawer count line.
const MaxDenominationCount = 1000000

// ShiftLedger owns the open -> close lifecycle of a cashier shift and the cash
// reconciliation done at close.
type ShiftLedger struct {
	Shifts        ports.ShiftStore
	Sales         ports.SalesAggregator
	Purchases     ports.PurchaseAggregator
	Denominations []domain.Money
	Location      *time.Location
	Logger        *slog.Logger
	Now           func() time.Time
}

// ExpectedCash is the drawer figure of a shift at one point in time.
type ExpectedCash struct {
	ShiftID        string
	BusinessDate   time.Time
	OpeningBalance domain.Money
	Aggregates     domain.SalesAggregate
	CashPurchases  domain.Money
	Expected       domain.Money
}

func (l ShiftLedger) OpenShift(ctx context.Context, ownerID int64, openingBalance domain.Money) (*domain.Shift, error) {
	if openingBalance < 0 {
		return nil, fmt.Errorf("%w: opening balance must not be negative", domain.ErrValidation)
	}
	shift, err := l.Shifts.CreateShift(ctx, domain.Shift{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		OpenedAt:       l.now(),
		OpeningBalance: openingBalance,
	})
	if err != nil {
		return nil, err
	}
	shiftsOpened.Inc()
	l.logger().Info("shift opened", "owner_id", ownerID, "shift_id", shift.ID, "opening_balance", int64(openingBalance))
	return shift, nil
}

func (l ShiftLedger) CurrentShift(ctx context.Context, ownerID int64) (*domain.Shift, error) {
	return l.Shifts.GetOpenShift(ctx, ownerID)
}

// GetShift loads a shift and checks that ownerID opened it.
func (l ShiftLedger) GetShift(ctx context.Context, ownerID int64, shiftID string) (*domain.Shift, error) {
	if _, err := uuid.Parse(shiftID); err != nil {
		return nil, fmt.Errorf("%w: shift %q", domain.ErrNotFound, shiftID)
	}
	shift, err := l.Shifts.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.OwnerID != ownerID {
		return nil, domain.ErrAuthorization
	}
	return shift, nil
}

// ComputeExpectedCash reads the current aggregates for the shift and returns
// opening balance + cash sales - cash purchases. It writes nothing.
func (l ShiftLedger) ComputeExpectedCash(ctx context.Context, shift domain.Shift) (ExpectedCash, error) {
	agg, err := l.Sales.SalesByShift(ctx, shift.ID)
	if err != nil {
		return ExpectedCash{}, fmt.Errorf("sales aggregate: %w", err)
	}
	date := shift.BusinessDate(l.Location)
	purchases, err := l.Purchases.CashPurchasesOn(ctx, date)
	if err != nil {
		return ExpectedCash{}, fmt.Errorf("purchase aggregate: %w", err)
	}
	return ExpectedCash{
		ShiftID:        shift.ID,
		BusinessDate:   date,
		OpeningBalance: shift.OpeningBalance,
		Aggregates:     agg,
		CashPurchases:  purchases,
		Expected:       shift.OpeningBalance + agg.Cash.Amount - purchases,
	}, nil
}

// CloseShift reconciles the counted drawer against fresh aggregates and
// closes the shift. Counts are keyed by denomination in minor units; a
// configured denomination missing from counts is taken as zero.
func (l ShiftLedger) CloseShift(ctx context.Context, ownerID int64, shiftID string, counts map[domain.Money]int, notes string) (*domain.ClosedShiftSummary, error) {
	shift, err := l.GetShift(ctx, ownerID, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.IsClosed {
		return nil, domain.ErrAlreadyClosed
	}

	breakdown, physical, err := l.countDrawer(counts)
	if err != nil {
		return nil, err
	}

	var (
		expected ExpectedCash
		closed   *domain.Shift
	)
	for attempt := 1; ; attempt++ {
		expected, err = l.ComputeExpectedCash(ctx, *shift)
		if err != nil {
			return nil, err
		}
		variance, err := physical.AddChecked(-expected.Expected)
		if err != nil {
			return nil, err
		}
		closed, err = l.Shifts.CloseShift(ctx, domain.ShiftClosing{
			ShiftID:       shift.ID,
			OwnerID:       ownerID,
			ClosedAt:      l.now(),
			Aggregates:    expected.Aggregates,
			CashPurchases: expected.CashPurchases,
			ExpectedCash:  expected.Expected,
			PhysicalCash:  physical,
			Breakdown:     breakdown,
			Variance:      variance,
			Notes:         notes,
		})
		if err == nil {
			break
		}
		// A sale committed between the aggregate read and the close.
		if errors.Is(err, domain.ErrStaleTotals) && attempt < closeAttempts {
			l.logger().Warn("shift totals moved during close, recomputing", "shift_id", shift.ID, "attempt", attempt)
			continue
		}
		return nil, err
	}

	shiftsClosed.Inc()
	shiftVariance.Observe(float64(closed.Variance))
	l.logger().Info("shift closed",
		"owner_id", ownerID,
		"shift_id", closed.ID,
		"expected_cash", int64(closed.ExpectedCash),
		"physical_cash", int64(closed.PhysicalCash),
		"variance", int64(closed.Variance),
	)
	return &domain.ClosedShiftSummary{Shift: *closed, BusinessDate: expected.BusinessDate}, nil
}

// ClosedShifts lists closed shifts of ownerID, newest first.
func (l ShiftLedger) ClosedShifts(ctx context.Context, ownerID int64, from, to *time.Time, limit int) ([]domain.ClosedShiftSummary, error) {
	shifts, err := l.Shifts.ListClosedShifts(ctx, ownerID, from, to, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ClosedShiftSummary, 0, len(shifts))
	for _, s := range shifts {
		out = append(out, domain.ClosedShiftSummary{Shift: s, BusinessDate: s.BusinessDate(l.Location)})
	}
	return out, nil
}

// countDrawer builds the breakdown in configured order and sums it.
func (l ShiftLedger) countDrawer(counts map[domain.Money]int) ([]domain.DenominationLine, domain.Money, error) {
	known := make(map[domain.Money]struct{}, len(l.Denominations))
	for _, d := range l.Denominations {
		known[d] = struct{}{}
	}
	for d, n := range counts {
		if _, ok := known[d]; !ok {
			return nil, 0, fmt.Errorf("%w: %d is not a configured denomination", domain.ErrValidation, int64(d))
		}
		if n < 0 {
			return nil, 0, fmt.Errorf("%w: count for %d must not be negative", domain.ErrValidation, int64(d))
		}
		if n > MaxDenominationCount {
			return nil, 0, fmt.Errorf("%w: count for %d must not exceed %d", domain.ErrValidation, int64(d), MaxDenominationCount)
		}
	}

	breakdown := make([]domain.DenominationLine, 0, len(l.Denominations))
	var total domain.Money
	for _, d := range l.Denominations {
		n := counts[d]
		sub, err := d.MulChecked(int64(n))
		if err != nil {
			return nil, 0, err
		}
		if total, err = total.AddChecked(sub); err != nil {
			return nil, 0, err
		}
		breakdown = append(breakdown, domain.DenominationLine{Denomination: d, Count: n, Subtotal: sub})
	}
	return breakdown, total, nil
}

func (l ShiftLedger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l ShiftLedger) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
