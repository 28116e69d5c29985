package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/ports"
)

// SalesService records paid sales against the cashier's open shift. Its
// transactions feed the shift ledger's sales aggregate.
type SalesService struct {
	Shifts       ports.ShiftStore
	Transactions ports.TransactionStore
	DeliveryFee  domain.Money
	Logger       *slog.Logger
	Now          func() time.Time
}

type CheckoutInput struct {
	Draft         domain.OrderDraft
	PaymentMethod domain.PaymentMethod
}

func (s SalesService) Checkout(ctx context.Context, ownerID int64, in CheckoutInput) (*domain.Transaction, error) {
	if !in.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, in.PaymentMethod)
	}
	draft := withDefaultFee(in.Draft, s.DeliveryFee)
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	shift, err := s.Shifts.GetOpenShift(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: open a shift before taking payments", domain.ErrConflict)
		}
		return nil, err
	}

	subtotal, fee, total := domain.Totals(draft.OrderType, draft.LineItems, draft.Discount, draft.DeliveryFee)
	tx, err := s.Transactions.CreateTransaction(ctx, domain.Transaction{
		ShiftID:       shift.ID,
		OwnerID:       ownerID,
		OrderType:     draft.OrderType,
		PaymentMethod: in.PaymentMethod,
		Subtotal:      subtotal,
		Discount:      draft.Discount,
		DeliveryFee:   fee,
		Amount:        total,
		CustomerName:  strings.TrimSpace(draft.CustomerName),
		CustomerPhone: strings.TrimSpace(draft.CustomerPhone),
		TableNumber:   strings.TrimSpace(draft.TableNumber),
		Status:        domain.TransactionPaid,
		Items:         domain.CloneItems(draft.LineItems),
		CreatedAt:     s.now(),
	})
	if err != nil {
		return nil, err
	}
	salesRecorded.WithLabelValues(string(tx.PaymentMethod)).Inc()
	s.logger().Info("sale recorded", "owner_id", ownerID, "shift_id", shift.ID, "code", tx.Code, "method", tx.PaymentMethod, "amount", int64(tx.Amount))
	return tx, nil
}

func (s SalesService) List(ctx context.Context, ownerID int64, limit int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.Transactions.ListTransactions(ctx, ownerID, limit)
}

// Receipt returns a transaction for reprinting. Cashiers only see their own sales.
func (s SalesService) Receipt(ctx context.Context, ownerID int64, role domain.UserRole, code string) (*domain.Transaction, error) {
	tx, err := s.Transactions.GetTransactionByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleCashier && tx.OwnerID != ownerID {
		return nil, domain.ErrAuthorization
	}
	return tx, nil
}

func (s SalesService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s SalesService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
