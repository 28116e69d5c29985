package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/ports"
)

// PurchaseService records supplier invoices. Cash-paid ones reduce the
// expected drawer cash of shifts opened on the same business date.
type PurchaseService struct {
	Store    ports.PurchaseStore
	Location *time.Location
	Logger   *slog.Logger
	Now      func() time.Time
}

type PurchaseInput struct {
	Supplier      string
	InvoiceNumber string
	Amount        domain.Money
	PaymentMethod domain.PaymentMethod
	Date          *time.Time
	Note          string
}

func (s PurchaseService) Record(ctx context.Context, ownerID int64, in PurchaseInput) (*domain.Purchase, error) {
	supplier := strings.TrimSpace(in.Supplier)
	if supplier == "" {
		return nil, fmt.Errorf("%w: supplier is required", domain.ErrValidation)
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", domain.ErrValidation)
	}
	switch in.PaymentMethod {
	case domain.PayCash, domain.PayCard, domain.PayCredit:
	default:
		return nil, fmt.Errorf("%w: unsupported purchase payment method %q", domain.ErrValidation, in.PaymentMethod)
	}

	date := s.today()
	if in.Date != nil {
		date = *in.Date
	}

	p, err := s.Store.CreatePurchase(ctx, domain.Purchase{
		OwnerID:       ownerID,
		Supplier:      supplier,
		InvoiceNumber: strings.TrimSpace(in.InvoiceNumber),
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		Date:          date,
		Note:          in.Note,
	})
	if err != nil {
		return nil, err
	}
	s.logger().Info("purchase recorded", "owner_id", ownerID, "purchase_id", p.ID, "method", p.PaymentMethod, "amount", int64(p.Amount))
	return p, nil
}

func (s PurchaseService) List(ctx context.Context, from, to *time.Time) ([]domain.Purchase, error) {
	return s.Store.ListPurchases(ctx, from, to, 500)
}

// today is the current business date as UTC midnight.
func (s PurchaseService) today() time.Time {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	t := now.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s PurchaseService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
