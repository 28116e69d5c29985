package repository

import (
	"context"
	"time"

	"minangpos-backend/internal/db"
	"minangpos-backend/internal/domain"
)

type PurchaseRepository struct {
	DB *db.Postgres
}

const purchaseColumns = `id, owner_user_id, supplier, invoice_number, amount, payment_method, purchase_date, note, created_at`

func (r PurchaseRepository) CreatePurchase(ctx context.Context, in domain.Purchase) (*domain.Purchase, error) {
	var (
		p      domain.Purchase
		method string
	)
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO purchases (owner_user_id, supplier, invoice_number, amount, payment_method, purchase_date, note, created_at)
		VALUES ($1,$2,$3,$4,$5,$6::date,$7, now())
		RETURNING `+purchaseColumns,
		in.OwnerID, in.Supplier, in.InvoiceNumber, int64(in.Amount), string(in.PaymentMethod), in.Date.Format("2006-01-02"), in.Note,
	).Scan(&p.ID, &p.OwnerID, &p.Supplier, &p.InvoiceNumber, (*int64)(&p.Amount), &method, &p.Date, &p.Note, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.PaymentMethod = domain.PaymentMethod(method)
	return &p, nil
}

func (r PurchaseRepository) ListPurchases(ctx context.Context, from, to *time.Time, limit int) ([]domain.Purchase, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases
		WHERE deleted_at IS NULL
		  AND ($1::date IS NULL OR purchase_date >= $1)
		  AND ($2::date IS NULL OR purchase_date < $2)
		ORDER BY purchase_date DESC, id DESC
		LIMIT $3
	`, dateArg(from), dateArg(to), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Purchase
	for rows.Next() {
		var (
			p      domain.Purchase
			method string
		)
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Supplier, &p.InvoiceNumber, (*int64)(&p.Amount), &method, &p.Date, &p.Note, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.PaymentMethod = domain.PaymentMethod(method)
		items = append(items, p)
	}
	return items, rows.Err()
}

// CashPurchasesOn sums purchases paid in cash on the given calendar date.
func (r PurchaseRepository) CashPurchasesOn(ctx context.Context, date time.Time) (domain.Money, error) {
	var total int64
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount),0)
		FROM purchases
		WHERE deleted_at IS NULL AND payment_method = 'cash' AND purchase_date = $1::date
	`, date.Format("2006-01-02")).Scan(&total)
	return domain.Money(total), err
}

func dateArg(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
