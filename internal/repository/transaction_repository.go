package repository

import (
	"context"
	"errors"

	"minangpos-backend/internal/db"
	"minangpos-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type TransactionRepository struct {
	DB *db.Postgres
}

const transactionColumns = `
	id, code, shift_id::text, owner_user_id, order_type, payment_method, subtotal, discount, delivery_fee, amount,
	customer_name, customer_phone, table_number, status, created_at`

func (r TransactionRepository) CreateTransaction(ctx context.Context, in domain.Transaction) (*domain.Transaction, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// FOR SHARE blocks CloseShift's FOR UPDATE until this sale commits, and
	// waits for a running close so a closed shift is seen as closed.
	var (
		shiftOwner int64
		closed     bool
	)
	err = tx.QueryRow(ctx, `
		SELECT owner_user_id, is_closed FROM shifts WHERE id = $1 FOR SHARE
	`, in.ShiftID).Scan(&shiftOwner, &closed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShiftNotOpen
		}
		return nil, err
	}
	if closed || shiftOwner != in.OwnerID {
		return nil, domain.ErrShiftNotOpen
	}

	code, err := nextOrderNumber(ctx, tx, "ORD", in.CreatedAt)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO transactions
		(code, shift_id, owner_user_id, order_type, payment_method, subtotal, discount, delivery_fee, amount,
		 customer_name, customer_phone, table_number, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING `+transactionColumns,
		code, in.ShiftID, in.OwnerID, string(in.OrderType), string(in.PaymentMethod),
		int64(in.Subtotal), int64(in.Discount), int64(in.DeliveryFee), int64(in.Amount),
		in.CustomerName, in.CustomerPhone, in.TableNumber, string(domain.TransactionPaid), in.CreatedAt)
	saved, err := scanTransaction(row)
	if err != nil {
		return nil, err
	}

	for _, item := range in.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO transaction_items (transaction_id, product_id, name, name_localized, qty, price)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, saved.ID, item.ProductID, item.Name, item.NameLocalized, item.Quantity, int64(item.UnitPrice))
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	saved.Items = domain.CloneItems(in.Items)
	return saved, nil
}

func (r TransactionRepository) ListTransactions(ctx context.Context, ownerID int64, limit int) ([]domain.Transaction, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE deleted_at IS NULL AND owner_user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	var ids []int64
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		ids = append(ids, t.ID)
		txs = append(txs, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return txs, nil
	}

	itemsByTx, err := r.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		txs[i].Items = itemsByTx[txs[i].ID]
	}
	return txs, nil
}

func (r TransactionRepository) GetTransactionByCode(ctx context.Context, code string) (*domain.Transaction, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE code = $1 AND deleted_at IS NULL
	`, code)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	itemsByTx, err := r.items(ctx, []int64{t.ID})
	if err != nil {
		return nil, err
	}
	t.Items = itemsByTx[t.ID]
	return t, nil
}

// SalesByShift aggregates paid transactions of a shift by payment method.
func (r TransactionRepository) SalesByShift(ctx context.Context, shiftID string) (domain.SalesAggregate, error) {
	return salesByShift(ctx, r.DB.Pool, shiftID)
}

func salesByShift(ctx context.Context, q pgxQuerier, shiftID string) (domain.SalesAggregate, error) {
	var a domain.SalesAggregate
	err := q.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE payment_method = 'cash'),
			COALESCE(SUM(amount) FILTER (WHERE payment_method = 'cash'),0),
			COUNT(*) FILTER (WHERE payment_method = 'card'),
			COALESCE(SUM(amount) FILTER (WHERE payment_method = 'card'),0),
			COUNT(*) FILTER (WHERE payment_method = 'credit'),
			COALESCE(SUM(amount) FILTER (WHERE payment_method = 'credit'),0),
			COUNT(*) FILTER (WHERE payment_method = 'foc'),
			COALESCE(SUM(amount) FILTER (WHERE payment_method = 'foc'),0),
			COALESCE(SUM(discount),0)
		FROM transactions
		WHERE deleted_at IS NULL AND status = 'paid' AND shift_id = $1
	`, shiftID).Scan(
		&a.Cash.Count, (*int64)(&a.Cash.Amount),
		&a.Card.Count, (*int64)(&a.Card.Amount),
		&a.Credit.Count, (*int64)(&a.Credit.Amount),
		&a.FOC.Count, (*int64)(&a.FOC.Amount),
		(*int64)(&a.Discounts),
	)
	return a, err
}

func (r TransactionRepository) items(ctx context.Context, ids []int64) (map[int64][]domain.LineItem, error) {
	itemRows, err := r.DB.Pool.Query(ctx, `
		SELECT transaction_id, product_id, name, name_localized, qty, price
		FROM transaction_items
		WHERE transaction_id = ANY($1)
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	itemsByTx := make(map[int64][]domain.LineItem)
	for itemRows.Next() {
		var (
			it        domain.LineItem
			txID      int64
			productID pgtype.Int8
		)
		if err := itemRows.Scan(&txID, &productID, &it.Name, &it.NameLocalized, &it.Quantity, (*int64)(&it.UnitPrice)); err != nil {
			return nil, err
		}
		if productID.Valid {
			it.ProductID = &productID.Int64
		}
		itemsByTx[txID] = append(itemsByTx[txID], it)
	}
	return itemsByTx, itemRows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t                            domain.Transaction
		orderType, method, status string
	)
	if err := row.Scan(
		&t.ID, &t.Code, &t.ShiftID, &t.OwnerID, &orderType, &method,
		(*int64)(&t.Subtotal), (*int64)(&t.Discount), (*int64)(&t.DeliveryFee), (*int64)(&t.Amount),
		&t.CustomerName, &t.CustomerPhone, &t.TableNumber, &status, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	t.OrderType = domain.OrderType(orderType)
	t.PaymentMethod = domain.PaymentMethod(method)
	t.Status = domain.TransactionStatus(status)
	return &t, nil
}
