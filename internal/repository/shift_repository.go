package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"minangpos-backend/internal/db"
	"minangpos-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type ShiftRepository struct {
	DB *db.Postgres
}

const shiftColumns = `
	id::text, owner_user_id, opened_at, closed_at, opening_balance,
	cash_count, cash_sales, card_count, card_sales, credit_count, credit_sales, foc_count, foc_sales,
	discount_total, cash_purchases, expected_cash, physical_cash, variance, notes, is_closed`

// CreateShift inserts an open shift. The partial unique index on
// (owner_user_id) WHERE NOT is_closed turns a second open shift into ErrConflict.
func (r ShiftRepository) CreateShift(ctx context.Context, s domain.Shift) (*domain.Shift, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO shifts (id, owner_user_id, opened_at, opening_balance, is_closed)
		VALUES ($1,$2,$3,$4,false)
		RETURNING `+shiftColumns, s.ID, s.OwnerID, s.OpenedAt, int64(s.OpeningBalance))
	out, err := scanShift(row)
	if err != nil {
		if db.IsUniqueViolation(err, "shifts_one_open_per_owner") {
			return nil, fmt.Errorf("%w: owner %d already has an open shift", domain.ErrConflict, s.OwnerID)
		}
		return nil, err
	}
	return out, nil
}

func (r ShiftRepository) GetShift(ctx context.Context, id string) (*domain.Shift, error) {
	return r.getShiftWith(ctx, r.DB.Pool, id)
}

func (r ShiftRepository) GetOpenShift(ctx context.Context, ownerID int64) (*domain.Shift, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+shiftColumns+`
		FROM shifts
		WHERE owner_user_id = $1 AND NOT is_closed
	`, ownerID)
	s, err := scanShift(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// CloseShift writes the closing fields and the denomination breakdown in one
// transaction. The UPDATE only matches an open shift of the owner, so a
// concurrent close loses with ErrAlreadyClosed.
func (r ShiftRepository) CloseShift(ctx context.Context, in domain.ShiftClosing) (*domain.Shift, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Row lock first: sales take FOR SHARE on the shift, so once this returns
	// no sale for the shift is in flight and the aggregate below is final.
	var (
		shiftOwner int64
		closed     bool
	)
	err = tx.QueryRow(ctx, `SELECT owner_user_id, is_closed FROM shifts WHERE id = $1 FOR UPDATE`, in.ShiftID).Scan(&shiftOwner, &closed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	switch {
	case shiftOwner != in.OwnerID:
		return nil, domain.ErrAuthorization
	case closed:
		return nil, domain.ErrAlreadyClosed
	}
	current, err := salesByShift(ctx, tx, in.ShiftID)
	if err != nil {
		return nil, err
	}
	if current != in.Aggregates {
		return nil, domain.ErrStaleTotals
	}

	a := in.Aggregates
	row := tx.QueryRow(ctx, `
		UPDATE shifts SET
			closed_at = $3,
			cash_count = $4, cash_sales = $5,
			card_count = $6, card_sales = $7,
			credit_count = $8, credit_sales = $9,
			foc_count = $10, foc_sales = $11,
			discount_total = $12,
			cash_purchases = $13,
			expected_cash = $14,
			physical_cash = $15,
			variance = $16,
			notes = $17,
			is_closed = true
		WHERE id = $1 AND owner_user_id = $2 AND NOT is_closed
		RETURNING `+shiftColumns,
		in.ShiftID, in.OwnerID, in.ClosedAt,
		a.Cash.Count, int64(a.Cash.Amount),
		a.Card.Count, int64(a.Card.Amount),
		a.Credit.Count, int64(a.Credit.Amount),
		a.FOC.Count, int64(a.FOC.Amount),
		int64(a.Discounts),
		int64(in.CashPurchases), int64(in.ExpectedCash), int64(in.PhysicalCash), int64(in.Variance),
		in.Notes,
	)
	s, err := scanShift(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.closeFailure(ctx, tx, in)
		}
		return nil, err
	}

	for i, line := range in.Breakdown {
		if _, err := tx.Exec(ctx, `
			INSERT INTO shift_denominations (shift_id, position, denomination, count, subtotal)
			VALUES ($1,$2,$3,$4,$5)
		`, in.ShiftID, i, int64(line.Denomination), line.Count, int64(line.Subtotal)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.Breakdown = append([]domain.DenominationLine(nil), in.Breakdown...)
	return s, nil
}

// closeFailure explains why the conditional UPDATE matched nothing.
func (r ShiftRepository) closeFailure(ctx context.Context, q pgxQuerier, in domain.ShiftClosing) error {
	current, err := r.getShiftWith(ctx, q, in.ShiftID)
	if err != nil {
		return err
	}
	if current.OwnerID != in.OwnerID {
		return domain.ErrAuthorization
	}
	if current.IsClosed {
		return domain.ErrAlreadyClosed
	}
	return fmt.Errorf("close shift %s: no row updated", in.ShiftID)
}

func (r ShiftRepository) ListClosedShifts(ctx context.Context, ownerID int64, from, to *time.Time, limit int) ([]domain.Shift, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+shiftColumns+`
		FROM shifts
		WHERE owner_user_id = $1 AND is_closed
		  AND ($2::timestamptz IS NULL OR closed_at >= $2)
		  AND ($3::timestamptz IS NULL OR closed_at < $3)
		ORDER BY closed_at DESC
		LIMIT $4
	`, ownerID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Shift
	var ids []string
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return items, nil
	}

	lines, err := r.breakdowns(ctx, r.DB.Pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Breakdown = lines[items[i].ID]
	}
	return items, nil
}

func (r ShiftRepository) getShiftWith(ctx context.Context, q pgxQuerier, id string) (*domain.Shift, error) {
	row := q.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id)
	s, err := scanShift(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.IsClosed {
		lines, err := r.breakdowns(ctx, q, []string{s.ID})
		if err != nil {
			return nil, err
		}
		s.Breakdown = lines[s.ID]
	}
	return s, nil
}

func (r ShiftRepository) breakdowns(ctx context.Context, q pgxQuerier, ids []string) (map[string][]domain.DenominationLine, error) {
	rows, err := q.Query(ctx, `
		SELECT shift_id::text, denomination, count, subtotal
		FROM shift_denominations
		WHERE shift_id = ANY($1::uuid[])
		ORDER BY shift_id, position
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.DenominationLine)
	for rows.Next() {
		var (
			shiftID string
			line    domain.DenominationLine
		)
		if err := rows.Scan(&shiftID, (*int64)(&line.Denomination), &line.Count, (*int64)(&line.Subtotal)); err != nil {
			return nil, err
		}
		out[shiftID] = append(out[shiftID], line)
	}
	return out, rows.Err()
}

func scanShift(row pgx.Row) (*domain.Shift, error) {
	var (
		s        domain.Shift
		closedAt pgtype.Timestamptz
		a        = &s.Aggregates
	)
	if err := row.Scan(
		&s.ID, &s.OwnerID, &s.OpenedAt, &closedAt, (*int64)(&s.OpeningBalance),
		&a.Cash.Count, (*int64)(&a.Cash.Amount),
		&a.Card.Count, (*int64)(&a.Card.Amount),
		&a.Credit.Count, (*int64)(&a.Credit.Amount),
		&a.FOC.Count, (*int64)(&a.FOC.Amount),
		(*int64)(&a.Discounts),
		(*int64)(&s.CashPurchases), (*int64)(&s.ExpectedCash), (*int64)(&s.PhysicalCash), (*int64)(&s.Variance),
		&s.Notes, &s.IsClosed,
	); err != nil {
		return nil, err
	}
	if closedAt.Valid {
		t := closedAt.Time
		s.ClosedAt = &t
	}
	return &s, nil
}
