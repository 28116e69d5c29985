package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"minangpos-backend/internal/db"
	"minangpos-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

type HeldOrderRepository struct {
	DB *db.Postgres
}

// heldItem is the JSONB shape of a line item snapshot.
type heldItem struct {
	ProductID     *int64 `json:"productId,omitempty"`
	Name          string `json:"name"`
	NameLocalized string `json:"nameLocalized,omitempty"`
	Quantity      int    `json:"quantity"`
	UnitPrice     int64  `json:"unitPrice"`
}

const heldOrderColumns = `
	id, owner_user_id, order_number, order_type, line_items, customer_name, customer_phone,
	table_number, subtotal, discount, delivery_fee, total, held_at`

func (r HeldOrderRepository) CreateHeldOrder(ctx context.Context, h domain.HeldOrder) (*domain.HeldOrder, error) {
	itemsJSON, err := json.Marshal(toHeldItems(h.LineItems))
	if err != nil {
		return nil, err
	}

	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	number, err := nextOrderNumber(ctx, tx, "HLD", h.HeldAt)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO held_orders (owner_user_id, order_number, order_type, line_items, customer_name, customer_phone,
		                         table_number, subtotal, discount, delivery_fee, total, held_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING `+heldOrderColumns,
		h.OwnerID, number, string(h.OrderType), itemsJSON, h.CustomerName, h.CustomerPhone,
		h.TableNumber, int64(h.Subtotal), int64(h.Discount), int64(h.DeliveryFee), int64(h.Total), h.HeldAt)
	saved, err := scanHeldOrder(row)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return saved, nil
}

func (r HeldOrderRepository) ListHeldOrders(ctx context.Context, ownerID int64) ([]domain.HeldOrder, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+heldOrderColumns+`
		FROM held_orders
		WHERE owner_user_id = $1
		ORDER BY held_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.HeldOrder
	for rows.Next() {
		h, err := scanHeldOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *h)
	}
	return items, rows.Err()
}

// PopHeldOrder deletes and returns the held order in a single statement, so of
// two concurrent callers only one gets the row back.
func (r HeldOrderRepository) PopHeldOrder(ctx context.Context, id, ownerID int64) (*domain.HeldOrder, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		DELETE FROM held_orders
		WHERE id = $1 AND owner_user_id = $2
		RETURNING `+heldOrderColumns, id, ownerID)
	h, err := scanHeldOrder(row)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	var owner int64
	err = r.DB.Pool.QueryRow(ctx, `SELECT owner_user_id FROM held_orders WHERE id = $1`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return nil, domain.ErrAuthorization
}

func (r HeldOrderRepository) DeleteHeldOrder(ctx context.Context, id, ownerID int64) (bool, error) {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM held_orders WHERE id = $1 AND owner_user_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// nextOrderNumber hands out PREFIX-YYYYMMDD-NNN from a per-day sequence row.
func nextOrderNumber(ctx context.Context, q pgxQuerier, prefix string, at time.Time) (string, error) {
	day := at.UTC().Format("2006-01-02")
	var seq int64
	if err := q.QueryRow(ctx, `
		INSERT INTO order_number_seq (prefix, day, seq)
		VALUES ($1, $2::date, 1)
		ON CONFLICT (prefix, day) DO UPDATE
		  SET seq = order_number_seq.seq + 1
		RETURNING seq
	`, prefix, day).Scan(&seq); err != nil {
		return "", fmt.Errorf("generate order seq: %w", err)
	}
	return fmt.Sprintf("%s-%s-%03d", prefix, strings.ReplaceAll(day, "-", ""), seq), nil
}

func scanHeldOrder(row pgx.Row) (*domain.HeldOrder, error) {
	var (
		h         domain.HeldOrder
		orderType string
		itemsRaw  []byte
	)
	if err := row.Scan(
		&h.ID, &h.OwnerID, &h.OrderNumber, &orderType, &itemsRaw, &h.CustomerName, &h.CustomerPhone,
		&h.TableNumber, (*int64)(&h.Subtotal), (*int64)(&h.Discount), (*int64)(&h.DeliveryFee), (*int64)(&h.Total), &h.HeldAt,
	); err != nil {
		return nil, err
	}
	h.OrderType = domain.OrderType(orderType)
	var items []heldItem
	if len(itemsRaw) > 0 {
		if err := json.Unmarshal(itemsRaw, &items); err != nil {
			return nil, fmt.Errorf("decode held order %d items: %w", h.ID, err)
		}
	}
	h.LineItems = fromHeldItems(items)
	return &h, nil
}

func toHeldItems(items []domain.LineItem) []heldItem {
	out := make([]heldItem, 0, len(items))
	for _, it := range items {
		out = append(out, heldItem{
			ProductID:     it.ProductID,
			Name:          it.Name,
			NameLocalized: it.NameLocalized,
			Quantity:      it.Quantity,
			UnitPrice:     int64(it.UnitPrice),
		})
	}
	return out
}

func fromHeldItems(items []heldItem) []domain.LineItem {
	out := make([]domain.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, domain.LineItem{
			ProductID:     it.ProductID,
			Name:          it.Name,
			NameLocalized: it.NameLocalized,
			Quantity:      it.Quantity,
			UnitPrice:     domain.Money(it.UnitPrice),
		})
	}
	return out
}
