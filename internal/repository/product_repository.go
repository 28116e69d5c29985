package repository

import (
	"context"
	"fmt"

	"minangpos-backend/internal/db"
	"minangpos-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

type ProductRepository struct {
	DB *db.Postgres
}

// ListProducts returns the sellable menu grouped by category.
func (r ProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, name, name_localized, category, price, active, created_at, updated_at
		FROM products
		WHERE deleted_at IS NULL AND active
		ORDER BY category ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Product, error) {
		var p domain.Product
		var price int64
		err := row.Scan(&p.ID, &p.Name, &p.NameLocalized, &p.Category, &price, &p.Active, &p.CreatedAt, &p.UpdatedAt)
		p.Price = domain.Money(price)
		return p, err
	})
}

// SeedDefaults inserts the starter menu in one batch. Existing names are left
// untouched so prices edited in the database survive restarts.
func (r ProductRepository) SeedDefaults(ctx context.Context) error {
	batch := &pgx.Batch{}
	for _, p := range domain.DefaultProducts() {
		batch.Queue(`
			INSERT INTO products (name, name_localized, category, price, active, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5, now(), now())
			ON CONFLICT (name) DO NOTHING
		`, p.Name, p.NameLocalized, p.Category, int64(p.Price), p.Active)
	}
	if err := r.DB.Pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	return nil
}
