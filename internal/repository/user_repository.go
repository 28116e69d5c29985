package repository

import (
	"context"
	"errors"
	"fmt"

	"minangpos-backend/internal/db"
	"minangpos-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	DB *db.Postgres
}

const userColumns = `id, name, email, phone, role, password_hash, created_at, updated_at`

func (r UserRepository) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO users (name, email, phone, role, password_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5, now(), now())
		RETURNING `+userColumns,
		u.Name, u.Email, u.Phone, string(u.Role), u.PasswordHash)
	user, err := scanUser(row)
	if err != nil {
		if IsDuplicate(err) {
			return nil, fmt.Errorf("%w: email %s already registered", domain.ErrConflict, u.Email)
		}
		return nil, err
	}
	return user, nil
}

func (r UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email=$1 AND deleted_at IS NULL
	`, email)
	return r.one(row)
}

func (r UserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	return r.one(row)
}

func (r UserRepository) one(row pgx.Row) (*domain.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Phone,
		&role,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = domain.UserRole(role)
	return &u, nil
}

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = domain.ErrNotFound

// IsDuplicate detects unique constraint violation.
func IsDuplicate(err error) bool {
	return db.IsUniqueViolation(err)
}

