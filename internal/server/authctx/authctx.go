// Package authctx carries the authenticated cashier through request contexts.
package authctx

import (
	"context"

	"minangpos-backend/internal/domain"
)

type contextKey struct{}

// CurrentUser is the identity every shift and held-order operation runs as.
// ID is the owner id stored on shifts, held orders and sales.
type CurrentUser struct {
	ID    int64
	Email string
	Role  domain.UserRole
}

// CanActForOthers reports whether the user may read other cashiers' records.
func (u CurrentUser) CanActForOthers() bool {
	return u.Role == domain.RoleAdmin || u.Role == domain.RoleManager
}

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// FromContext returns nil for unauthenticated requests.
func FromContext(ctx context.Context) *CurrentUser {
	val, ok := ctx.Value(contextKey{}).(CurrentUser)
	if !ok {
		return nil
	}
	return &val
}
