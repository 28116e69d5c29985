package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/server/authctx"
	"github.com/golang-jwt/jwt/v5"
)

var errBadSubject = errors.New("invalid subject")

// AuthMiddleware accepts only HS256 access tokens and puts the cashier
// identity into the request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	keyFunc := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims := jwt.MapClaims{}
			if _, err := parser.ParseWithClaims(raw, claims, keyFunc); err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			user, err := userFromClaims(claims)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(authctx.WithCurrentUser(r.Context(), user)))
		})
	}
}

func userFromClaims(claims jwt.MapClaims) (authctx.CurrentUser, error) {
	if claims["token_type"] != "access" {
		return authctx.CurrentUser{}, errors.New("invalid token")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return authctx.CurrentUser{}, errBadSubject
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return authctx.CurrentUser{}, errBadSubject
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	switch domain.UserRole(role) {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleCashier:
	default:
		return authctx.CurrentUser{}, errors.New("unknown role")
	}
	return authctx.CurrentUser{ID: id, Email: email, Role: domain.UserRole(role)}, nil
}

// RequireRole rejects users outside roles with 403.
func RequireRole(roles ...domain.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[domain.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := authctx.FromContext(r.Context())
			if u == nil {
				writeAuthError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if _, ok := allowed[u.Role]; !ok {
				writeAuthError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeAuthError mirrors the handler package's error envelope.
func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "error",
		"message": message,
		"data":    nil,
		"error":   map[string]any{"code": status, "status": http.StatusText(status)},
	})
}
