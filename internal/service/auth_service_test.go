package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"minangpos-backend/internal/config"
	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/memstore"
)

func newAuth() AuthService {
	return AuthService{
		Config: config.Config{
			JWTSecret:       "test-secret",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
		},
		Users:  memstore.New(),
		Logger: discardLogger(),
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newAuth()
	ctx := context.Background()

	user, err := s.Register(ctx, RegisterInput{Name: "Siti", Email: "Siti@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != domain.RoleCashier || user.Email != "siti@example.com" {
		t.Fatalf("user = %+v", user)
	}
	if _, err := s.Register(ctx, RegisterInput{Name: "Siti", Email: "siti@example.com", Password: "secret1"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate err = %v", err)
	}

	res, err := s.Login(ctx, LoginInput{Email: "siti@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" || res.User.ID != user.ID {
		t.Fatalf("auth result = %+v", res)
	}
	if _, err := s.Login(ctx, LoginInput{Email: "siti@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password err = %v", err)
	}
	if _, err := s.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v", err)
	}

	refreshed, err := s.Refresh(ctx, RefreshInput{RefreshToken: res.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.User.ID != user.ID {
		t.Fatalf("refreshed user = %+v", refreshed.User)
	}
	if _, err := s.Refresh(ctx, RefreshInput{RefreshToken: res.AccessToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token used as refresh err = %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newAuth()
	tests := []RegisterInput{
		{Name: "A", Email: "a@example.com", Password: "123"},
		{Name: "A", Email: "not-an-email", Password: "secret1"},
		{Name: "", Email: "a@example.com", Password: "secret1"},
		{Name: "A", Email: "a@example.com", Password: "secret1", Role: "owner"},
	}
	for _, in := range tests {
		if _, err := s.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("register %+v err = %v, want ErrValidation", in, err)
		}
	}
}

func TestEnsureAdmin(t *testing.T) {
	s := newAuth()
	ctx := context.Background()

	if err := s.EnsureAdmin(ctx, "admin@minang.local", "admin-pass"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if err := s.EnsureAdmin(ctx, "admin@minang.local", "admin-pass"); err != nil {
		t.Fatalf("ensure admin twice: %v", err)
	}
	res, err := s.Login(ctx, LoginInput{Email: "admin@minang.local", Password: "admin-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.User.Role != domain.RoleAdmin {
		t.Fatalf("role = %q", res.User.Role)
	}
}
