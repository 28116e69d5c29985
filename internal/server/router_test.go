package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"minangpos-backend/internal/config"
	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/handler"
	"minangpos-backend/internal/memstore"
	"minangpos-backend/internal/service"
)

func testRouter(t *testing.T) (http.Handler, *service.AuthService) {
	t.Helper()
	cfg := config.Config{
		StoreBackend:    config.BackendMemory,
		JWTSecret:       "router-test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}
	store := memstore.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := &service.AuthService{Config: cfg, Users: store, Logger: logger}
	currency := handler.Currency{Code: "QAR", Digits: 2}
	ledger := service.ShiftLedger{Shifts: store, Sales: store, Purchases: store, Denominations: []domain.Money{10000}, Location: time.UTC, Logger: logger}

	h := Handlers{
		Health:      handler.HealthHandler{DB: store, Backend: cfg.StoreBackend},
		Auth:        handler.AuthHandler{Service: auth},
		Shifts:      handler.ShiftHandler{Ledger: ledger, Settings: store, Currency: currency},
		ShiftReport: handler.ShiftReportHandler{Ledger: ledger, Currency: currency},
		HeldOrders:  handler.HeldOrderHandler{Service: service.HeldOrderService{Store: store, Logger: logger}, Currency: currency},
		Orders:      handler.TransactionHandler{Sales: service.SalesService{Shifts: store, Transactions: store, Logger: logger}, Settings: store, Currency: currency},
		Purchases:   handler.PurchaseHandler{Service: service.PurchaseService{Store: store, Location: time.UTC, Logger: logger}, Currency: currency},
		Products:    handler.ProductHandler{Catalog: store, Currency: currency},
		Settings:    handler.SettingsHandler{Store: store},
	}
	return NewRouter(cfg, logger, h), auth
}

func login(t *testing.T, r http.Handler, auth *service.AuthService, email string, role domain.UserRole) string {
	t.Helper()
	if _, err := auth.Register(context.Background(), service.RegisterInput{Name: "Test", Email: email, Password: "secret123", Role: role}); err != nil {
		t.Fatalf("register: %v", err)
	}
	body, _ := json.Marshal(map[string]string{"email": email, "password": "secret123"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil || env.Data.Token == "" {
		t.Fatalf("login body = %s", rec.Body.String())
	}
	return env.Data.Token
}

func get(r http.Handler, path, token string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestRouterRoles(t *testing.T) {
	r, auth := testRouter(t)
	cashierToken := login(t, r, auth, "kasir@minang.local", domain.RoleCashier)
	managerToken := login(t, r, auth, "manager@minang.local", domain.RoleManager)

	cases := []struct {
		path  string
		token string
		want  int
	}{
		{"/health", "", http.StatusOK},
		{"/held-orders", "", http.StatusUnauthorized},
		{"/held-orders", "not-a-jwt", http.StatusUnauthorized},
		{"/held-orders", cashierToken, http.StatusOK},
		{"/products", cashierToken, http.StatusOK},
		{"/settings", cashierToken, http.StatusOK},
		{"/purchases", cashierToken, http.StatusForbidden},
		{"/shifts/report", cashierToken, http.StatusForbidden},
		{"/purchases", managerToken, http.StatusOK},
		{"/shifts/report", managerToken, http.StatusOK},
		{"/shifts/current", cashierToken, http.StatusNotFound},
	}
	for _, tc := range cases {
		if got := get(r, tc.path, tc.token); got != tc.want {
			t.Errorf("GET %s = %d, want %d", tc.path, got, tc.want)
		}
	}
}

func TestRefreshTokenIsNotAccessToken(t *testing.T) {
	r, auth := testRouter(t)
	if _, err := auth.Register(context.Background(), service.RegisterInput{Name: "Kasir", Email: "k@minang.local", Password: "secret123"}); err != nil {
		t.Fatal(err)
	}
	res, err := auth.Login(context.Background(), service.LoginInput{Email: "k@minang.local", Password: "secret123"})
	if err != nil {
		t.Fatal(err)
	}
	if got := get(r, "/held-orders", res.RefreshToken); got != http.StatusUnauthorized {
		t.Fatalf("refresh token accepted as access token: %d", got)
	}
}
