package config

import (
	"reflect"
	"testing"
	"time"

	"minangpos-backend/internal/domain"
)

func TestParseDenominations(t *testing.T) {
	got, err := ParseDenominations("500, 100,50,0.5,0.25", 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []domain.Money{50000, 10000, 5000, 50, 25}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	for _, raw := range []string{"", " , ", "10,10", "0", "-5", "0.001", "ten"} {
		if _, err := ParseDenominations(raw, 2); err == nil {
			t.Errorf("ParseDenominations(%q) should fail", raw)
		}
	}
}

func TestLoadMemoryBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DELIVERY_FEE", "10")
	t.Setenv("BUSINESS_TIMEZONE", "UTC")
	t.Setenv("ACCESS_TOKEN_TTL", "3600")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreBackend != BackendMemory || cfg.CurrencyCode != "QAR" || cfg.CurrencyDigits != 2 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.DeliveryFee != 1000 {
		t.Fatalf("delivery fee = %d", cfg.DeliveryFee)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Fatalf("access ttl = %s", cfg.AccessTokenTTL)
	}
	if len(cfg.Denominations) != 8 || cfg.Denominations[0] != 50000 {
		t.Fatalf("denominations = %v", cfg.Denominations)
	}
	if cfg.BusinessLocation != time.UTC {
		t.Fatalf("location = %v", cfg.BusinessLocation)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	cases := map[string]map[string]string{
		"missing jwt secret": {"STORE_BACKEND": "memory", "JWT_SECRET": ""},
		"missing database":   {"STORE_BACKEND": "postgres", "DATABASE_URL": "", "JWT_SECRET": "x"},
		"unknown backend":    {"STORE_BACKEND": "redis", "JWT_SECRET": "x"},
		"bad digits":         {"STORE_BACKEND": "memory", "JWT_SECRET": "x", "CURRENCY_DIGITS": "9"},
		"bad fee":            {"STORE_BACKEND": "memory", "JWT_SECRET": "x", "DELIVERY_FEE": "-1"},
		"bad timezone":       {"STORE_BACKEND": "memory", "JWT_SECRET": "x", "BUSINESS_TIMEZONE": "Mars/Base"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
