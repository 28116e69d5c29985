package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"minangpos-backend/internal/domain"
	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds application runtime configuration.
type Config struct {
	Env                string
	HTTPPort           string
	StoreBackend       string
	DatabaseURL        string
	AutoMigrate        bool
	CurrencyCode       string
	CurrencyDigits     int32
	Denominations      []domain.Money
	BusinessLocation   *time.Location
	DeliveryFee        domain.Money
	JWTSecret          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	SeedAdminEmail     string
	SeedAdminPassword  string
	LogLevel           string
	LogFormat          string
	RateLimitPerMinute int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutdownTimeout    time.Duration
}

// Load reads environment variables and .env (if present).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		AutoMigrate:        getBool("AUTO_MIGRATE", true),
		CurrencyCode:       getEnv("CURRENCY_CODE", "QAR"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenTTL:     getDuration("ACCESS_TOKEN_TTL", 12*time.Hour),
		RefreshTokenTTL:    getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		SeedAdminEmail:     getEnv("SEED_ADMIN_EMAIL", "admin@minang.local"),
		SeedAdminPassword:  os.Getenv("SEED_ADMIN_PASSWORD"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 200),
		ReadTimeout:        getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:       getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:        getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:    getDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	digits := getInt("CURRENCY_DIGITS", 2)
	if digits < 0 || digits > 4 {
		return cfg, fmt.Errorf("CURRENCY_DIGITS must be between 0 and 4, got %d", digits)
	}
	cfg.CurrencyDigits = int32(digits)

	denoms, err := ParseDenominations(getEnv("CASH_DENOMINATIONS", "500,100,50,10,5,1,0.5,0.25"), cfg.CurrencyDigits)
	if err != nil {
		return cfg, err
	}
	cfg.Denominations = denoms

	fee, err := domain.ParseMoney(getEnv("DELIVERY_FEE", "0"), cfg.CurrencyDigits)
	if err != nil || fee < 0 {
		return cfg, fmt.Errorf("invalid DELIVERY_FEE")
	}
	cfg.DeliveryFee = fee

	loc, err := time.LoadLocation(getEnv("BUSINESS_TIMEZONE", "Asia/Qatar"))
	if err != nil {
		return cfg, fmt.Errorf("load BUSINESS_TIMEZONE: %w", err)
	}
	cfg.BusinessLocation = loc

	switch cfg.StoreBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return cfg, errors.New("DATABASE_URL is required")
		}
	case BackendMemory:
	default:
		return cfg, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}

// ParseDenominations parses a comma separated list of positive decimal values
// into minor units, keeping the configured order.
func ParseDenominations(raw string, digits int32) ([]domain.Money, error) {
	var out []domain.Money
	seen := make(map[domain.Money]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m, err := domain.ParseMoney(part, digits)
		if err != nil {
			return nil, fmt.Errorf("CASH_DENOMINATIONS: %w", err)
		}
		if m <= 0 {
			return nil, fmt.Errorf("CASH_DENOMINATIONS: %s is not positive", part)
		}
		if _, dup := seen[m]; dup {
			return nil, fmt.Errorf("CASH_DENOMINATIONS: duplicate value %s", part)
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, errors.New("CASH_DENOMINATIONS must list at least one value")
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		// Support seconds as integer without suffix.
		if secs, convErr := strconv.Atoi(val); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		return fallback
	}
	return d
}
