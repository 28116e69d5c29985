package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	_ "time/tzdata"

	"minangpos-backend/internal/config"
	"minangpos-backend/internal/db"
	"minangpos-backend/internal/handler"
	"minangpos-backend/internal/memstore"
	"minangpos-backend/internal/ports"
	"minangpos-backend/internal/repository"
	"minangpos-backend/internal/server"
	"minangpos-backend/internal/service"
)

// stores bundles one backend's implementation of every port.
type stores struct {
	health       ports.HealthChecker
	shifts       ports.ShiftStore
	heldOrders   ports.HeldOrderStore
	transactions ports.TransactionStore
	purchases    ports.PurchaseStore
	users        ports.UserStore
	products     ports.ProductCatalog
	settings     ports.SettingsStore
	close        func()
}

func main() {
	bootLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}
	defer st.close()

	// services
	authSvc := service.AuthService{Config: cfg, Users: st.users, Logger: logger}
	if err := authSvc.EnsureAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		logger.Error("failed to seed admin", "err", err)
		os.Exit(1)
	}
	ledger := service.ShiftLedger{
		Shifts:        st.shifts,
		Sales:         st.transactions,
		Purchases:     st.purchases,
		Denominations: cfg.Denominations,
		Location:      cfg.BusinessLocation,
		Logger:        logger,
	}
	heldSvc := service.HeldOrderService{Store: st.heldOrders, DeliveryFee: cfg.DeliveryFee, Logger: logger}
	salesSvc := service.SalesService{Shifts: st.shifts, Transactions: st.transactions, DeliveryFee: cfg.DeliveryFee, Logger: logger}
	purchaseSvc := service.PurchaseService{Store: st.purchases, Location: cfg.BusinessLocation, Logger: logger}

	// handlers
	currency := handler.Currency{Code: cfg.CurrencyCode, Digits: cfg.CurrencyDigits}
	handlers := server.Handlers{
		Health:      handler.HealthHandler{DB: st.health, Backend: cfg.StoreBackend},
		Auth:        handler.AuthHandler{Service: &authSvc},
		Shifts:      handler.ShiftHandler{Ledger: ledger, Settings: st.settings, Currency: currency},
		ShiftReport: handler.ShiftReportHandler{Ledger: ledger, Currency: currency},
		HeldOrders:  handler.HeldOrderHandler{Service: heldSvc, Currency: currency},
		Orders:      handler.TransactionHandler{Sales: salesSvc, Settings: st.settings, Currency: currency},
		Purchases:   handler.PurchaseHandler{Service: purchaseSvc, Currency: currency},
		Products:    handler.ProductHandler{Catalog: st.products, Currency: currency},
		Settings:    handler.SettingsHandler{Store: st.settings},
	}

	router := server.NewRouter(cfg, logger, handlers)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.StoreBackend == config.BackendMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		m := memstore.New()
		return &stores{
			health:       m,
			shifts:       m,
			heldOrders:   m,
			transactions: m,
			purchases:    m,
			users:        m,
			products:     m,
			settings:     m,
			close:        func() {},
		}, nil
	}

	pg, err := db.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		logger.Info("database schema applied")
	}
	products := repository.ProductRepository{DB: pg}
	if err := products.SeedDefaults(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	return &stores{
		health:       pg,
		shifts:       repository.ShiftRepository{DB: pg},
		heldOrders:   repository.HeldOrderRepository{DB: pg},
		transactions: repository.TransactionRepository{DB: pg},
		purchases:    repository.PurchaseRepository{DB: pg},
		users:        repository.UserRepository{DB: pg},
		products:     products,
		settings:     repository.SettingsRepository{DB: pg},
		close:        pg.Close,
	}, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h).With("env", cfg.Env)
}
