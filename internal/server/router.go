package server

import (
	"net/http"
	"time"

	"minangpos-backend/internal/config"
	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
)

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Health      handler.HealthHandler
	Auth        handler.AuthHandler
	Shifts      handler.ShiftHandler
	ShiftReport handler.ShiftReportHandler
	HeldOrders  handler.HeldOrderHandler
	Orders      handler.TransactionHandler
	Purchases   handler.PurchaseHandler
	Products    handler.ProductHandler
	Settings    handler.SettingsHandler
}

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config, logger *slog.Logger, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, 1*time.Minute))
	}

	h.Health.RegisterRoutes(r)
	h.Auth.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		// till-level (cashier/manager/admin)
		pr.Group(func(sr chi.Router) {
			sr.Use(RequireRole(domain.RoleAdmin, domain.RoleManager, domain.RoleCashier))
			h.Shifts.RegisterRoutes(sr)
			h.HeldOrders.RegisterRoutes(sr)
			h.Orders.RegisterRoutes(sr)
			h.Products.RegisterRoutes(sr)
			h.Settings.RegisterRoutes(sr)
		})
		// manager-level (manager/admin)
		pr.Group(func(mr chi.Router) {
			mr.Use(RequireRole(domain.RoleAdmin, domain.RoleManager))
			h.ShiftReport.RegisterRoutes(mr)
			h.Purchases.RegisterRoutes(mr)
			h.Settings.RegisterAdminRoutes(mr)
			h.Auth.RegisterAdminRoutes(mr)
		})
	})

	return r
}
