package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/config"
	"github.com/sitesupply/procurement-api/internal/database"
	"github.com/sitesupply/procurement-api/internal/erp"
	"github.com/sitesupply/procurement-api/internal/http/handler"
	"github.com/sitesupply/procurement-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/sitesupply/procurement-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg             *config.Config
	logger          *zap.Logger
	db              *gorm.DB
	erpClient       *erp.Client
	authMiddleware  *auth.Middleware
	rateLimiter     *middleware.RateLimiter
	auditMiddleware *middleware.AuditMiddleware
	authHandler     *handler.AuthHandler
	userHandler     *handler.UserHandler
	projectHandler  *handler.ProjectHandler
	categoryHandler *handler.CategoryHandler
	requestHandler  *handler.MaterialRequestHandler
	stockHandler    *handler.StockHandler
	dashHandler     *handler.DashboardHandler
	attachHandler   *handler.AttachmentHandler
	auditHandler    *handler.AuditHandler
	catalogHandler  *handler.CatalogHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	erpClient *erp.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	auditMiddleware *middleware.AuditMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	projectHandler *handler.ProjectHandler,
	categoryHandler *handler.CategoryHandler,
	requestHandler *handler.MaterialRequestHandler,
	stockHandler *handler.StockHandler,
	dashHandler *handler.DashboardHandler,
	attachHandler *handler.AttachmentHandler,
	auditHandler *handler.AuditHandler,
	catalogHandler *handler.CatalogHandler,
) *Router {
	return &Router{
		cfg:             cfg,
		logger:          logger,
		db:              db,
		erpClient:       erpClient,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
		auditMiddleware: auditMiddleware,
		authHandler:     authHandler,
		userHandler:     userHandler,
		projectHandler:  projectHandler,
		categoryHandler: categoryHandler,
		requestHandler:  requestHandler,
		stockHandler:    stockHandler,
		dashHandler:     dashHandler,
		attachHandler:   attachHandler,
		auditHandler:    auditHandler,
		catalogHandler:  catalogHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		// The ERP connection is optional; a disabled or unhealthy ERP
		// never fails readiness.
		checks["erp"] = rt.erpClient.HealthCheck(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/login", rt.authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)
			r.Use(rt.auditMiddleware.Audit) // Audit all modifications

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)
			r.Post("/auth/change-password", rt.authHandler.ChangePassword)
			r.Post("/auth/logout", rt.authHandler.Logout)

			// Users (admin only)
			r.Route("/users", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Get("/", rt.userHandler.List)
				r.Post("/", rt.userHandler.Create)
				r.Get("/{id}", rt.userHandler.GetByID)
				r.Put("/{id}", rt.userHandler.Update)
				r.Delete("/{id}", rt.userHandler.Delete)
			})

			// Projects
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", rt.projectHandler.List)
				r.Get("/{id}", rt.projectHandler.GetByID)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireAdmin)
					r.Post("/", rt.projectHandler.Create)
					r.Put("/{id}", rt.projectHandler.Update)
					r.Delete("/{id}", rt.projectHandler.Delete)
				})
			})

			// Material categories
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", rt.categoryHandler.List)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireAdmin)
					r.Post("/", rt.categoryHandler.Create)
					r.Delete("/{id}", rt.categoryHandler.Delete)
				})
			})

			// Material requests
			r.Route("/requests", func(r chi.Router) {
				r.Get("/", rt.requestHandler.List)
				r.Post("/", rt.requestHandler.Create)
				r.Get("/{id}", rt.requestHandler.GetByID)
				r.Put("/{id}", rt.requestHandler.Update)
				r.Delete("/{id}", rt.requestHandler.Delete)
				r.Post("/{id}/submit", rt.requestHandler.Submit)

				// Attachments ride on their request
				r.Get("/{id}/attachments", rt.attachHandler.List)
				r.Post("/{id}/attachments", rt.attachHandler.Upload)

				// Approval workflow (admin only)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireAdmin)
					r.Get("/pending", rt.requestHandler.ListPending)
					r.Get("/pending/count", rt.requestHandler.PendingCount)
					r.Post("/{id}/approve", rt.requestHandler.Approve)
					r.Post("/{id}/reject", rt.requestHandler.Reject)
					r.Post("/{id}/close", rt.requestHandler.Close)
				})
			})

			// Attachments
			r.Route("/attachments", func(r chi.Router) {
				r.Get("/{id}", rt.attachHandler.Download)
				r.Delete("/{id}", rt.attachHandler.Delete)
			})

			// Stock ledger
			r.Route("/stock", func(r chi.Router) {
				r.Get("/", rt.stockHandler.List)
				r.Get("/balances", rt.stockHandler.Balances)

				// Ledger mutations (admin only)
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireAdmin)
					r.Post("/receive", rt.stockHandler.Receive)
					r.Post("/deduct", rt.stockHandler.Deduct)
					r.Post("/import", rt.stockHandler.Import)
					r.Patch("/{id}", rt.stockHandler.Update)
				})
			})

			// Dashboard
			r.Get("/dashboard/metrics", rt.dashHandler.Metrics)

			// ERP catalog
			r.Get("/catalog/materials", rt.catalogHandler.SearchMaterials)

			// Audit logs (admin only)
			r.With(rt.authMiddleware.RequireAdmin).Get("/audit-logs", rt.auditHandler.List)
		})
	})

	return r
}
