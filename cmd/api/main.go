package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sitesupply/procurement-api/docs"
	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/config"
	"github.com/sitesupply/procurement-api/internal/database"
	"github.com/sitesupply/procurement-api/internal/erp"
	"github.com/sitesupply/procurement-api/internal/http/handler"
	"github.com/sitesupply/procurement-api/internal/http/middleware"
	"github.com/sitesupply/procurement-api/internal/http/router"
	"github.com/sitesupply/procurement-api/internal/jobs"
	"github.com/sitesupply/procurement-api/internal/logger"
	"github.com/sitesupply/procurement-api/internal/repository"
	"github.com/sitesupply/procurement-api/internal/service"
	"github.com/sitesupply/procurement-api/internal/storage"
	"go.uber.org/zap"
)

// @title SiteSupply Procurement API
// @version 1.0
// @description Construction materials procurement API for material requests, approvals and site stock tracking

// @contact.name API Support
// @contact.email support@sitesupply.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token
// @Security BearerAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "procurement-staging.sitesupply.io"
	case "production":
		docs.SwaggerInfo.Host = "api.sitesupply.io"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to the configured database driver
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	// Self-hosted SQLite installs have no migration pipeline; build the
	// schema in-process. Postgres deployments run cmd/migrate instead.
	if cfg.Database.Driver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
		log.Info("SQLite schema migrated")
	}

	// Seed the initial admin account when configured and absent
	if err := database.SeedAdmin(db, &cfg.Seed, log); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize the optional read-only ERP catalog connection.
	// The app runs without it; catalog routes respond 503 when absent.
	erpClient, err := erp.NewClient(&cfg.Erp, log)
	if err != nil {
		log.Warn("ERP connection failed, continuing without it", zap.Error(err))
		erpClient = nil
	} else if erpClient != nil {
		log.Info("ERP catalog connected",
			zap.Int("max_open_conns", cfg.Erp.MaxOpenConns),
			zap.Int("query_timeout_seconds", cfg.Erp.QueryTimeout),
		)
	} else {
		log.Info("ERP catalog not configured, skipping")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	requestRepo := repository.NewMaterialRequestRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	stockRepo := repository.NewStockRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize services
	numberSequenceService := service.NewNumberSequenceService(numberSequenceRepo, log)
	authService := service.NewAuthService(userRepo, authMiddleware.TokenManager(), log)
	userService := service.NewUserService(userRepo, log)
	projectService := service.NewProjectService(projectRepo, log)
	categoryService := service.NewCategoryService(categoryRepo, log)
	requestService := service.NewMaterialRequestService(requestRepo, approvalRepo, projectRepo, numberSequenceService, log)
	stockService := service.NewStockService(stockRepo, log)
	dashboardService := service.NewDashboardService(requestRepo, log)
	attachmentService := service.NewAttachmentService(attachmentRepo, requestRepo, fileStorage, log)
	auditLogService := service.NewAuditLogService(auditLogRepo, log)

	auditMiddleware := middleware.NewAuditMiddleware(auditLogService, nil, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, log)
	userHandler := handler.NewUserHandler(userService, log)
	projectHandler := handler.NewProjectHandler(projectService, log)
	categoryHandler := handler.NewCategoryHandler(categoryService, log)
	requestHandler := handler.NewMaterialRequestHandler(requestService, log)
	stockHandler := handler.NewStockHandler(stockService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService, log)
	auditHandler := handler.NewAuditHandler(auditLogService, log)
	catalogHandler := handler.NewCatalogHandler(erpClient, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		erpClient,
		authMiddleware,
		rateLimiter,
		auditMiddleware,
		authHandler,
		userHandler,
		projectHandler,
		categoryHandler,
		requestHandler,
		stockHandler,
		dashboardHandler,
		attachmentHandler,
		auditHandler,
		catalogHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.BalanceSnapshotEnabled || cfg.Jobs.AuditPruneEnabled {
		scheduler = jobs.NewScheduler(log)
	}

	if cfg.Jobs.BalanceSnapshotEnabled {
		snapshotJob := jobs.NewBalanceSnapshotJob(stockService, log, jobs.DefaultSnapshotTimeout)
		if err := scheduler.AddJob(jobs.BalanceSnapshotJobName, cfg.Jobs.BalanceSnapshotCron, snapshotJob.Run); err != nil {
			log.Error("Failed to register balance snapshot job", zap.Error(err))
		}
	} else {
		log.Info("Balance snapshot job disabled")
	}

	if cfg.Jobs.AuditPruneEnabled {
		retention := time.Duration(cfg.Jobs.AuditRetentionDays) * 24 * time.Hour
		pruneJob := jobs.NewAuditPruneJob(auditLogService, log, retention, jobs.DefaultPruneTimeout)
		if err := scheduler.AddJob(jobs.AuditPruneJobName, cfg.Jobs.AuditPruneCron, pruneJob.Run); err != nil {
			log.Error("Failed to register audit prune job", zap.Error(err))
		}
	} else {
		log.Info("Audit prune job disabled")
	}

	if scheduler != nil {
		scheduler.Start()
		log.Info("Scheduler started", zap.Strings("jobs", scheduler.GetJobNames()))
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close ERP connection if initialized
		if erpClient != nil {
			if err := erpClient.Close(); err != nil {
				log.Warn("Error closing ERP connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
